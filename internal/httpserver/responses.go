package httpserver

import (
	"time"

	"eshop/internal/domain"
	cartsvc "eshop/internal/service/cart"
)

// Money values are rendered as fixed two-decimal strings.

type productResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Price        string    `json:"price"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	CategoryID   string    `json:"categoryId"`
	CategoryName string    `json:"categoryName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price.StringFixed(domain.PriceScale),
		ImageURL:     p.ImageURL,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		CreatedAt:    p.CreatedAt,
	}
}

func toProductResponses(products []domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

type cartLineResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	ImageURL  string `json:"imageUrl,omitempty"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"lineTotal"`
}

type cartResponse struct {
	Items     []cartLineResponse `json:"items"`
	Total     string             `json:"total"`
	ItemCount int                `json:"itemCount"`
	Error     string             `json:"error,omitempty"`
}

func toCartResponse(s *cartsvc.Summary) cartResponse {
	resp := cartResponse{
		Items:     make([]cartLineResponse, 0, len(s.Items)),
		Total:     s.Total.StringFixed(domain.PriceScale),
		ItemCount: s.ItemCount,
	}
	for _, item := range s.Items {
		line := cartLineResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal().StringFixed(domain.PriceScale),
		}
		if item.Product != nil {
			line.Name = item.Product.Name
			line.ImageURL = item.Product.ImageURL
			line.UnitPrice = item.Product.Price.StringFixed(domain.PriceScale)
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}

type orderLineResponse struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	LineTotal   string `json:"lineTotal"`
}

type orderResponse struct {
	ID            string              `json:"id"`
	CreatedAt     time.Time           `json:"createdAt"`
	CustomerName  string              `json:"customerName"`
	CustomerEmail string              `json:"customerEmail"`
	Status        domain.OrderStatus  `json:"status"`
	TotalAmount   string              `json:"totalAmount"`
	Items         []orderLineResponse `json:"items"`
}

func toOrderResponse(o domain.Order) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		CreatedAt:     o.CreatedAt,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Status:        o.Status,
		TotalAmount:   o.TotalAmount.StringFixed(domain.PriceScale),
		Items:         make([]orderLineResponse, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, orderLineResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ImageURL:    item.ImageURL,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(domain.PriceScale),
			LineTotal:   item.LineTotal().StringFixed(domain.PriceScale),
		})
	}
	return resp
}

type checkoutFormResponse struct {
	Fields         []string     `json:"fields"`
	GatewayEnabled bool         `json:"gatewayEnabled"`
	PublishableKey string       `json:"publishableKey,omitempty"`
	Cart           cartResponse `json:"cart"`
}
