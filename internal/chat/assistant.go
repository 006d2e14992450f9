package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"eshop/internal/domain"
)

const (
	notConfiguredReply = "I am not fully configured yet. Please set the Gemini API Key."
	unavailableReply   = "Sorry, I am having trouble thinking right now."

	// placeholderKeyPrefix marks the sample key shipped in sample configs.
	placeholderKeyPrefix = "AIzaSy..."
)

// KeyConfigured reports whether apiKey looks like a real key.
func KeyConfigured(apiKey string) bool {
	apiKey = strings.TrimSpace(apiKey)
	return apiKey != "" && !strings.HasPrefix(apiKey, placeholderKeyPrefix)
}

type productLister interface {
	List(ctx context.Context, categoryID string) ([]domain.Product, error)
}

type cartAdder interface {
	Add(ctx context.Context, sessionID, productID string, quantity int) error
}

// Action is an instruction for the chat widget. add_to_cart has already been
// applied to the session cart when it is returned.
type Action struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

type Response struct {
	Message string   `json:"message"`
	Actions []Action `json:"actions"`
}

// Assistant answers shopper messages with the catalog as context.
type Assistant struct {
	completer Completer
	products  productLister
	cart      cartAdder
	logger    *log.Logger
}

// NewAssistant returns an assistant; a nil completer means chat is not configured.
func NewAssistant(completer Completer, products productLister, cart cartAdder, logger *log.Logger) *Assistant {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Assistant{completer: completer, products: products, cart: cart, logger: logger}
}

func (a *Assistant) Reply(ctx context.Context, sessionID, message string) Response {
	if a.completer == nil {
		return Response{Message: notConfiguredReply, Actions: []Action{}}
	}

	products, err := a.products.List(ctx, "")
	if err != nil {
		a.logger.Printf("chat: list products error=%v", err)
		return Response{Message: unavailableReply, Actions: []Action{}}
	}

	text, err := a.completer.Complete(ctx, buildPrompt(products, message))
	if err != nil {
		a.logger.Printf("chat: completion session_id=%s error=%v", sessionID, err)
		return Response{Message: unavailableReply, Actions: []Action{}}
	}

	resp := Response{Message: text, Actions: []Action{}}
	raw, ok := extractAction(text)
	if !ok {
		return resp
	}
	resp.Message = strings.TrimSpace(strings.Replace(text, raw, "", 1))

	action, err := a.execute(ctx, sessionID, raw)
	if err != nil {
		a.logger.Printf("chat: action session_id=%s error=%v", sessionID, err)
		return resp
	}
	if action != nil {
		resp.Actions = append(resp.Actions, *action)
	}
	return resp
}

type actionPayload struct {
	Action      string `json:"action"`
	ProductID   string `json:"productId"`
	Quantity    *int   `json:"quantity"`
	ProductName string `json:"productName"`
	Page        string `json:"page"`
}

func (a *Assistant) execute(ctx context.Context, sessionID, raw string) (*Action, error) {
	var p actionPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("parse action: %w", err)
	}
	switch p.Action {
	case "add_to_cart":
		qty := 1
		if p.Quantity != nil {
			qty = *p.Quantity
		}
		if err := a.cart.Add(ctx, sessionID, p.ProductID, qty); err != nil {
			return nil, fmt.Errorf("add_to_cart product_id=%s: %w", p.ProductID, err)
		}
		a.logger.Printf("chat: add_to_cart session_id=%s product_id=%s quantity=%d", sessionID, p.ProductID, qty)
		return &Action{Type: "add_to_cart", Data: map[string]any{
			"productId":   p.ProductID,
			"quantity":    qty,
			"productName": p.ProductName,
		}}, nil
	case "navigate":
		return &Action{Type: "navigate", Data: map[string]any{"url": p.Page}}, nil
	default:
		return nil, nil
	}
}

// extractAction returns the text between the last '{' and the last '}' when it
// mentions an "action" key.
func extractAction(text string) (string, bool) {
	start := strings.LastIndex(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	candidate := text[start : end+1]
	if !strings.Contains(candidate, `"action"`) {
		return "", false
	}
	return candidate, true
}

func buildPrompt(products []domain.Product, message string) string {
	var catalog strings.Builder
	for i, p := range products {
		if i > 0 {
			catalog.WriteByte('\n')
		}
		fmt.Fprintf(&catalog, "- %s (ID: %s): $%s - %s [Link: /products/%s]",
			p.Name, p.ID, p.Price.StringFixed(domain.PriceScale), p.Description, p.ID)
	}
	return fmt.Sprintf(promptTemplate, catalog.String()) + "\n\nUser: " + message
}

const promptTemplate = `You are a helpful AI assistant for an e-commerce shop called EShop.
You have access to the following products in stock:
%s

Your goal is to help the user find products and add them to their cart.
You can perform the following ACTIONS by outputting a specific JSON block at the END of your message:

1. Add to Cart:
{ "action": "add_to_cart", "productId": "<product id>", "quantity": 1, "productName": "Name" }

2. Navigate:
{ "action": "navigate", "page": "/cart" }

Supported Navigation Paths:
- Home: "/"
- Cart: "/cart"
- Checkout: "/checkout"
- Product Page: "/products/<product id>" (Use the Link provided in the product list)

If the user asks to add something to cart, confirm which product and then output the JSON action.
If the user asks to see the cart or checkout, output the navigate action.
If the user asks to see a specific product, output the navigate action with the product's Link.
Always be friendly and concise. Do NOT output the JSON if you are just chatting.
Only output ONE action per message.
`
