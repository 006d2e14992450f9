package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"

	"eshop/internal/chat"
	"eshop/internal/domain"
	"eshop/internal/imaging"
	cartsvc "eshop/internal/service/cart"
	"eshop/internal/service/checkout"
	productsvc "eshop/internal/service/product"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productService interface {
	List(ctx context.Context, categoryID string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Featured(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, in productsvc.Input) (*domain.Product, error)
	Update(ctx context.Context, id string, in productsvc.Input) (*domain.Product, error)
	SetImage(ctx context.Context, id, imageURL string) error
	ApplyImages(ctx context.Context, files []string, rules []imaging.ImageRule) (int, error)
}

type categoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
}

type cartService interface {
	Summary(ctx context.Context, sessionID string) (*cartsvc.Summary, error)
	Add(ctx context.Context, sessionID, productID string, quantity int) error
	Remove(ctx context.Context, sessionID, cartItemID string) error
}

type orderService interface {
	CreateFromCart(ctx context.Context, sessionID, customerName, customerEmail string) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
}

type checkoutService interface {
	Checkout(ctx context.Context, in checkout.Input) (checkout.Outcome, error)
	PaymentSucceeded(ctx context.Context, sessionID, gatewayToken string) (checkout.Outcome, bool, error)
	PaymentCancelled(ctx context.Context, sessionID, orderID string) (checkout.Outcome, error)
	GatewayEnabled() bool
}

type chatService interface {
	Reply(ctx context.Context, sessionID, message string) chat.Response
}

type imageStore interface {
	SaveOriginal(productID, fileName string, r io.Reader) (string, error)
	ProcessProductImage(ctx context.Context, originalPath, productID string) (string, error)
	ListFiles() ([]string, error)
}

// Deps are the services behind the routes. ImageRules defaults to
// imaging.DefaultRules.
type Deps struct {
	ProductSvc  productService
	CategorySvc categoryService
	CartSvc     cartService
	OrderSvc    orderService
	CheckoutSvc checkoutService
	ChatSvc     chatService
	Images      imageStore
	ImageRules  []imaging.ImageRule

	AdminAPIKey          string
	StripePublishableKey string
	UploadDir            string
	CORSAllowedOrigin    string
}

var errMissingDeps = errors.New("httpserver: product, category, cart, order and checkout services are required")

// buildRouter wires routes for the storefront and its APIs.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.ProductSvc == nil || deps.CategorySvc == nil || deps.CartSvc == nil || deps.OrderSvc == nil || deps.CheckoutSvc == nil {
		return nil, errMissingDeps
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if deps.ImageRules == nil {
		deps.ImageRules = imaging.DefaultRules
	}

	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(corsConfig(deps.CORSAllowedOrigin)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	if deps.UploadDir != "" {
		router.Static("/uploads", filepath.Clean(deps.UploadDir))
	}

	h := &handlers{deps: deps, logger: logger}

	shop := router.Group("/", sessionMiddleware())
	shop.GET("/products", h.listProducts)
	shop.GET("/products/featured", h.featuredProducts)
	shop.GET("/products/:id", h.getProduct)
	shop.GET("/categories", h.listCategories)

	shop.GET("/cart", h.getCart)
	shop.POST("/cart/items", h.addCartItem)
	shop.POST("/cart/items/:id/remove", h.removeCartItem)

	shop.GET("/checkout", h.checkoutForm)
	shop.POST("/checkout", h.submitCheckout)
	shop.GET("/orders/payment-success", h.paymentSuccess)
	shop.GET("/orders/payment-cancelled", h.paymentCancelled)
	shop.GET("/orders/:id", h.getOrder)

	api := router.Group("/api", sessionMiddleware())
	api.POST("/orders", h.createOrder)
	api.POST("/chat", h.chat)

	admin := router.Group("/admin", adminGuard(deps.AdminAPIKey))
	admin.GET("/products", h.adminListProducts)
	admin.POST("/products", h.adminCreateProduct)
	admin.PUT("/products/:id", h.adminUpdateProduct)
	admin.POST("/products/:id/image", h.adminUploadImage)
	admin.POST("/products/apply-images", h.adminApplyImages)

	return router, nil
}

func corsConfig(origin string) cors.Config {
	cfg := cors.DefaultConfig()
	if origin == "" || origin == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = []string{origin}
		cfg.AllowCredentials = true
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "X-API-KEY")
	return cfg
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}

// writeError maps service errors to JSON bodies without leaking internals.
func (h *handlers) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty."})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Printf("http: %s error=%v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
