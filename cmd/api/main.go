package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"eshop/internal/chat"
	"eshop/internal/config"
	"eshop/internal/db"
	"eshop/internal/events"
	"eshop/internal/httpserver"
	"eshop/internal/imaging"
	"eshop/internal/notify"
	"eshop/internal/payment"
	cartrepo "eshop/internal/repository/cart"
	categoryrepo "eshop/internal/repository/category"
	orderrepo "eshop/internal/repository/order"
	productrepo "eshop/internal/repository/product"
	cartsvc "eshop/internal/service/cart"
	categorysvc "eshop/internal/service/category"
	"eshop/internal/service/checkout"
	ordersvc "eshop/internal/service/order"
	productsvc "eshop/internal/service/product"
	"eshop/internal/session"
	"github.com/joho/godotenv"
)

func main() {
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Printf("load .env: %v", err)
	}
	cfg := config.FromEnv()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	categoryRepo := categoryrepo.NewPostgres(dbpool)
	cartRepo := cartrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)

	productService := productsvc.New(productRepo, categoryRepo, logger)
	categoryService := categorysvc.New(categoryRepo)
	cartService := cartsvc.New(cartRepo, productRepo, logger)
	orderService := ordersvc.New(orderRepo, logger)

	pending, closePending := pendingStore(ctx, cfg, logger)
	defer closePending()
	publisher, closePublisher := eventPublisher(cfg, logger)
	defer closePublisher()

	checkoutService := checkout.New(checkout.Deps{
		Orders:   orderService,
		Carts:    cartService,
		Pending:  pending,
		Mode:     paymentMode(cfg, logger),
		Notifier: receiptSender(cfg, logger),
		Events:   publisher,
		Logger:   logger,
	})

	var completer chat.Completer
	if chat.KeyConfigured(cfg.GeminiAPIKey) {
		completer = chat.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	assistant := chat.NewAssistant(completer, productService, cartService, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		ProductSvc:           productService,
		CategorySvc:          categoryService,
		CartSvc:              cartService,
		OrderSvc:             orderService,
		CheckoutSvc:          checkoutService,
		ChatSvc:              assistant,
		Images:               imaging.NewProcessor(cfg.UploadDir, cfg.RemoveBgAPIKey, logger),
		AdminAPIKey:          cfg.AdminAPIKey,
		StripePublishableKey: cfg.StripePublishableKey,
		UploadDir:            cfg.UploadDir,
		CORSAllowedOrigin:    cfg.CORSAllowedOrigin,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

func paymentMode(cfg config.Config, logger *log.Logger) checkout.PaymentMode {
	if !cfg.GatewayEnabled() {
		logger.Printf("payment gateway not configured, orders complete directly")
		return checkout.NoGateway{}
	}
	return checkout.HostedGateway{
		Gateway: payment.NewStripe(cfg.StripeSecretKey, cfg.AppURL, logger),
		BaseURL: cfg.AppURL,
	}
}

func pendingStore(ctx context.Context, cfg config.Config, logger *log.Logger) (session.PendingOrders, func()) {
	if cfg.RedisURL == "" {
		return session.NewMemory(cfg.PendingOrderTTL), func() {}
	}
	client, err := session.DialRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatalf("connect redis: %v", err)
	}
	logger.Printf("pending orders stored in redis")
	return session.NewRedis(client, cfg.PendingOrderTTL), func() { _ = client.Close() }
}

func eventPublisher(cfg config.Config, logger *log.Logger) (events.Publisher, func()) {
	if cfg.AMQPURL == "" {
		return events.Noop{}, func() {}
	}
	pub, err := events.DialRabbitMQ(cfg.AMQPURL, cfg.OrderEventsQueue, logger)
	if err != nil {
		logger.Printf("rabbitmq unavailable, order events disabled: %v", err)
		return events.Noop{}, func() {}
	}
	return pub, func() { _ = pub.Close() }
}

func receiptSender(cfg config.Config, logger *log.Logger) notify.Sender {
	if !cfg.SMTP.Enabled() {
		return notify.NewDisabled(logger)
	}
	sender, err := notify.NewSMTP(cfg.SMTP, logger)
	if err != nil {
		logger.Printf("smtp client: %v, receipts disabled", err)
		return notify.NewDisabled(logger)
	}
	return sender
}
