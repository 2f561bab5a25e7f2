package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/petalcart/petalcart/internal/api/handlers"
	"github.com/petalcart/petalcart/internal/api/middleware"
	"github.com/petalcart/petalcart/internal/config"
	"github.com/petalcart/petalcart/internal/content"
	"github.com/petalcart/petalcart/internal/health"
	"github.com/petalcart/petalcart/internal/metrics"
	repository "github.com/petalcart/petalcart/internal/repositories"
	service "github.com/petalcart/petalcart/internal/services"
	"github.com/petalcart/petalcart/internal/session"
	"github.com/petalcart/petalcart/pkg/sendgrid"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.MustLoad()

	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("Error accessing the database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}()

	redisClient, err := repository.NewRedisClient(cfg)
	if err != nil {
		slog.Error("Error accessing the redis instance", slog.String("error", err.Error()))
		os.Exit(1)
	}

	jwtKey := []byte(cfg.Security.JWTKey)
	sessionStore := session.NewRedisStore(redisClient, cfg.Session.GuestCartTTL)
	rateLimiter := repository.NewRateLimitRepo(redisClient, &cfg.RateConfig)
	contentStore := content.NewStore(cfg.Content.Dir)

	var notifier *service.NotificationService
	if cfg.SendGrid.APIKey != "" {
		notifier = service.NewNotificationService(
			sendgrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName))
	}

	cartService := service.NewCartService(repos.Cart, sessionStore)
	cartHandler := handlers.NewCartHandler(cartService)
	userService := service.NewUserService(repos.User, rateLimiter, cartService, jwtKey, cfg.Security.AdminEmails)
	userHandler := handlers.NewUserHandler(userService)
	orderService := service.NewOrderService(repos.Order, notifier)
	orderHandler := handlers.NewOrderHandler(orderService)
	catalogService := service.NewCatalogService(contentStore)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	adminHandler := handlers.NewAdminHandler(userService, orderService, contentStore)
	authMiddleware := middleware.NewAuthMiddleware(jwtKey)

	healthHandler, err := health.NewHealthHandler(cfg)
	if err != nil {
		slog.Error("Error building health checks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	routerMux := http.NewServeMux()
	routerMux.HandleFunc("POST /api/v1/users/register", userHandler.Register())
	routerMux.HandleFunc("POST /api/v1/users/login", userHandler.Login())
	routerMux.HandleFunc("GET /api/v1/users/profile", authMiddleware.Authenticate(userHandler.Profile()))
	routerMux.HandleFunc("GET /api/v1/cart", authMiddleware.AuthenticateOptional(cartHandler.GetCart()))
	routerMux.HandleFunc("POST /api/v1/cart/items", authMiddleware.AuthenticateOptional(cartHandler.AddItem()))
	routerMux.HandleFunc("PUT /api/v1/cart/items/{id}", authMiddleware.AuthenticateOptional(cartHandler.UpdateQuantity()))
	routerMux.HandleFunc("POST /api/v1/cart/clear", authMiddleware.AuthenticateOptional(cartHandler.Clear()))
	routerMux.HandleFunc("POST /api/v1/checkout", authMiddleware.Authenticate(orderHandler.Checkout()))
	routerMux.HandleFunc("GET /api/v1/orders", authMiddleware.Authenticate(orderHandler.ListMyOrders()))
	routerMux.HandleFunc("GET /api/v1/orders/{id}", authMiddleware.Authenticate(orderHandler.GetOrder()))
	routerMux.HandleFunc("GET /api/v1/catalog/products", catalogHandler.ListProducts())
	routerMux.HandleFunc("GET /api/v1/catalog/products/{slug}", catalogHandler.GetProduct())
	routerMux.HandleFunc("GET /api/v1/catalog/home", catalogHandler.Home())
	routerMux.HandleFunc("GET /api/v1/catalog/about", catalogHandler.About())
	routerMux.HandleFunc("GET /api/v1/admin/users", authMiddleware.RequireAdmin(adminHandler.ListUsers()))
	routerMux.HandleFunc("GET /api/v1/admin/orders", authMiddleware.RequireAdmin(adminHandler.ListOrders()))
	routerMux.HandleFunc("GET /api/v1/admin/orders/{id}", authMiddleware.RequireAdmin(orderHandler.GetOrder()))
	routerMux.HandleFunc("PATCH /api/v1/admin/orders/{id}/status", authMiddleware.RequireAdmin(adminHandler.UpdateOrderStatus()))
	routerMux.HandleFunc("GET /api/v1/admin/content", authMiddleware.RequireAdmin(adminHandler.ListContent()))
	routerMux.HandleFunc("GET /api/v1/admin/content/{name}", authMiddleware.RequireAdmin(adminHandler.GetContent()))
	routerMux.HandleFunc("PUT /api/v1/admin/content/{name}", authMiddleware.RequireAdmin(adminHandler.UpdateContent()))
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /health", healthHandler.Handler())

	var handler http.Handler = routerMux
	handler = middleware.GuestSession(handler)
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)

	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("Server is starting", slog.String("address", cfg.Addr), slog.String("env", cfg.Env))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("Failed to start server", slog.String("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("Shutdown signal received. Preparing to stop the server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("Server shut down gracefully. All connections closed.")
	}
}
