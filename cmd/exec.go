package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"eventbook/config"
	"eventbook/internal/handlers"
	"eventbook/internal/services"
	"eventbook/internal/store"
	"eventbook/monitoring"
	"eventbook/security"
	"eventbook/utils"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go/v7"
)

func Start() error {
	app := pocketbase.New()

	cfg := config.LoadConfig()

	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	pnConfig := pubnub.NewConfigWithUserId(pubnub.UserId("eventbook-server"))
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey
	pn := pubnub.NewPubNub(pnConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := store.NewPB(app)
	locker := services.NewRedisEventLocker(redisClient, cfg.BookingLockTimeout)
	notifier := services.NewNotifyService(app, pn)

	authService := services.NewAuthService(st, notifier, cfg)
	catalogService := services.NewCatalogService(st)
	bookingService := services.NewBookingService(st, locker, notifier)
	reportService := services.NewReportService(app)

	authMW := handlers.NewAuthMiddleware(authService, st, cfg.SessionCookie)
	limiter := security.NewRateLimiter(redisClient, cfg.RateLimitWindow, cfg.RateLimitRequests)

	authHandler := handlers.NewAuthHandler(authService, cfg)
	categoryHandler := handlers.NewCategoryHandler(catalogService)
	eventHandler := handlers.NewEventHandler(catalogService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	adminHandler := handlers.NewAdminHandler(bookingService, reportService)

	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	if cfg.EnableMetrics {
		go monitoring.NewMonitor(app).Run(ctx)
	}

	go handleShutdown(cancel)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Auth
		e.Router.POST("/api/auth/register", limiter.Limit("auth", authHandler.Register))
		e.Router.POST("/api/auth/login", limiter.Limit("auth", authHandler.Login))
		e.Router.POST("/api/auth/refresh", limiter.Limit("auth", authHandler.Refresh))
		e.Router.POST("/api/auth/logout", authMW.Require(authHandler.Logout))
		e.Router.POST("/api/auth/forgot-password", limiter.Limit("auth", authHandler.ForgotPassword))
		e.Router.POST("/api/auth/reset-password", limiter.Limit("auth", authHandler.ResetPassword))
		e.Router.GET("/api/users/me", authMW.Require(authHandler.Me))
		e.Router.PUT("/api/users/profile", authMW.Require(authHandler.UpdateProfile))

		// Public catalog
		e.Router.GET("/api/events", eventHandler.List)
		e.Router.GET("/api/events/{slug}", eventHandler.GetBySlug)
		e.Router.GET("/api/categories", categoryHandler.List)
		e.Router.GET("/api/categories/{id}", categoryHandler.Get)

		// Admin catalog
		e.Router.POST("/api/events", authMW.RequireAdmin(eventHandler.Create))
		e.Router.PUT("/api/events/{id}", authMW.RequireAdmin(eventHandler.Update))
		e.Router.DELETE("/api/events/{id}", authMW.RequireAdmin(eventHandler.Delete))
		e.Router.POST("/api/categories", authMW.RequireAdmin(categoryHandler.Create))
		e.Router.PUT("/api/categories/{id}", authMW.RequireAdmin(categoryHandler.Update))
		e.Router.DELETE("/api/categories/{id}", authMW.RequireAdmin(categoryHandler.Delete))

		// Bookings
		e.Router.POST("/api/bookings/{eventId}", limiter.Limit("booking", authMW.Require(bookingHandler.Create)))
		e.Router.POST("/api/bookings/{eventId}/reserve", limiter.Limit("booking", authMW.Require(bookingHandler.Reserve)))
		e.Router.POST("/api/bookings/{id}/cancel", authMW.Require(bookingHandler.Cancel))
		e.Router.GET("/api/bookings", authMW.Require(bookingHandler.ListMine))

		// Admin reports + booking lifecycle
		e.Router.PATCH("/api/admin/bookings/{id}/status", authMW.RequireAdmin(adminHandler.SetBookingStatus))
		e.Router.GET("/api/admin/reports/bookings-per-event", authMW.RequireAdmin(adminHandler.BookingsPerEvent))
		e.Router.GET("/api/admin/reports/revenue-per-category", authMW.RequireAdmin(adminHandler.RevenuePerCategory))
		e.Router.GET("/api/admin/reports/bookings", authMW.RequireAdmin(adminHandler.BookingList))
		e.Router.GET("/api/admin/dashboard", authMW.RequireAdmin(adminHandler.Dashboard))

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		if cfg.EnableMetrics {
			metricsHandler := promhttp.Handler()
			e.Router.GET("/metrics", func(e *core.RequestEvent) error {
				metricsHandler.ServeHTTP(e.Response, e.Request)
				return nil
			})
		}

		slog.Info("server routes registered", "environment", cfg.Environment)

		return e.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	slog.Info("shutdown signal received, cleaning up")
	cancel()
}
