package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/openlot/openlot/openlot"
	"github.com/openlot/openlot/openlot/logger"
	"github.com/openlot/openlot/server/handlers"
	"github.com/openlot/openlot/server/middleware"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	shouldSyncSchema := flag.Bool("sync-schema", false, "Whether to recreate missing tables and indexes")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := openlot.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to read config", slog.Any("error", err))
		os.Exit(-1)
	}

	customHandler := logger.NewHandler(cfg.Log.Level)
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting OpenLot API",
		slog.String("version", version),
		slog.String("commit", commit))

	if *shouldSyncSchema {
		os.Setenv("DB_FAST_INIT", "0")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	application := openlot.New(*cfg, version, commit)
	if err := application.Setup(ctx); err != nil {
		cancel()
		slog.Error("Failed to set up application", slog.Any("error", err))
		os.Exit(-1)
	}
	cancel()

	app := fiber.New(fiber.Config{
		AppName:      "OpenLot API",
		ServerHeader: "OpenLot",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(middleware.LoggingMiddleware())

	webApp := &handlers.WebApp{App: application}
	setupRoutes(app, webApp)

	address := cfg.Server.Addr()
	slog.Info("Starting server", slog.String("address", address))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := app.Listen(address); err != nil {
			slog.Error("Failed to start server", slog.Any("error", err))
			c <- syscall.SIGTERM
		}
	}()

	<-c
	slog.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", slog.Any("error", err))
	}

	application.Shutdown()
}

// setupRoutes configures all application routes.
func setupRoutes(app *fiber.App, webApp *handlers.WebApp) {
	users := webApp.App.UserRepository

	app.Get("/health", handlers.HealthCheck(webApp))

	api := app.Group("/api/v1")
	api.Use(middleware.APIRateLimit())

	// Authentication
	auth := api.Group("/auth")
	auth.Post("/register", middleware.AuthRateLimit(), handlers.Register(webApp))
	auth.Post("/login", middleware.AuthRateLimit(), handlers.Login(webApp))
	auth.Post("/logout", middleware.AuthRequired(users), handlers.Logout(webApp))
	auth.Get("/me", middleware.AuthRequired(users), handlers.Me(webApp))

	// Properties
	properties := api.Group("/properties")
	properties.Get("/", middleware.OptionalAuth(users), handlers.PropertiesList(webApp))
	properties.Get("/suggest", handlers.PropertiesSuggest(webApp))
	properties.Get("/mine", middleware.AuthRequired(users), handlers.PropertiesMine(webApp))
	properties.Get("/mine/valuation", middleware.AuthRequired(users), handlers.PortfolioValuation(webApp))
	properties.Get("/:id", handlers.PropertiesDetail(webApp))
	properties.Get("/:id/valuation", handlers.PropertiesValuation(webApp))
	properties.Post("/", middleware.AuthRequired(users), handlers.PropertiesCreate(webApp))
	properties.Put("/:id", middleware.AuthRequired(users), handlers.PropertiesUpdate(webApp))
	properties.Post("/:id/publish", middleware.AuthRequired(users), handlers.PropertiesPublish(webApp))
	properties.Delete("/:id", middleware.AuthRequired(users), handlers.PropertiesArchive(webApp))
	properties.Post("/:id/photos", middleware.AuthRequired(users), middleware.UploadRateLimit(), handlers.PropertiesUploadPhoto(webApp))

	// Auctions and bids
	auctions := api.Group("/auctions")
	auctions.Get("/", handlers.AuctionsLive(webApp))
	auctions.Get("/bids/mine", middleware.AuthRequired(users), handlers.AuctionsMyBids(webApp))
	auctions.Get("/:id", middleware.OptionalAuth(users), handlers.AuctionsDetail(webApp))
	auctions.Get("/:id/bids", middleware.OptionalAuth(users), handlers.AuctionsBids(webApp))
	auctions.Post("/", middleware.AuthRequired(users), handlers.AuctionsCreate(webApp))
	auctions.Post("/:id/activate", middleware.AuthRequired(users), handlers.AuctionsActivate(webApp))
	auctions.Post("/:id/cancel", middleware.AuthRequired(users), handlers.AuctionsCancel(webApp))
	auctions.Post("/:id/invite", middleware.AuthRequired(users), handlers.AuctionsInvite(webApp))
	auctions.Post("/:id/bids", middleware.AuthRequired(users), middleware.BidRateLimit(), handlers.AuctionsPlaceBid(webApp))

	// Contracts and payments
	contracts := api.Group("/contracts", middleware.AuthRequired(users))
	contracts.Get("/", handlers.ContractsMine(webApp))
	contracts.Get("/:id", handlers.ContractsDetail(webApp))
	contracts.Get("/:id/payments", handlers.ContractsPayments(webApp))
	contracts.Post("/:id/payments", handlers.ContractsCreatePayment(webApp))

	payments := api.Group("/payments", middleware.AuthRequired(users), middleware.AdminRequired())
	payments.Post("/:id/confirm", middleware.AuditLogMiddleware("payment_confirm"), handlers.PaymentsConfirm(webApp))
	payments.Post("/:id/fail", middleware.AuditLogMiddleware("payment_fail"), handlers.PaymentsFail(webApp))

	adminContracts := api.Group("/admin/contracts", middleware.AuthRequired(users), middleware.AdminRequired())
	adminContracts.Post("/:id/complete", middleware.AuditLogMiddleware("contract_complete"), handlers.ContractsComplete(webApp))

	// Documents
	documents := api.Group("/documents", middleware.AuthRequired(users))
	documents.Get("/", handlers.DocumentsMine(webApp))
	documents.Get("/:id/download", handlers.DocumentsDownload(webApp))
	documents.Post("/", middleware.UploadRateLimit(), handlers.DocumentsUpload(webApp))

	adminDocuments := api.Group("/admin/documents", middleware.AuthRequired(users), middleware.AdminRequired())
	adminDocuments.Get("/pending", handlers.DocumentsPending(webApp))
	adminDocuments.Post("/:id/review", middleware.AuditLogMiddleware("document_review"), handlers.DocumentsReview(webApp))

	// Messaging
	threads := api.Group("/threads", middleware.AuthRequired(users))
	threads.Get("/", handlers.ThreadsMine(webApp))
	threads.Post("/", handlers.ThreadsCreate(webApp))
	threads.Get("/:id/messages", handlers.ThreadsMessages(webApp))
	threads.Post("/:id/messages", handlers.ThreadsPostMessage(webApp))

	// Notifications
	notifications := api.Group("/notifications", middleware.AuthRequired(users))
	notifications.Get("/", handlers.NotificationsList(webApp))
	notifications.Post("/read", handlers.NotificationsMarkAllRead(webApp))
	notifications.Post("/:id/read", handlers.NotificationsMarkRead(webApp))

	app.Use(func(c *fiber.Ctx) error {
		slog.Warn("No route matched for request",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()))
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"error": fiber.Map{
				"code":    "NOT_FOUND",
				"message": "The requested endpoint does not exist",
			},
		})
	})
}
