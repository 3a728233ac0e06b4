package openlot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openlot/openlot/openlot/auction"
	"github.com/openlot/openlot/openlot/database"
	"github.com/openlot/openlot/openlot/database/repositories"
	"github.com/openlot/openlot/openlot/notifications"
	"github.com/openlot/openlot/openlot/services"
)

func New(cfg Config, version string, commit string) *App {
	return &App{
		Cfg:     cfg,
		Version: version,
		Commit:  commit,
	}
}

// App holds every wired component of the marketplace. main builds one and
// hands it to the HTTP layer.
type App struct {
	Cfg     Config
	Version string
	Commit  string

	DB *database.DB

	UserRepository         repositories.UserRepository
	PropertyRepository     repositories.PropertyRepository
	AuctionRepository      repositories.AuctionRepository
	ContractRepository     repositories.ContractRepository
	DocumentRepository     repositories.DocumentRepository
	MessageRepository      repositories.MessageRepository
	NotificationRepository repositories.NotificationRepository

	SpacesService       *services.SpacesService
	SearchService       *services.PropertySearchService
	ValuationService    *services.ValuationService
	NotificationService *notifications.Service

	EventPublisher   notifications.Publisher
	AuctionManager   *auction.Manager
	AuctionScheduler *auction.Scheduler
}

// Setup connects the database and wires repositories and services. The
// AMQP publisher is optional: a missing broker URL turns fan-out off
// without failing startup.
func (a *App) Setup(ctx context.Context) error {
	db, err := database.New(ctx, a.Cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	a.DB = db

	if err := db.InitializeSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	bunDB := db.BunDB()
	a.UserRepository = repositories.NewUserRepository(bunDB)
	a.PropertyRepository = repositories.NewPropertyRepository(bunDB)
	a.AuctionRepository = repositories.NewAuctionRepository(bunDB)
	a.ContractRepository = repositories.NewContractRepository(bunDB)
	a.DocumentRepository = repositories.NewDocumentRepository(bunDB)
	a.MessageRepository = repositories.NewMessageRepository(bunDB)
	a.NotificationRepository = repositories.NewNotificationRepository(bunDB)

	if a.Cfg.AMQP.URL != "" {
		publisher, err := notifications.NewAMQPPublisher(a.Cfg.AMQP)
		if err != nil {
			slog.Error("Failed to connect to message broker, fan-out disabled",
				slog.Any("error", err))
		} else {
			a.EventPublisher = publisher
		}
	}
	a.NotificationService = notifications.NewService(a.NotificationRepository, a.EventPublisher)

	spaces, err := services.NewSpacesService(a.Cfg.Spaces)
	if err != nil {
		return fmt.Errorf("failed to set up object storage: %w", err)
	}
	a.SpacesService = spaces

	a.SearchService = services.NewPropertySearchService(a.PropertyRepository)
	a.ValuationService = services.NewValuationService(a.AuctionRepository)

	notifier := auction.NewNotifier(a.NotificationService)
	a.AuctionManager = auction.NewManager(a.AuctionRepository, notifier)
	a.AuctionScheduler = auction.NewScheduler(a.AuctionManager, a.UserRepository)
	a.AuctionScheduler.Start()

	return nil
}

// Shutdown releases background workers and connections in reverse
// dependency order.
func (a *App) Shutdown() {
	if a.AuctionScheduler != nil {
		a.AuctionScheduler.Shutdown()
	}
	if a.EventPublisher != nil {
		if err := a.EventPublisher.Close(); err != nil {
			slog.Error("Failed to close event publisher", slog.Any("error", err))
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
	slog.Info("Application shutdown completed",
		slog.String("version", a.Version))
}
