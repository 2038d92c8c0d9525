package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	httpin "shoecare/internal/adapters/in/http"
	"shoecare/internal/adapters/out/events"
	"shoecare/internal/adapters/out/filestore"
	"shoecare/internal/adapters/out/inmemory"
	"shoecare/internal/adapters/out/postgres"
	redispub "shoecare/internal/adapters/out/redis"
	"shoecare/internal/core/application/usecases/commands"
	"shoecare/internal/core/application/usecases/queries"
	"shoecare/internal/core/domain/services"
	"shoecare/internal/core/ports"
	"shoecare/internal/jobs"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type CompositionRoot struct {
	cfg         Config
	logger      *slog.Logger
	loyaltyRate decimal.Decimal
	uowFactory  ports.UnitOfWorkFactory
	images      ports.ImageStore
	closers     []func() error
}

// NewCompositionRoot connects the configured store, event publisher and image store.
func NewCompositionRoot(ctx context.Context, cfg Config, logger *slog.Logger) (*CompositionRoot, error) {
	root := &CompositionRoot{cfg: cfg, logger: logger}
	rate, err := cfg.LoyaltyRateDecimal()
	if err != nil {
		return nil, err
	}
	root.loyaltyRate = rate

	var publisher ports.EventPublisher = events.NewLogPublisher(logger)
	if cfg.RedisAddr != "" {
		client, clientErr := redispub.NewClient(ctx, cfg.RedisAddr)
		if clientErr != nil {
			return nil, clientErr
		}
		root.closers = append(root.closers, client.Close)
		publisher = redispub.NewPublisher(client, cfg.EventsChannelPrefix)
	}
	dispatcher := events.NewDispatcher(publisher, logger)

	switch cfg.Store {
	case StoreMemory:
		root.uowFactory = inmemory.NewUnitOfWorkFactory(inmemory.NewStore(), dispatcher)
	default:
		db, dbErr := OpenDB(cfg)
		if dbErr != nil {
			_ = root.Close()
			return nil, dbErr
		}
		sqlDB, dbErr := db.DB()
		if dbErr != nil {
			_ = root.Close()
			return nil, dbErr
		}
		root.closers = append(root.closers, sqlDB.Close)
		root.uowFactory = postgres.NewGormUnitOfWorkFactory(db, dispatcher)
	}

	images, err := filestore.New(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		_ = root.Close()
		return nil, err
	}
	root.images = images
	return root, nil
}

// NewCompositionRootWith wires the application around an existing store and image store.
func NewCompositionRootWith(
	cfg Config,
	logger *slog.Logger,
	uowFactory ports.UnitOfWorkFactory,
	images ports.ImageStore,
) (*CompositionRoot, error) {
	rate, err := cfg.LoyaltyRateDecimal()
	if err != nil {
		return nil, err
	}
	return &CompositionRoot{
		cfg:         cfg,
		logger:      logger,
		loyaltyRate: rate,
		uowFactory:  uowFactory,
		images:      images,
	}, nil
}

// OpenDB opens the PostgreSQL connection pool.
func OpenDB(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(pgdriver.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// Close releases connections in reverse order of acquisition.
func (c *CompositionRoot) Close() error {
	var joined []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		joined = append(joined, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(joined...)
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) courierUoW() commands.CourierUoWFactory {
	return FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) readers() queries.ReaderFactory {
	return FuncReaderFactory(func() queries.Reader {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.uow(), c.loyaltyRate)
}

func (c *CompositionRoot) CreateSubmitPaymentProofCommandHandler() commands.SubmitPaymentProofCommandHandler {
	return commands.NewSubmitPaymentProofCommandHandler(c.uow())
}

func (c *CompositionRoot) CreateConfirmPaymentCommandHandler() commands.ConfirmPaymentCommandHandler {
	return commands.NewConfirmPaymentCommandHandler(c.uow())
}

func (c *CompositionRoot) CreateRejectOrderCommandHandler() commands.RejectOrderCommandHandler {
	return commands.NewRejectOrderCommandHandler(c.uow(), c.images, c.logger)
}

func (c *CompositionRoot) CreateEditOrderItemsCommandHandler() commands.EditOrderItemsCommandHandler {
	return commands.NewEditOrderItemsCommandHandler(c.uow())
}

func (c *CompositionRoot) CreateAdvanceStatusCommandHandler() commands.AdvanceStatusCommandHandler {
	return commands.NewAdvanceStatusCommandHandler(c.uow())
}

func (c *CompositionRoot) CreateAssignCourierCommandHandler() commands.AssignCourierCommandHandler {
	return commands.NewAssignCourierCommandHandler(c.uow())
}

func (c *CompositionRoot) CreateOfferOrderCommandHandler() commands.OfferOrderCommandHandler {
	return commands.NewOfferOrderCommandHandler(c.uow())
}

func (c *CompositionRoot) CreateAcceptOfferCommandHandler() commands.AcceptOfferCommandHandler {
	return commands.NewAcceptOfferCommandHandler(c.uow())
}

func (c *CompositionRoot) CreateDeclineOfferCommandHandler() commands.DeclineOfferCommandHandler {
	return commands.NewDeclineOfferCommandHandler(c.uow())
}

func (c *CompositionRoot) CreateStartPickupCommandHandler() commands.StartPickupCommandHandler {
	return commands.NewStartPickupCommandHandler(c.uow())
}

func (c *CompositionRoot) CreateContactCustomerCommandHandler() commands.ContactCustomerCommandHandler {
	return commands.NewContactCustomerCommandHandler(c.uow())
}

func (c *CompositionRoot) CreateUploadPickupProofCommandHandler() commands.UploadPickupProofCommandHandler {
	return commands.NewUploadPickupProofCommandHandler(c.uow())
}

func (c *CompositionRoot) CreateArriveWorkshopCommandHandler() commands.ArriveWorkshopCommandHandler {
	return commands.NewArriveWorkshopCommandHandler(c.uow())
}

func (c *CompositionRoot) CreateCreateCourierCommandHandler() commands.CreateCourierCommandHandler {
	return commands.NewCreateCourierCommandHandler(c.courierUoW())
}

func (c *CompositionRoot) CreateUpdateCourierCommandHandler() commands.UpdateCourierCommandHandler {
	return commands.NewUpdateCourierCommandHandler(c.courierUoW())
}

func (c *CompositionRoot) CreateReconcileCouriersCommandHandler() commands.ReconcileCouriersCommandHandler {
	return commands.NewReconcileCouriersCommandHandler(c.uow(), c.logger.With("component", "reconcile_couriers"))
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.readers())
}

func (c *CompositionRoot) CreateTrackOrderQueryHandler() queries.TrackOrderQueryHandler {
	return queries.NewTrackOrderQueryHandler(c.readers())
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.readers())
}

func (c *CompositionRoot) CreateGetAllCouriersQueryHandler() queries.GetAllCouriersQueryHandler {
	return queries.NewGetAllCouriersQueryHandler(c.readers())
}

func (c *CompositionRoot) CreateCourierQueueQueryHandler() queries.CourierQueueQueryHandler {
	return queries.NewCourierQueueQueryHandler(c.readers())
}

func (c *CompositionRoot) CreateSuggestCouriersQueryHandler() queries.SuggestCouriersQueryHandler {
	return queries.NewSuggestCouriersQueryHandler(c.readers(), services.NewOrderDispatcher())
}

// CreateHTTPServer builds the API server with every use case attached.
func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(httpin.Handlers{
		CreateOrder:        c.CreateCreateOrderCommandHandler(),
		SubmitPaymentProof: c.CreateSubmitPaymentProofCommandHandler(),
		ConfirmPayment:     c.CreateConfirmPaymentCommandHandler(),
		RejectOrder:        c.CreateRejectOrderCommandHandler(),
		EditOrderItems:     c.CreateEditOrderItemsCommandHandler(),
		AdvanceStatus:      c.CreateAdvanceStatusCommandHandler(),
		AssignCourier:      c.CreateAssignCourierCommandHandler(),
		OfferOrder:         c.CreateOfferOrderCommandHandler(),
		AcceptOffer:        c.CreateAcceptOfferCommandHandler(),
		DeclineOffer:       c.CreateDeclineOfferCommandHandler(),
		StartPickup:        c.CreateStartPickupCommandHandler(),
		ContactCustomer:    c.CreateContactCustomerCommandHandler(),
		UploadPickupProof:  c.CreateUploadPickupProofCommandHandler(),
		ArriveWorkshop:     c.CreateArriveWorkshopCommandHandler(),
		CreateCourier:      c.CreateCreateCourierCommandHandler(),
		UpdateCourier:      c.CreateUpdateCourierCommandHandler(),
		GetOrder:           c.CreateGetOrderQueryHandler(),
		TrackOrder:         c.CreateTrackOrderQueryHandler(),
		ListOrders:         c.CreateListOrdersQueryHandler(),
		GetAllCouriers:     c.CreateGetAllCouriersQueryHandler(),
		CourierQueue:       c.CreateCourierQueueQueryHandler(),
		SuggestCouriers:    c.CreateSuggestCouriersQueryHandler(),
	}, c.images, c.logger)
}

// CreateEcho builds the echo instance serving the API.
func (c *CompositionRoot) CreateEcho(ctx context.Context) (*echo.Echo, error) {
	// Absolute UPLOAD_BASE_URLs point at an external host; only paths are served locally.
	uploadDir := ""
	if strings.HasPrefix(c.cfg.UploadBaseURL, "/") {
		uploadDir = c.cfg.UploadDir
	}
	return httpin.NewEcho(ctx, c.CreateHTTPServer(), httpin.Config{
		JWTSecret:   []byte(c.cfg.JWTSecret),
		UploadDir:   uploadDir,
		UploadRoute: c.cfg.UploadBaseURL,
		Development: c.cfg.Development,
	}, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.CreateReconcileCouriersCommandHandler(), c.cfg.ReconcileSchedule, c.logger)
}

type FuncCourierUoWFactory func() commands.CourierUoW

func (f FuncCourierUoWFactory) Create() commands.CourierUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncReaderFactory func() queries.Reader

func (f FuncReaderFactory) Create() queries.Reader {
	return f()
}
