package app

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	aqmevents "github.com/aquamarinepk/aqm/events"
	"github.com/aquamarinepk/aqm/middleware"

	"github.com/comandaclub/comanda/internal/mongo"
	"github.com/comandaclub/comanda/internal/pos"
	"github.com/comandaclub/comanda/internal/ws"
	"github.com/comandaclub/comanda/pkg"
	"github.com/comandaclub/comanda/pkg/event"
)

const (
	AppName    = "pos"
	AppVersion = "0.1.0"
)

// App encapsulates the cashier POS service application
type App struct {
	config           *aqm.Config
	logger           aqm.Logger
	micro            *aqm.Micro
	cancellationRepo *mongo.CancellationRepo
}

// New creates a new POS service application
func New(config *aqm.Config, logger aqm.Logger) (*App, error) {
	return &App{
		config: config,
		logger: logger,
	}, nil
}

// Initialize sets up all dependencies and components
func (a *App) Initialize(ctx context.Context) error {
	a.cancellationRepo = mongo.NewCancellationRepo(a.config, a.logger)

	// Upstream service clients
	orderURL, _ := a.config.GetString("services.order.url")
	if orderURL == "" {
		return fmt.Errorf("services.order.url not configured")
	}
	orderDA := pos.NewOrderDataAccess(aqm.NewServiceClient(orderURL))

	kitchenURL, _ := a.config.GetString("services.kitchen.url")
	if kitchenURL == "" {
		return fmt.Errorf("services.kitchen.url not configured")
	}
	kitchenDA := pos.NewKitchenDataAccess(aqm.NewServiceClient(kitchenURL))

	// Initialize NATS
	natsURL, _ := a.config.GetString("nats.url")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	// Initialize NATS Stream or Publisher
	var progressStream *pkg.NATSStream
	var kitchenSubscriber *pkg.NATSSubscriber
	var orderSubscriber *pkg.NATSSubscriber
	var eventPublisher aqmevents.Publisher

	streamEnabled, _ := a.config.GetString("nats.stream.enabled")
	if streamEnabled == "true" && natsURL != "" {
		// Durable stream over kitchen progress, used to warm the cache
		streamCfg := pkg.NATSStreamConfig{
			URL:          natsURL,
			StreamName:   "KITCHEN_PROGRESS",
			Topic:        event.KitchenProgressTopic,
			ConsumerName: "pos-reconciler",
			MaxAge:       24 * time.Hour,
			MaxMsgs:      0,
		}
		var err error
		progressStream, err = pkg.NewNATSStream(streamCfg)
		if err != nil {
			return err
		}
		a.logger.Info("NATS stream initialized for progress replay")
		eventPublisher = progressStream
	} else {
		publisher, err := pkg.NewNATSPublisher(natsURL)
		if err != nil {
			return err
		}
		eventPublisher = publisher
	}

	var err error
	kitchenSubscriber, err = pkg.NewNATSSubscriber(natsURL)
	if err != nil {
		return err
	}
	orderSubscriber, err = pkg.NewNATSSubscriber(natsURL)
	if err != nil {
		return err
	}

	// Initialize progress cache
	var streamForCache aqmevents.StreamConsumer
	if progressStream != nil {
		streamForCache = progressStream
	}
	progressCache := pos.NewProgressStateCache(streamForCache, kitchenDA, a.logger)

	// Websocket hub for POS screens
	hub := ws.NewHub(a.logger)

	// Shared action board
	board := pos.NewBoard()

	// Event subscribers keep the cache and screens in sync
	kitchenEvents := pos.NewKitchenEventSubscriber(kitchenSubscriber, progressCache, board, hub, a.logger)
	orderEvents := pos.NewOrderEventSubscriber(orderSubscriber, progressCache, hub, a.logger)

	// Initialize HTTP handler
	handler := pos.NewHandler(pos.HandlerDeps{
		OrderData:   orderDA,
		KitchenData: kitchenDA,
		Progress:    progressCache,
		Board:       board,
		Audit:       a.cancellationRepo,
		Publisher:   eventPublisher,
		Hub:         hub,
	}, a.config, a.logger)

	// Setup middleware
	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      a.logger,
		DisableCORS: true,
	})

	// Setup lifecycle hooks
	lifecycles := []interface{}{a.cancellationRepo, hub, kitchenEvents, orderEvents}

	// Warm cache after dependencies are started
	cacheLifecycle := aqm.LifecycleHooks{
		OnStart: func(ctx context.Context) error {
			if err := progressCache.Warm(ctx); err != nil {
				a.logger.Info("failed to warm progress cache", "error", err)
			}
			return nil
		},
	}
	lifecycles = append(lifecycles, cacheLifecycle)

	if progressStream != nil {
		streamLifecycle := aqm.LifecycleHooks{
			OnStop: func(context.Context) error { return progressStream.Close() },
		}
		lifecycles = append(lifecycles, streamLifecycle)
	}
	subscriberLifecycle := aqm.LifecycleHooks{
		OnStop: func(context.Context) error {
			kitchenSubscriber.Close()
			orderSubscriber.Close()
			return nil
		},
	}
	lifecycles = append(lifecycles, subscriberLifecycle)

	// Build micro service
	options := []aqm.Option{
		aqm.WithConfig(a.config),
		aqm.WithLogger(a.logger),
		aqm.WithHTTPMiddleware(stack...),
		aqm.WithHTTPServerModules("web.port", handler, hub),
		aqm.WithLifecycle(lifecycles...),
		aqm.WithHealthChecks(AppName),
	}

	a.micro = aqm.NewMicro(options...)
	return nil
}

// Run starts the application
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("Starting %s(%s)", AppName, AppVersion)
	if err := a.micro.Run(ctx); err != nil {
		return err
	}
	a.logger.Infof("%s(%s) stopped", AppName, AppVersion)
	return nil
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	// Lifecycle cleanup is handled by aqm.Micro
	return nil
}
