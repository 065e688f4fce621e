package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/appetiteclub/apt"
	aptevents "github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/apt/middleware"

	"github.com/appetiteclub/expedite/internal/board"
	"github.com/appetiteclub/expedite/internal/expedite"
	"github.com/appetiteclub/expedite/internal/orderapi"
	"github.com/appetiteclub/expedite/internal/sound"
	"github.com/appetiteclub/expedite/pkg"
	"github.com/appetiteclub/expedite/pkg/enums/orderstatus"
)

const (
	appNamespace = "EXPEDITE"
	appName      = "expedite"
	appVersion   = "0.1.0"
)

func main() {
	config, err := apt.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("Cannot setup %s(%s): %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := apt.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	kitchenStatuses := []string{
		orderstatus.Statuses.Confirmed.Name,
		orderstatus.Statuses.Preparing.Name,
		orderstatus.Statuses.Ready.Name,
	}
	pickupStatuses := []string{
		orderstatus.Statuses.Ready.Name,
	}

	// Order source and status gateway: demo mode runs against an in-memory
	// order service, otherwise both boards talk to the real one over REST.
	var kitchenSource, pickupSource board.OrderSource
	var gateway board.StatusGateway

	if demoEnabled, _ := config.GetString("demo.enabled"); demoEnabled == "true" {
		logger.Info("demo mode enabled, using in-memory order service")
		demo := orderapi.NewDemoOrderService()
		kitchenSource = demo.Scoped(kitchenStatuses)
		pickupSource = demo.Scoped(pickupStatuses)
		gateway = demo
	} else {
		orderURL, _ := config.GetString("services.order.url")
		if orderURL == "" {
			log.Fatalf("services.order.url is required outside demo mode")
		}
		orderClient := apt.NewServiceClient(orderURL)
		kitchenDA := orderapi.NewOrderDataAccess(orderClient, kitchenStatuses, logger)
		pickupDA := orderapi.NewOrderDataAccess(orderClient, pickupStatuses, logger)
		kitchenSource = kitchenDA
		pickupSource = pickupDA
		gateway = kitchenDA
	}

	// Cue and transition events go out over NATS when configured; without
	// it the boards run silent.
	var player board.CuePlayer = sound.NoopPlayer{}
	var publisher aptevents.Publisher
	var natsPublisher *pkg.NATSPublisher

	natsURL, _ := config.GetString("nats.url")
	if natsURL != "" {
		natsPublisher, err = pkg.NewNATSPublisher(natsURL)
		if err != nil {
			log.Fatalf("Cannot connect to NATS publisher: %v", err)
		}
		player = sound.NewNATSCuePlayer(natsPublisher, logger)
		publisher = natsPublisher
	} else {
		logger.Info("nats.url not set, audio cues disabled")
	}

	thresholds := loadThresholds(config, logger)

	kitchenEngine := board.NewEngine(board.Config{
		Name:         "kitchen",
		PollInterval: configDuration(config, "board.kitchen.poll_interval", logger),
		Statuses:     kitchenStatuses,
		AlertWorthy:  configStatuses(config, "board.kitchen.alert_worthy", []string{orderstatus.Statuses.Confirmed.Name}),
		Reference:    board.ReferenceCreated,
		Thresholds:   thresholds,
	}, kitchenSource, gateway, player, publisher, logger)

	pickupEngine := board.NewEngine(board.Config{
		Name:         "pickup",
		PollInterval: configDuration(config, "board.pickup.poll_interval", logger),
		Statuses:     pickupStatuses,
		AlertWorthy:  configStatuses(config, "board.pickup.alert_worthy", nil),
		Reference:    board.ReferenceUpdated,
		Thresholds:   thresholds,
	}, pickupSource, gateway, player, publisher, logger)

	handler := expedite.NewHandler(map[string]*board.Engine{
		"kitchen": kitchenEngine,
		"pickup":  pickupEngine,
	}, config, logger)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      logger,
		DisableCORS: false,
	})

	lifecycles := []interface{}{kitchenEngine, pickupEngine}
	if natsPublisher != nil {
		lifecycles = append(lifecycles, apt.LifecycleHooks{
			OnStop: func(context.Context) error { return natsPublisher.Close() },
		})
	}

	options := []apt.Option{
		apt.WithConfig(config),
		apt.WithLogger(logger),
		apt.WithHTTPMiddleware(stack...),
		apt.WithHTTPServerModules("web.port", handler),
		apt.WithLifecycle(lifecycles...),
		apt.WithHealthChecks(appName),
	}

	ms := apt.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	if err := ms.Run(ctx); err != nil {
		log.Fatalf("%s(%s) stopped with error: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}

func configDuration(config *apt.Config, key string, logger apt.Logger) time.Duration {
	raw, _ := config.GetString(key)
	if raw == "" {
		return 0 // engine default
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		logger.Info("invalid duration value", "key", key, "value", raw, "error", err)
		return 0
	}
	return parsed
}

func configStatuses(config *apt.Config, key string, fallback []string) []string {
	raw, _ := config.GetString(key)
	if raw == "" {
		return fallback
	}
	parts := strings.Split(raw, ",")
	statuses := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if orderstatus.ByName(name) == nil {
			continue
		}
		statuses = append(statuses, name)
	}
	return statuses
}

func loadThresholds(config *apt.Config, logger apt.Logger) board.Thresholds {
	thresholds := board.DefaultThresholds()
	assign := map[string]*int{
		"urgency.waiting_after":  &thresholds.Waiting,
		"urgency.urgent_after":   &thresholds.Urgent,
		"urgency.critical_after": &thresholds.Critical,
		"urgency.overdue_after":  &thresholds.Overdue,
	}
	for key, target := range assign {
		raw, _ := config.GetString(key)
		if raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			logger.Info("invalid urgency threshold", "key", key, "value", raw, "error", err)
			continue
		}
		*target = int(parsed / time.Minute)
	}
	return thresholds
}
