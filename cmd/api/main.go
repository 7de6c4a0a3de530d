package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"example.com/exercisetracker/internal/api"
	"example.com/exercisetracker/internal/auth"
	"example.com/exercisetracker/internal/config"
	"example.com/exercisetracker/internal/domain"
	"example.com/exercisetracker/internal/health"
	"example.com/exercisetracker/internal/logging"
	"example.com/exercisetracker/internal/outbox"
	"example.com/exercisetracker/internal/persistence"
	httptransport "example.com/exercisetracker/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load configuration")
	}
	log := logging.New("exercise-tracker-api", cfg.LogLevel, cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := persistence.Open(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("open store")
	}

	monitor, err := health.NewMonitor(store, cfg.HealthCheckSchedule, cfg.StoreTimeout, log)
	if err != nil {
		log.WithError(err).Fatal("schedule store health check")
	}
	monitor.Start()

	opts := []domain.Option{domain.WithLogger(log)}

	dispatchCtx, cancelDispatch := context.WithCancel(context.Background())
	var (
		dispatcher *outbox.Dispatcher
		producer   *outbox.KafkaProducer
	)
	if cfg.KafkaEnabled() {
		producer = outbox.NewKafkaProducer(cfg.KafkaBrokers)
		dispatcher = outbox.NewDispatcher(producer, outbox.Config{
			Topic:         cfg.ExerciseTopic,
			BatchSize:     cfg.OutboxBatchSize,
			FlushInterval: cfg.OutboxFlushInterval,
			QueueSize:     cfg.OutboxQueueSize,
		}, log)
		go dispatcher.Start(dispatchCtx)
		opts = append(opts, domain.WithPublisher(dispatcher))
		log.WithField("topic", cfg.ExerciseTopic).Info("publishing exercise events to kafka")
	}

	service := domain.NewService(store, store, opts...)
	handler := api.NewHandler(service, api.Options{
		StrictStatusCodes: cfg.StrictStatusCodes,
		RequireScopes:     cfg.AuthEnabled(),
		StoreHealth:       monitor,
		Logger:            log,
	})

	var routeMiddleware []mux.MiddlewareFunc
	if cfg.AuthEnabled() {
		authMiddleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})
		routeMiddleware = append(routeMiddleware, authMiddleware.Wrap)
	}
	router := api.NewRouter(handler, routeMiddleware...)
	chain := api.Recovery(log)(api.RequestLogger(log)(api.CORS(cfg.CORSOrigin)(router)))

	serverCfg := httptransport.DefaultServerConfig(cfg.HTTPAddress())
	server := httptransport.NewServer(serverCfg, chain)
	if err := httptransport.Serve(ctx, server, serverCfg.ShutdownTimeout, log); err != nil {
		log.WithError(err).Error("http server stopped")
	}
	log.Info("shutting down")

	monitor.Stop()

	cancelDispatch()
	if dispatcher != nil {
		dispatcher.Wait()
		if err := producer.Close(); err != nil {
			log.WithError(err).Warn("close kafka producer")
		}
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Close(closeCtx); err != nil {
		log.WithError(err).Error("close store")
		return
	}
	log.Info("store connection closed due to application termination")
}
