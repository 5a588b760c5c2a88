package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eyecare-clinic/console/pkg/activity"
	"github.com/eyecare-clinic/console/pkg/common/config"
	"github.com/eyecare-clinic/console/pkg/common/database"
	"github.com/eyecare-clinic/console/pkg/common/kafka"
	"github.com/eyecare-clinic/console/pkg/common/logger"
	"github.com/eyecare-clinic/console/pkg/common/models"
	"github.com/eyecare-clinic/console/pkg/observability/metrics"
	"github.com/gorilla/mux"
)

type sink struct {
	repo    *activity.Repository
	metrics *metrics.Collector
}

func main() {
	logger.Init()
	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load configuration")
	}
	if !cfg.KafkaEnabled() {
		logger.Log.Fatal("KAFKA_BROKERS is required")
	}

	db, err := database.OpenPostgres(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to open activity store")
	}
	defer database.ClosePostgres(db)

	repo := activity.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to migrate activity table")
	}

	s := &sink{repo: repo, metrics: metrics.New()}

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.ActivityTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Consume(ctx, s.handle); err != nil && ctx.Err() == nil {
			logger.Log.WithError(err).Fatal("Consumer error")
		}
	}()

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)
	router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.SinkPort),
		Handler: router,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host":  cfg.ServerHost,
			"port":  cfg.SinkPort,
			"topic": cfg.ActivityTopic,
			"group": cfg.KafkaGroupID,
		}).Info("Activity sink started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down activity sink...")
	cancel()
	<-done

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Activity sink stopped")
}

func (s *sink) handle(ctx context.Context, event models.Event) error {
	err := s.repo.Save(ctx, event)
	s.metrics.ObserveActivity(event.Type, err)
	if err != nil {
		return fmt.Errorf("saving event %s: %w", event.ID, err)
	}
	logger.Log.WithFields(map[string]interface{}{
		"event_id":   event.ID,
		"event_type": event.Type,
	}).Debug("Stored activity event")
	return nil
}
