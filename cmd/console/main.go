package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eyecare-clinic/console/pkg/activity"
	"github.com/eyecare-clinic/console/pkg/clinicapi"
	"github.com/eyecare-clinic/console/pkg/common/config"
	"github.com/eyecare-clinic/console/pkg/common/database"
	"github.com/eyecare-clinic/console/pkg/common/kafka"
	"github.com/eyecare-clinic/console/pkg/common/logger"
	"github.com/eyecare-clinic/console/pkg/dashboard"
	"github.com/eyecare-clinic/console/pkg/gateway/routes"
	"github.com/eyecare-clinic/console/pkg/kvstore"
	"github.com/eyecare-clinic/console/pkg/observability/metrics"
	"github.com/eyecare-clinic/console/pkg/patients"
	"github.com/eyecare-clinic/console/pkg/session"
	"github.com/eyecare-clinic/console/pkg/shell"
	"gorm.io/gorm"
)

const readyCheckKey = "console_ready_check"

func main() {
	logger.Init()
	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load configuration")
	}

	ctx := context.Background()
	collector := metrics.New()

	kv, err := kvstore.Open(ctx, cfg)
	if err != nil {
		logger.Log.WithError(err).WithField("backend", cfg.StorageBackend).Fatal("Failed to open local storage")
	}
	defer kv.Close()

	// Activity recorders
	recorders := []activity.Recorder{activity.NewLogRecorder()}
	var producer *kafka.Producer
	if cfg.KafkaEnabled() {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.ActivityTopic, activity.Source)
		defer producer.Close()
		recorders = append(recorders, activity.NewBusRecorder(producer))
	}

	var feed activity.Feed
	var activityDB *gorm.DB
	if cfg.ActivityStore {
		activityDB, err = database.OpenPostgres(cfg)
		if err != nil {
			logger.Log.WithError(err).Warn("Activity store unavailable, running without feed")
		} else {
			defer database.ClosePostgres(activityDB)
			repo := activity.NewRepository(activityDB)
			if err := repo.AutoMigrate(); err != nil {
				logger.Log.WithError(err).Fatal("Failed to migrate activity table")
			}
			feed = repo
			// The sink persists published events; write directly only without a bus.
			if producer == nil {
				recorders = append(recorders, repo)
			}
		}
	}
	recorder := activity.NewMulti(collector, recorders...)

	// Session and clinic API
	sess := session.New(kv)
	client := clinicapi.New(clinicapi.ConfigFrom(cfg), sess, collector)

	store := patients.NewStore(kv,
		patients.WithRecorder(recorder),
		patients.WithMetrics(collector),
	)
	if cfg.SeedFile != "" {
		n, err := store.Seed(ctx, cfg.SeedFile)
		switch {
		case errors.Is(err, patients.ErrEmptySeed):
			logger.Log.WithField("file", cfg.SeedFile).Warn("Seed file has no patients")
		case err != nil:
			logger.Log.WithError(err).WithField("file", cfg.SeedFile).Fatal("Failed to seed patients")
		case n > 0:
			logger.Log.WithField("count", n).Info("Seeded local patient register")
		}
	}

	sh := shell.New(client, sess, recorder)
	if err := sh.Start(ctx); err != nil {
		logger.Log.WithError(err).Warn("Failed to restore stored session")
	}

	router := routes.NewRouter(routes.Deps{
		Shell:    sh,
		Stats:    dashboard.NewStatsController(client, time.Now),
		Calendar: dashboard.NewCalendar(client, time.Now),
		Patients: store,
		Feed:     feed,
		Metrics:  collector,
		Ready: func(ctx context.Context) error {
			if _, _, err := kv.Get(ctx, readyCheckKey); err != nil {
				return fmt.Errorf("local storage: %w", err)
			}
			if activityDB != nil {
				sqlDB, err := activityDB.DB()
				if err != nil {
					return err
				}
				if err := sqlDB.PingContext(ctx); err != nil {
					return fmt.Errorf("activity store: %w", err)
				}
			}
			return nil
		},
		CORSOrigin:     cfg.CORSOrigin,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		MaxRequestBody: cfg.MaxRequestBody,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host":    cfg.ServerHost,
			"port":    cfg.ServerPort,
			"api":     cfg.APIBaseURL,
			"storage": cfg.StorageBackend,
		}).Info("Eye care console started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down console...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Console stopped")
}
