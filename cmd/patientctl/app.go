package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/eyecare-clinic/console/pkg/activity"
	"github.com/eyecare-clinic/console/pkg/common/config"
	"github.com/eyecare-clinic/console/pkg/common/kafka"
	"github.com/eyecare-clinic/console/pkg/kvstore"
	"github.com/eyecare-clinic/console/pkg/patients"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	backend string
	path    string

	kv       kvstore.Store
	producer *kafka.Producer
	store    *patients.Store
}

func (a *app) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.backend != "" {
		cfg.StorageBackend = a.backend
	}
	if a.path != "" {
		cfg.StoragePath = a.path
	}

	a.kv, err = kvstore.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening %s storage: %w", cfg.StorageBackend, err)
	}

	opts := []patients.Option{}
	if cfg.KafkaEnabled() {
		a.producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.ActivityTopic, "patientctl")
		opts = append(opts, patients.WithRecorder(activity.NewBusRecorder(a.producer)))
	}
	a.store = patients.NewStore(a.kv, opts...)
	return nil
}

func (a *app) close() error {
	var errs []error
	if a.producer != nil {
		errs = append(errs, a.producer.Close())
	}
	if a.kv != nil {
		errs = append(errs, a.kv.Close())
	}
	return errors.Join(errs...)
}
