// Package activity records what the operator did in the console: patient
// edits and session changes. Recording is best effort; callers log a failed
// Record and carry on.
package activity

import (
	"context"
	"errors"

	"github.com/eyecare-clinic/console/pkg/common/logger"
	"github.com/eyecare-clinic/console/pkg/common/models"
	"github.com/eyecare-clinic/console/pkg/observability/metrics"
)

// Source is stamped on every event the console emits.
const Source = "eyecare-console"

var ErrFeedDisabled = errors.New("activity feed disabled")

type Recorder interface {
	Record(ctx context.Context, kind string, data map[string]interface{}) error
}

// Feed serves recently recorded events, newest first.
type Feed interface {
	Recent(ctx context.Context, limit int) ([]models.Event, error)
}

// Publisher is the part of kafka.Producer the recorder needs. The publisher
// stamps id, source and time.
type Publisher interface {
	PublishEvent(ctx context.Context, eventType string, data map[string]interface{}) error
}

type busRecorder struct {
	publisher Publisher
}

// NewBusRecorder publishes every event to the activity topic.
func NewBusRecorder(p Publisher) Recorder {
	return &busRecorder{publisher: p}
}

func (r *busRecorder) Record(ctx context.Context, kind string, data map[string]interface{}) error {
	return r.publisher.PublishEvent(ctx, kind, data)
}

type logRecorder struct{}

// NewLogRecorder writes events to the process log only.
func NewLogRecorder() Recorder {
	return logRecorder{}
}

func (logRecorder) Record(_ context.Context, kind string, data map[string]interface{}) error {
	logger.Log.WithField("event_type", kind).WithFields(data).Info("Console activity")
	return nil
}

type multiRecorder struct {
	recorders []Recorder
	metrics   *metrics.Collector
}

// NewMulti fans an event out to every recorder. It returns the joined errors
// of the recorders that failed.
func NewMulti(collector *metrics.Collector, recorders ...Recorder) Recorder {
	return &multiRecorder{recorders: recorders, metrics: collector}
}

func (m *multiRecorder) Record(ctx context.Context, kind string, data map[string]interface{}) error {
	var errs []error
	for _, r := range m.recorders {
		if err := r.Record(ctx, kind, data); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)
	m.metrics.ObserveActivity(kind, err)
	return err
}
