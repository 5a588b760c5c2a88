package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eyecare-clinic/console/pkg/common/kafka"
	"github.com/eyecare-clinic/console/pkg/common/models"
	"github.com/eyecare-clinic/console/pkg/observability/metrics"
)

type capturePublisher struct {
	events []models.Event
	err    error
}

func (c *capturePublisher) PublishEvent(_ context.Context, eventType string, data map[string]interface{}) error {
	c.events = append(c.events, kafka.NewEvent(eventType, Source, data))
	return c.err
}

func TestBusRecorderForwardsEvent(t *testing.T) {
	pub := &capturePublisher{}
	rec := NewBusRecorder(pub)

	if err := rec.Record(context.Background(), models.EventPatientAdded, map[string]interface{}{"id": "abc"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected one event, got %d", len(pub.events))
	}
	e := pub.events[0]
	if e.Type != models.EventPatientAdded || e.Data["id"] != "abc" {
		t.Fatalf("unexpected event: %+v", e)
	}
}

func TestMultiRecorderJoinsErrors(t *testing.T) {
	ok := &capturePublisher{}
	failing := &capturePublisher{err: errors.New("broker down")}
	rec := NewMulti(metrics.New(), NewBusRecorder(ok), NewBusRecorder(failing), NewLogRecorder())

	err := rec.Record(context.Background(), models.EventPatientDeleted, map[string]interface{}{"id": "abc"})
	if err == nil || err.Error() != "broker down" {
		t.Fatalf("expected joined broker error, got %v", err)
	}
	if len(ok.events) != 1 || len(failing.events) != 1 {
		t.Fatal("expected every recorder to be called")
	}
}

func TestRecordConversion(t *testing.T) {
	at := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	in := models.Event{ID: "e1", Type: models.EventSessionLogin, Source: Source, Data: map[string]interface{}{"user": "drlee"}, Timestamp: at}

	out := fromRecord(toRecord(in))
	if out.ID != in.ID || out.Type != in.Type || !out.Timestamp.Equal(at) || out.Data["user"] != "drlee" {
		t.Fatalf("unexpected conversion: %+v", out)
	}
	if toRecord(models.Event{ID: "e2"}).OccurredAt.IsZero() {
		t.Fatal("expected missing timestamp to be filled")
	}
}
