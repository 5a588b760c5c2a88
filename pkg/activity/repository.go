package activity

import (
	"context"
	"time"

	"github.com/eyecare-clinic/console/pkg/common/kafka"
	"github.com/eyecare-clinic/console/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultFeedLimit = 50

type EventRecord struct {
	ID         string            `gorm:"primaryKey;type:varchar(64)"`
	Type       string            `gorm:"type:varchar(64);index"`
	Source     string            `gorm:"type:varchar(64)"`
	Payload    datatypes.JSONMap `gorm:"type:jsonb"`
	OccurredAt time.Time         `gorm:"index"`
	CreatedAt  time.Time
}

func (EventRecord) TableName() string {
	return "console_activity_events"
}

// Repository persists activity events in Postgres and serves the feed.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&EventRecord{})
}

func (r *Repository) Save(ctx context.Context, event models.Event) error {
	record := toRecord(event)
	return r.db.WithContext(ctx).
		Where(EventRecord{ID: record.ID}).
		FirstOrCreate(&record).Error
}

// Record lets the repository act as a Recorder when no bus is configured.
func (r *Repository) Record(ctx context.Context, kind string, data map[string]interface{}) error {
	return r.Save(ctx, kafka.NewEvent(kind, Source, data))
}

func (r *Repository) Recent(ctx context.Context, limit int) ([]models.Event, error) {
	if limit <= 0 || limit > 500 {
		limit = defaultFeedLimit
	}
	var records []EventRecord
	if err := r.db.WithContext(ctx).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(records))
	for _, rec := range records {
		events = append(events, fromRecord(rec))
	}
	return events, nil
}

func toRecord(e models.Event) EventRecord {
	occurred := e.Timestamp
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	return EventRecord{
		ID:         e.ID,
		Type:       e.Type,
		Source:     e.Source,
		Payload:    datatypes.JSONMap(e.Data),
		OccurredAt: occurred,
	}
}

func fromRecord(r EventRecord) models.Event {
	return models.Event{
		ID:        r.ID,
		Type:      r.Type,
		Source:    r.Source,
		Data:      map[string]interface{}(r.Payload),
		Timestamp: r.OccurredAt,
	}
}
