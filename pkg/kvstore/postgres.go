package kvstore

import (
	"context"
	"errors"
	"time"

	"github.com/eyecare-clinic/console/pkg/common/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Entry struct {
	Key       string    `gorm:"primaryKey;column:key"`
	Value     string    `gorm:"column:value;type:text"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Entry) TableName() string {
	return "console_storage"
}

type Postgres struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) AutoMigrate() error {
	return p.db.AutoMigrate(&Entry{})
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	var entry Entry
	err := p.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (p *Postgres) Remove(ctx context.Context, key string) error {
	return p.db.WithContext(ctx).Delete(&Entry{}, "key = ?", key).Error
}

func (p *Postgres) Close() error {
	return database.ClosePostgres(p.db)
}
