package database

import (
	"github.com/eyecare-clinic/console/pkg/common/config"
	"github.com/eyecare-clinic/console/pkg/common/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OpenPostgres connects to the console database. Callers own the returned handle
// and release it with ClosePostgres.
func OpenPostgres(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{})
	if err != nil {
		logger.Log.WithError(err).Error("Failed to connect to PostgreSQL")
		return nil, err
	}

	logger.Log.WithField("database", cfg.PostgresDB).Info("Connected to PostgreSQL")
	return db, nil
}

func ClosePostgres(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
