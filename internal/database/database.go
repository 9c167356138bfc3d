package database

import (
	"context"
	"fmt"

	"github.com/truenumber/gameservice/internal/config"
	"github.com/truenumber/gameservice/internal/model"
	"github.com/truenumber/gameservice/pkg/sqldb"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func NewConnection(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := sqldb.NewConnection(context.Background(), cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		logger.Error("Schema migration failed", zap.Error(err))
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
