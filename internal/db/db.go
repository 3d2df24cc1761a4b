package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/config"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/model"
)

// Init initializes the database connection, runs migrations, and seeds
// the lab partition from configuration.
func Init(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := SeedLabs(db, cfg.Labs); err != nil {
		return nil, err
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate runs schema migrations for all core tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Lab{},
		&model.Reservation{},
		&model.ClassRequest{},
		&model.Cancellation{},
		&model.Session{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

// SeedLabs upserts the configured lab rows, preserving the runtime
// free-use flag on existing rows.
func SeedLabs(db *gorm.DB, labs []config.LabConfig) error {
	if len(labs) == 0 {
		return nil
	}
	rows := make([]model.Lab, 0, len(labs))
	for _, lab := range labs {
		rows = append(rows, model.Lab{ID: lab.ID, Name: lab.Name, FirstPC: lab.FirstPC, LastPC: lab.LastPC})
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "first_pc", "last_pc"}),
	}).Create(&rows).Error; err != nil {
		return fmt.Errorf("seed labs failed: %w", err)
	}
	return nil
}
