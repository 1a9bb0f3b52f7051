package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aliasrafbd/hostel-management-server/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgres connects with retry and exponential backoff, capped at 10s.
func NewPostgres(cfg *Config) (*gorm.DB, error) {
	level := logger.Info
	if cfg.IsProduction() {
		level = logger.Warn
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 1; i <= 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger: logger.Default.LogMode(level),
		})
		if err == nil {
			sqlDB, dbErr := db.DB()
			if dbErr == nil {
				if err = sqlDB.Ping(); err == nil {
					slog.Info("database connected", "attempt", i)
					return db, nil
				}
			} else {
				err = dbErr
			}
		}

		slog.Warn("database connection attempt failed", "attempt", i, "err", err)
		wait := time.Duration(1<<uint(i-1)) * time.Second
		if wait > 10*time.Second {
			wait = 10 * time.Second
		}
		time.Sleep(wait)
	}

	return nil, fmt.Errorf("failed to connect to database after 10 attempts: %w", err)
}

// AutoMigrate creates or updates every table plus the postgres text indexes.
func AutoMigrate(db *gorm.DB) error {
	slog.Info("running database migrations")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Meal{},
		&models.MealLike{},
		&models.Review{},
		&models.UpcomingMeal{},
		&models.UpcomingMealLike{},
		&models.RequestedMeal{},
		&models.ServedMeal{},
		&models.Payment{},
		&models.ActivityLog{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}
	for _, table := range []string{"meals", "upcoming_meals"} {
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_search ON %s USING GIN (%s)",
			table, table, models.SearchVector)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create text index on %s: %w", table, err)
		}
	}
	return nil
}
