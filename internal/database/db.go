package database

import (
	"errors"
	"fmt"

	"syntra-pos/config"
	"syntra-pos/internal/database/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func NewConnection(cfg config.DBConfig, log gormlogger.Interface) (*gorm.DB, error) {
	dsn := cfg.ConnString()
	if dsn == "" {
		return nil, errors.New("DSN is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: log})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	return db, nil
}

// MigratePOSDB creates or updates every table the POS backend owns or reads.
func MigratePOSDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ProductType{},
		&models.Product{},
		&models.ProductPrice{},
		&models.Order{},
		&models.OrderLine{},
		&models.Payment{},
		&models.PaymentLine{},
	)
}

// Ping checks the pooled connection behind db.
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
