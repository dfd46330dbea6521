package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ProductType struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	Name        string  `gorm:"type:varchar(100);not null"`
	Description *string `gorm:"type:varchar(255)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ProductType) TableName() string { return "product_types" }

type Product struct {
	ID            int64   `gorm:"primaryKey;autoIncrement"`
	Name          string  `gorm:"type:varchar(128);not null"`
	ProductTypeID *int64  `gorm:"index"`
	Active        bool    `gorm:"not null"`
	Notes         *string `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Product) TableName() string { return "products" }

// ProductPrice is one version of a product's price. Both bounds are
// inclusive calendar dates; a nil ValidTo leaves the range open.
type ProductPrice struct {
	ID             int64          `gorm:"primaryKey;autoIncrement"`
	ProductID      int64          `gorm:"not null;index:idx_product_prices_lookup,priority:1"`
	ValidFrom      datatypes.Date `gorm:"not null;index:idx_product_prices_lookup,priority:2"`
	ValidTo        *datatypes.Date
	SuggestedPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt      time.Time
}

func (ProductPrice) TableName() string { return "product_prices" }
