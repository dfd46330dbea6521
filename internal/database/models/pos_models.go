package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Date      time.Time `gorm:"not null;index"`
	Branch    string    `gorm:"type:varchar(16);not null;index"`
	Voided    bool      `gorm:"not null;index"`
	Version   int64     `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Order) TableName() string { return "orders" }

// OrderLine is keyed by (order, price version): a price version appears at
// most once per order.
type OrderLine struct {
	OrderID        int64           `gorm:"primaryKey;autoIncrement:false"`
	ProductPriceID int64           `gorm:"primaryKey;autoIncrement:false;index"`
	Quantity       int32           `gorm:"not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notes          *string         `gorm:"type:text"`
	CreatedAt      time.Time
}

func (OrderLine) TableName() string { return "order_lines" }

type Payment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	OrderID   int64     `gorm:"not null;index"`
	Date      time.Time `gorm:"not null;index"`
	Method    string    `gorm:"type:varchar(32);not null;index"`
	Reference *string   `gorm:"type:varchar(128)"`
	Version   int64     `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Payment) TableName() string { return "payments" }

type PaymentLine struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	PaymentID int64           `gorm:"not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notes     *string         `gorm:"type:text"`
	CreatedAt time.Time
}

func (PaymentLine) TableName() string { return "payment_lines" }
