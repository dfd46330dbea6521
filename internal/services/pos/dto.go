package pos

import (
	"time"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/services/catalog"

	"github.com/shopspring/decimal"
)

// OrderRequest carries both create and update input. Nil header fields are
// left alone on update. Lines == nil keeps the stored lines, a non-nil slice
// (even empty) replaces them.
type OrderRequest struct {
	Date    *time.Time         `json:"date,omitempty"`
	Branch  *string            `json:"branch,omitempty"`
	Voided  *bool              `json:"voided,omitempty"`
	Version *int64             `json:"version,omitempty"`
	Lines   []OrderLineRequest `json:"lines"`
}

type OrderLineRequest struct {
	ProductPriceID int64            `json:"product_price_id"`
	Quantity       *int32           `json:"quantity,omitempty"`
	UnitPrice      *decimal.Decimal `json:"unit_price,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
}

type OrderLineDTO struct {
	ProductPriceID int64             `json:"product_price_id"`
	Quantity       int32             `json:"quantity"`
	UnitPrice      decimal.Decimal   `json:"unit_price"`
	LineTotal      decimal.Decimal   `json:"line_total"`
	Notes          *string           `json:"notes"`
	ProductPrice   *catalog.PriceDTO `json:"product_price"`
}

type OrderDTO struct {
	ID        int64           `json:"id"`
	Date      time.Time       `json:"date"`
	Branch    string          `json:"branch"`
	Voided    bool            `json:"voided"`
	Version   int64           `json:"version"`
	Lines     []OrderLineDTO  `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OrderSnapshot is the header-only view of an order embedded in payments.
type OrderSnapshot struct {
	ID     int64     `json:"id"`
	Date   time.Time `json:"date"`
	Branch string    `json:"branch"`
	Voided bool      `json:"voided"`
}

type PaymentRequest struct {
	OrderID   *int64               `json:"order_id,omitempty"`
	Date      *time.Time           `json:"date,omitempty"`
	Method    *string              `json:"method,omitempty"`
	Reference *string              `json:"reference,omitempty"`
	Version   *int64               `json:"version,omitempty"`
	Lines     []PaymentLineRequest `json:"lines"`
}

type PaymentLineRequest struct {
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Notes  *string          `json:"notes,omitempty"`
}

type PaymentLineDTO struct {
	ID     int64           `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Notes  *string         `json:"notes"`
}

type PaymentDTO struct {
	ID        int64            `json:"id"`
	OrderID   int64            `json:"order_id"`
	Date      time.Time        `json:"date"`
	Method    string           `json:"method"`
	Reference *string          `json:"reference"`
	Version   int64            `json:"version"`
	Order     *OrderSnapshot   `json:"order"`
	Lines     []PaymentLineDTO `json:"lines"`
	Total     decimal.Decimal  `json:"total"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// OrderFilter honours a single field, in the order Date, Branch, Voided.
type OrderFilter struct {
	Date   *time.Time
	Branch *string
	Voided *bool
}

// PaymentFilter honours a single field, in the order OrderID, Date, Method.
type PaymentFilter struct {
	OrderID *int64
	Date    *time.Time
	Method  *string
}

func toOrderSnapshot(o models.Order) *OrderSnapshot {
	return &OrderSnapshot{ID: o.ID, Date: o.Date, Branch: o.Branch, Voided: o.Voided}
}
