package pos

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"syntra-pos/internal/database"
	"syntra-pos/internal/database/databasetest"
	"syntra-pos/internal/services/catalog"
	"syntra-pos/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

type posFixture struct {
	db        *gorm.DB
	clock     *utils.MockClock
	publisher *recordingPublisher
	products  *catalog.ProductService
	catalog   *catalog.PriceCatalog
	orders    *OrderService
	payments  *PaymentService
	orderRepo *OrderStore
	payRepo   *PaymentStore
}

func newPOSFixture(t *testing.T, opts Options) *posFixture {
	t.Helper()

	db := databasetest.NewSQLite(t)
	clock := utils.NewMockClock(time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC))
	publisher := &recordingPublisher{}

	productStore := catalog.NewProductStore(db)
	priceCatalog := catalog.NewPriceCatalog(productStore, catalog.NewPriceStore(db), nil)
	orderStore := NewOrderStore(db)
	paymentStore := NewPaymentStore(db)
	tx := database.NewTransactor(db)

	return &posFixture{
		db:        db,
		clock:     clock,
		publisher: publisher,
		products:  catalog.NewProductService(productStore, nil),
		catalog:   priceCatalog,
		orders:    NewOrderService(orderStore, priceCatalog, tx, publisher, clock, opts, nil),
		payments:  NewPaymentService(paymentStore, orderStore, tx, publisher, clock, opts, nil),
		orderRepo: orderStore,
		payRepo:   paymentStore,
	}
}

// price creates a product with a single price version and returns the version id.
func (f *posFixture) price(t *testing.T, name, amount, from string, to *string) int64 {
	t.Helper()
	ctx := context.Background()

	product, err := f.products.CreateProduct(ctx, catalog.ProductRequest{Name: name})
	require.NoError(t, err)

	price, err := f.catalog.CreatePrice(ctx, product.ID, catalog.PriceRequest{
		ValidFrom:      from,
		ValidTo:        to,
		SuggestedPrice: decimal.RequireFromString(amount),
	})
	require.NoError(t, err)
	return price.ID
}

func (f *posFixture) order(t *testing.T, branch string, priceIDs ...int64) *OrderDTO {
	t.Helper()
	req := &OrderRequest{Branch: strPtr(branch), Lines: []OrderLineRequest{}}
	for _, id := range priceIDs {
		req.Lines = append(req.Lines, OrderLineRequest{ProductPriceID: id})
	}
	order, err := f.orders.Create(context.Background(), req)
	require.NoError(t, err)
	return order
}

func (f *posFixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func strPtr(s string) *string { return &s }

func int32Ptr(i int32) *int32 { return &i }

func int64Ptr(i int64) *int64 { return &i }

func boolPtr(b bool) *bool { return &b }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func timePtr(t time.Time) *time.Time { return &t }

var errPublish = errors.New("redis unavailable")

func productReq(name string) catalog.ProductRequest {
	return catalog.ProductRequest{Name: name}
}

// priceReq builds a price request; an empty to leaves the range open.
func priceReq(from, to, amount string) catalog.PriceRequest {
	req := catalog.PriceRequest{ValidFrom: from, SuggestedPrice: decimal.RequireFromString(amount)}
	if to != "" {
		req.ValidTo = &to
	}
	return req
}

// lineKeys flattens lines into comparable strings.
func lineKeys(lines []OrderLineDTO) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, fmt.Sprintf("%d:%d:%s", l.ProductPriceID, l.Quantity, l.UnitPrice.StringFixed(2)))
	}
	return out
}
