package pos

import (
	"context"
	"errors"
	"strings"
	"time"

	"syntra-pos/internal/apperr"
	"syntra-pos/internal/database"
	"syntra-pos/internal/database/models"

	"gorm.io/gorm"
)

type OrderRepository interface {
	CreateHeader(ctx context.Context, order *models.Order) error
	FindHeader(ctx context.Context, id int64) (*models.Order, error)
	UpdateHeader(ctx context.Context, id int64, changes map[string]interface{}, expectedVersion *int64) (bool, error)
	SetVoided(ctx context.Context, id int64, at time.Time) (bool, error)
	DeleteHeader(ctx context.Context, id int64) (bool, error)
	InsertLine(ctx context.Context, line *models.OrderLine) error
	DeleteLines(ctx context.Context, orderID int64) (int64, error)
	FindLines(ctx context.Context, orderID int64) ([]models.OrderLine, error)
	CountLines(ctx context.Context, orderID int64) (int64, error)
	ListHeaders(ctx context.Context, filter OrderFilter) ([]models.Order, error)
}

// OrderStore persists order headers and their lines. Calls join the ambient
// transaction carried by ctx, if any.
type OrderStore struct {
	db *gorm.DB
}

func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

func (s *OrderStore) CreateHeader(ctx context.Context, order *models.Order) error {
	if err := database.Conn(ctx, s.db).Create(order).Error; err != nil {
		return apperr.Internal(err, "failed to create order")
	}
	return nil
}

func (s *OrderStore) FindHeader(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := database.Conn(ctx, s.db).Where("id = ?", id).Take(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.CodeOrderNotFound, "order not found")
		}
		return nil, apperr.Internal(err, "failed to load order")
	}
	return &order, nil
}

// UpdateHeader applies changes and bumps the version. With expectedVersion
// set the write only lands if the stored version still matches; false means
// no row was updated.
func (s *OrderStore) UpdateHeader(ctx context.Context, id int64, changes map[string]interface{}, expectedVersion *int64) (bool, error) {
	values := make(map[string]interface{}, len(changes)+1)
	for k, v := range changes {
		values[k] = v
	}
	values["version"] = gorm.Expr("version + ?", 1)

	query := database.Conn(ctx, s.db).Model(&models.Order{}).Where("id = ?", id)
	if expectedVersion != nil {
		query = query.Where("version = ?", *expectedVersion)
	}

	result := query.Updates(values)
	if result.Error != nil {
		return false, apperr.Internal(result.Error, "failed to update order")
	}
	return result.RowsAffected > 0, nil
}

func (s *OrderStore) SetVoided(ctx context.Context, id int64, at time.Time) (bool, error) {
	return s.UpdateHeader(ctx, id, map[string]interface{}{
		"voided":     true,
		"updated_at": at,
	}, nil)
}

func (s *OrderStore) DeleteHeader(ctx context.Context, id int64) (bool, error) {
	result := database.Conn(ctx, s.db).Where("id = ?", id).Delete(&models.Order{})
	if result.Error != nil {
		return false, apperr.Internal(result.Error, "failed to delete order")
	}
	return result.RowsAffected > 0, nil
}

func (s *OrderStore) InsertLine(ctx context.Context, line *models.OrderLine) error {
	if err := database.Conn(ctx, s.db).Create(line).Error; err != nil {
		return apperr.Internal(err, "failed to create order line")
	}
	return nil
}

func (s *OrderStore) DeleteLines(ctx context.Context, orderID int64) (int64, error) {
	result := database.Conn(ctx, s.db).Where("order_id = ?", orderID).Delete(&models.OrderLine{})
	if result.Error != nil {
		return 0, apperr.Internal(result.Error, "failed to delete order lines")
	}
	return result.RowsAffected, nil
}

func (s *OrderStore) FindLines(ctx context.Context, orderID int64) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	if err := database.Conn(ctx, s.db).
		Where("order_id = ?", orderID).
		Order("product_price_id ASC").
		Find(&lines).Error; err != nil {
		return nil, apperr.Internal(err, "failed to load order lines")
	}
	return lines, nil
}

func (s *OrderStore) CountLines(ctx context.Context, orderID int64) (int64, error) {
	var count int64
	if err := database.Conn(ctx, s.db).
		Model(&models.OrderLine{}).
		Where("order_id = ?", orderID).
		Count(&count).Error; err != nil {
		return 0, apperr.Internal(err, "failed to count order lines")
	}
	return count, nil
}

// ListHeaders applies at most one filter field: Date, then Branch, then
// Voided. Date matches the whole UTC calendar day.
func (s *OrderStore) ListHeaders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := database.Conn(ctx, s.db).Model(&models.Order{})

	switch {
	case filter.Date != nil:
		start, end := dayBounds(*filter.Date)
		query = query.Where("date >= ? AND date < ?", start, end)
	case filter.Branch != nil:
		query = query.Where("branch = ?", strings.TrimSpace(*filter.Branch))
	case filter.Voided != nil:
		query = query.Where("voided = ?", *filter.Voided)
	}

	var orders []models.Order
	if err := query.Order("id ASC").Find(&orders).Error; err != nil {
		return nil, apperr.Internal(err, "failed to list orders")
	}
	return orders, nil
}

func dayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.UTC().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
