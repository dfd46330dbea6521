package pos

import (
	"context"
	"errors"

	"syntra-pos/internal/apperr"
	"syntra-pos/internal/database"
	"syntra-pos/internal/database/models"

	"gorm.io/gorm"
)

type PaymentRepository interface {
	CreateHeader(ctx context.Context, payment *models.Payment) error
	FindHeader(ctx context.Context, id int64) (*models.Payment, error)
	UpdateHeader(ctx context.Context, id int64, changes map[string]interface{}, expectedVersion *int64) (bool, error)
	DeleteHeader(ctx context.Context, id int64) (bool, error)
	InsertLine(ctx context.Context, line *models.PaymentLine) error
	DeleteLines(ctx context.Context, paymentID int64) (int64, error)
	FindLines(ctx context.Context, paymentID int64) ([]models.PaymentLine, error)
	CountLines(ctx context.Context, paymentID int64) (int64, error)
	ListHeaders(ctx context.Context, filter PaymentFilter) ([]models.Payment, error)
}

type PaymentStore struct {
	db *gorm.DB
}

func NewPaymentStore(db *gorm.DB) *PaymentStore {
	return &PaymentStore{db: db}
}

func (s *PaymentStore) CreateHeader(ctx context.Context, payment *models.Payment) error {
	if err := database.Conn(ctx, s.db).Create(payment).Error; err != nil {
		return apperr.Internal(err, "failed to create payment")
	}
	return nil
}

func (s *PaymentStore) FindHeader(ctx context.Context, id int64) (*models.Payment, error) {
	var payment models.Payment
	if err := database.Conn(ctx, s.db).Where("id = ?", id).Take(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.CodePaymentNotFound, "payment not found")
		}
		return nil, apperr.Internal(err, "failed to load payment")
	}
	return &payment, nil
}

func (s *PaymentStore) UpdateHeader(ctx context.Context, id int64, changes map[string]interface{}, expectedVersion *int64) (bool, error) {
	values := make(map[string]interface{}, len(changes)+1)
	for k, v := range changes {
		values[k] = v
	}
	values["version"] = gorm.Expr("version + ?", 1)

	query := database.Conn(ctx, s.db).Model(&models.Payment{}).Where("id = ?", id)
	if expectedVersion != nil {
		query = query.Where("version = ?", *expectedVersion)
	}

	result := query.Updates(values)
	if result.Error != nil {
		return false, apperr.Internal(result.Error, "failed to update payment")
	}
	return result.RowsAffected > 0, nil
}

func (s *PaymentStore) DeleteHeader(ctx context.Context, id int64) (bool, error) {
	result := database.Conn(ctx, s.db).Where("id = ?", id).Delete(&models.Payment{})
	if result.Error != nil {
		return false, apperr.Internal(result.Error, "failed to delete payment")
	}
	return result.RowsAffected > 0, nil
}

func (s *PaymentStore) InsertLine(ctx context.Context, line *models.PaymentLine) error {
	if err := database.Conn(ctx, s.db).Create(line).Error; err != nil {
		return apperr.Internal(err, "failed to create payment line")
	}
	return nil
}

func (s *PaymentStore) DeleteLines(ctx context.Context, paymentID int64) (int64, error) {
	result := database.Conn(ctx, s.db).Where("payment_id = ?", paymentID).Delete(&models.PaymentLine{})
	if result.Error != nil {
		return 0, apperr.Internal(result.Error, "failed to delete payment lines")
	}
	return result.RowsAffected, nil
}

func (s *PaymentStore) FindLines(ctx context.Context, paymentID int64) ([]models.PaymentLine, error) {
	var lines []models.PaymentLine
	if err := database.Conn(ctx, s.db).
		Where("payment_id = ?", paymentID).
		Order("id ASC").
		Find(&lines).Error; err != nil {
		return nil, apperr.Internal(err, "failed to load payment lines")
	}
	return lines, nil
}

func (s *PaymentStore) CountLines(ctx context.Context, paymentID int64) (int64, error) {
	var count int64
	if err := database.Conn(ctx, s.db).
		Model(&models.PaymentLine{}).
		Where("payment_id = ?", paymentID).
		Count(&count).Error; err != nil {
		return 0, apperr.Internal(err, "failed to count payment lines")
	}
	return count, nil
}

// ListHeaders applies at most one filter field: OrderID, then Date, then Method.
func (s *PaymentStore) ListHeaders(ctx context.Context, filter PaymentFilter) ([]models.Payment, error) {
	query := database.Conn(ctx, s.db).Model(&models.Payment{})

	switch {
	case filter.OrderID != nil:
		query = query.Where("order_id = ?", *filter.OrderID)
	case filter.Date != nil:
		start, end := dayBounds(*filter.Date)
		query = query.Where("date >= ? AND date < ?", start, end)
	case filter.Method != nil:
		query = query.Where("method = ?", NormalizeMethod(*filter.Method))
	}

	var payments []models.Payment
	if err := query.Order("id ASC").Find(&payments).Error; err != nil {
		return nil, apperr.Internal(err, "failed to list payments")
	}
	return payments, nil
}
