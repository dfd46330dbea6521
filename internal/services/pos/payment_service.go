package pos

import (
	"context"
	"strings"

	"syntra-pos/internal/apperr"
	"syntra-pos/internal/database/models"
	"syntra-pos/internal/logger"
	"syntra-pos/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	MethodCash     = "CASH"
	MethodCard     = "CARD"
	MethodTransfer = "TRANSFER"
	MethodVoucher  = "VOUCHER"
	MethodOther    = "OTHER"
)

var knownMethods = map[string]struct{}{
	MethodCash:     {},
	MethodCard:     {},
	MethodTransfer: {},
	MethodVoucher:  {},
	MethodOther:    {},
}

// NormalizeMethod trims and upper-cases a payment method, falling back to
// CASH when empty. Unknown tags are kept as given.
func NormalizeMethod(method string) string {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return MethodCash
	}
	return method
}

func IsKnownMethod(method string) bool {
	_, ok := knownMethods[NormalizeMethod(method)]
	return ok
}

// OrderLookup is the part of the order store payments need.
type OrderLookup interface {
	FindHeader(ctx context.Context, id int64) (*models.Order, error)
}

type PaymentService struct {
	payments  PaymentRepository
	orders    OrderLookup
	tx        TxRunner
	publisher Publisher
	clock     utils.Clock
	opts      Options
	logger    *zap.Logger
}

func NewPaymentService(
	payments PaymentRepository,
	orders OrderLookup,
	tx TxRunner,
	publisher Publisher,
	clock utils.Clock,
	opts Options,
	log *zap.Logger,
) *PaymentService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if clock == nil {
		clock = utils.NewRealClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentService{
		payments:  payments,
		orders:    orders,
		tx:        tx,
		publisher: publisher,
		clock:     clock,
		opts:      opts,
		logger:    log.Named("payments"),
	}
}

func (s *PaymentService) Create(ctx context.Context, req *PaymentRequest) (*PaymentDTO, error) {
	if req == nil {
		return nil, apperr.Validation(apperr.CodeValidation, "payment is required")
	}
	if req.OrderID == nil {
		return nil, apperr.Validation(apperr.CodeOrderNotFound, "order_id is required")
	}
	if err := s.requireOrder(ctx, *req.OrderID); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	payment := &models.Payment{
		OrderID:   *req.OrderID,
		Date:      now,
		Method:    MethodCash,
		Reference: req.Reference,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Date != nil {
		payment.Date = req.Date.UTC()
	}
	if req.Method != nil {
		payment.Method = NormalizeMethod(*req.Method)
	}

	lines, err := preparePaymentLines(req.Lines)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.payments.CreateHeader(ctx, payment); err != nil {
			return err
		}
		return s.replaceLines(ctx, payment.ID, lines)
	})
	if err != nil {
		return nil, err
	}

	dto, err := s.Get(ctx, payment.ID)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx, s.logger)
	if !IsKnownMethod(payment.Method) {
		log.Warn("payment recorded with unrecognised method", zap.String("method", payment.Method))
	}
	log.Info("payment created",
		zap.Int64("payment_id", payment.ID),
		zap.Int64("order_id", payment.OrderID),
		zap.String("method", payment.Method),
		zap.String("total", dto.Total.StringFixed(2)),
	)
	s.publish(ctx, EventPaymentCreated, payment.ID, payment.OrderID, dto)
	return dto, nil
}

// Update overwrites only the header fields present in req. A changed order
// reference is checked before anything is written.
func (s *PaymentService) Update(ctx context.Context, id int64, req *PaymentRequest) (*PaymentDTO, error) {
	if req == nil {
		return nil, apperr.Validation(apperr.CodeValidation, "payment is required")
	}
	current, err := s.payments.FindHeader(ctx, id)
	if err != nil {
		return nil, err
	}

	var expectedVersion *int64
	if s.opts.ConcurrencyMode == Optimistic {
		if req.Version == nil {
			return nil, apperr.Validation(apperr.CodeVersionRequired, "version is required to update a payment")
		}
		expectedVersion = req.Version
	}

	changes := map[string]interface{}{
		"updated_at": s.clock.Now().UTC(),
	}
	if req.OrderID != nil && *req.OrderID != current.OrderID {
		if err := s.requireOrder(ctx, *req.OrderID); err != nil {
			return nil, err
		}
		changes["order_id"] = *req.OrderID
	}
	if req.Date != nil {
		changes["date"] = req.Date.UTC()
	}
	if req.Method != nil {
		changes["method"] = NormalizeMethod(*req.Method)
	}
	if req.Reference != nil {
		changes["reference"] = *req.Reference
	}

	var lines []models.PaymentLine
	if req.Lines != nil {
		if lines, err = preparePaymentLines(req.Lines); err != nil {
			return nil, err
		}
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		updated, err := s.payments.UpdateHeader(ctx, id, changes, expectedVersion)
		if err != nil {
			return err
		}
		if !updated {
			if _, err := s.payments.FindHeader(ctx, id); err != nil {
				return err
			}
			return apperr.Conflict(apperr.CodeConcurrentModification, "payment was modified by another request")
		}
		if req.Lines == nil {
			return nil
		}
		return s.replaceLines(ctx, id, lines)
	})
	if err != nil {
		return nil, err
	}

	dto, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.logger).Info("payment updated",
		zap.Int64("payment_id", id),
		zap.Bool("lines_replaced", req.Lines != nil),
		zap.Int64("version", dto.Version),
	)
	s.publish(ctx, EventPaymentUpdated, id, dto.OrderID, dto)
	return dto, nil
}

func (s *PaymentService) replaceLines(ctx context.Context, paymentID int64, lines []models.PaymentLine) error {
	for i := range lines {
		lines[i].PaymentID = paymentID
	}
	return replaceChildren(ctx,
		func(ctx context.Context) (int64, error) { return s.payments.DeleteLines(ctx, paymentID) },
		s.payments.InsertLine,
		lines,
	)
}

func (s *PaymentService) Get(ctx context.Context, id int64) (*PaymentDTO, error) {
	payment, err := s.payments.FindHeader(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, *payment)
}

func (s *PaymentService) Delete(ctx context.Context, id int64) (bool, error) {
	var (
		existed bool
		orderID int64
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		payment, err := s.payments.FindHeader(ctx, id)
		if err != nil {
			if apperr.IsNotFound(err) {
				return nil
			}
			return err
		}
		orderID = payment.OrderID

		if _, err := s.payments.DeleteLines(ctx, id); err != nil {
			return err
		}
		existed, err = s.payments.DeleteHeader(ctx, id)
		return err
	})
	if err != nil {
		return false, err
	}

	if existed {
		logger.FromContext(ctx, s.logger).Info("payment deleted", zap.Int64("payment_id", id))
		s.publish(ctx, EventPaymentDeleted, id, orderID, nil)
	}
	return existed, nil
}

func (s *PaymentService) List(ctx context.Context, filter PaymentFilter) ([]PaymentDTO, error) {
	payments, err := s.payments.ListHeaders(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]PaymentDTO, 0, len(payments))
	for _, payment := range payments {
		dto, err := s.assemble(ctx, payment)
		if err != nil {
			return nil, err
		}
		out = append(out, *dto)
	}
	return out, nil
}

func (s *PaymentService) requireOrder(ctx context.Context, orderID int64) error {
	if _, err := s.orders.FindHeader(ctx, orderID); err != nil {
		if apperr.IsNotFound(err) {
			return apperr.Validationf(apperr.CodeOrderNotFound, "order %d does not exist", orderID)
		}
		return err
	}
	return nil
}

func preparePaymentLines(reqs []PaymentLineRequest) ([]models.PaymentLine, error) {
	lines := make([]models.PaymentLine, 0, len(reqs))
	for i, req := range reqs {
		line := models.PaymentLine{Amount: decimal.Zero, Notes: req.Notes}
		if req.Amount != nil {
			if req.Amount.IsNegative() {
				return nil, apperr.Validationf(apperr.CodeValidation, "line %d amount must not be negative", i+1)
			}
			line.Amount = req.Amount.Round(2)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// assemble embeds a header snapshot of the settled order; a payment whose
// order has since been deleted carries a nil snapshot.
func (s *PaymentService) assemble(ctx context.Context, payment models.Payment) (*PaymentDTO, error) {
	lines, err := s.payments.FindLines(ctx, payment.ID)
	if err != nil {
		return nil, err
	}

	dto := &PaymentDTO{
		ID:        payment.ID,
		OrderID:   payment.OrderID,
		Date:      payment.Date,
		Method:    payment.Method,
		Reference: payment.Reference,
		Version:   payment.Version,
		Lines:     make([]PaymentLineDTO, 0, len(lines)),
		Total:     decimal.Zero,
		CreatedAt: payment.CreatedAt,
		UpdatedAt: payment.UpdatedAt,
	}

	order, err := s.orders.FindHeader(ctx, payment.OrderID)
	switch {
	case err == nil:
		dto.Order = toOrderSnapshot(*order)
	case !apperr.IsNotFound(err):
		return nil, err
	}

	for _, line := range lines {
		dto.Lines = append(dto.Lines, PaymentLineDTO{ID: line.ID, Amount: line.Amount, Notes: line.Notes})
		dto.Total = dto.Total.Add(line.Amount)
	}
	return dto, nil
}

func (s *PaymentService) publish(ctx context.Context, eventType string, paymentID, orderID int64, payload interface{}) {
	event := Event{
		EventType:   eventType,
		AggregateID: paymentID,
		OrderID:     orderID,
		Timestamp:   s.clock.Now().UTC(),
		Payload:     payload,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.FromContext(ctx, s.logger).Warn("failed to publish payment event",
			zap.String("event_type", eventType),
			zap.Int64("payment_id", paymentID),
			zap.Error(err),
		)
	}
}
