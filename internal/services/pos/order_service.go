package pos

import (
	"context"
	"strings"
	"time"

	"syntra-pos/internal/apperr"
	"syntra-pos/internal/database/models"
	"syntra-pos/internal/logger"
	"syntra-pos/internal/services/catalog"
	"syntra-pos/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxBranchLength = 16

// PriceResolver is the part of the price catalog orders depend on.
type PriceResolver interface {
	GetPrice(ctx context.Context, id int64) (*models.ProductPrice, error)
	ResolveEffectivePrice(ctx context.Context, productID int64, asOf time.Time) (*models.ProductPrice, error)
}

type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type OrderService struct {
	orders    OrderRepository
	prices    PriceResolver
	tx        TxRunner
	publisher Publisher
	clock     utils.Clock
	opts      Options
	logger    *zap.Logger
}

func NewOrderService(
	orders OrderRepository,
	prices PriceResolver,
	tx TxRunner,
	publisher Publisher,
	clock utils.Clock,
	opts Options,
	log *zap.Logger,
) *OrderService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if clock == nil {
		clock = utils.NewRealClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{
		orders:    orders,
		prices:    prices,
		tx:        tx,
		publisher: publisher,
		clock:     clock,
		opts:      opts,
		logger:    log.Named("orders"),
	}
}

func (s *OrderService) Create(ctx context.Context, req *OrderRequest) (*OrderDTO, error) {
	if req == nil {
		return nil, apperr.Validation(apperr.CodeValidation, "order is required")
	}

	now := s.clock.Now().UTC()
	order := &models.Order{
		Date:      now,
		Voided:    false,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Date != nil {
		order.Date = req.Date.UTC()
	}
	if req.Branch != nil {
		branch, err := normalizeBranch(*req.Branch)
		if err != nil {
			return nil, err
		}
		order.Branch = branch
	}
	if req.Voided != nil {
		order.Voided = *req.Voided
	}

	lines, err := s.prepareLines(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.orders.CreateHeader(ctx, order); err != nil {
			return err
		}
		return s.replaceLines(ctx, order.ID, lines)
	})
	if err != nil {
		return nil, err
	}

	dto, err := s.Get(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.logger).Info("order created",
		zap.Int64("order_id", order.ID),
		zap.String("branch", order.Branch),
		zap.Int("lines", len(lines)),
		zap.String("total", dto.Total.StringFixed(2)),
	)
	s.publish(ctx, EventOrderCreated, order.ID, dto)
	return dto, nil
}

// Update overwrites only the header fields present in req. Lines are replaced
// wholesale when req.Lines is non-nil and kept otherwise.
func (s *OrderService) Update(ctx context.Context, id int64, req *OrderRequest) (*OrderDTO, error) {
	if req == nil {
		return nil, apperr.Validation(apperr.CodeValidation, "order is required")
	}
	if _, err := s.orders.FindHeader(ctx, id); err != nil {
		return nil, err
	}

	var expectedVersion *int64
	if s.opts.ConcurrencyMode == Optimistic {
		if req.Version == nil {
			return nil, apperr.Validation(apperr.CodeVersionRequired, "version is required to update an order")
		}
		expectedVersion = req.Version
	}

	changes := map[string]interface{}{
		"updated_at": s.clock.Now().UTC(),
	}
	if req.Date != nil {
		changes["date"] = req.Date.UTC()
	}
	if req.Branch != nil {
		branch, err := normalizeBranch(*req.Branch)
		if err != nil {
			return nil, err
		}
		changes["branch"] = branch
	}
	if req.Voided != nil {
		changes["voided"] = *req.Voided
	}

	var lines []models.OrderLine
	if req.Lines != nil {
		var err error
		if lines, err = s.prepareLines(ctx, req.Lines); err != nil {
			return nil, err
		}
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		updated, err := s.orders.UpdateHeader(ctx, id, changes, expectedVersion)
		if err != nil {
			return err
		}
		if !updated {
			if _, err := s.orders.FindHeader(ctx, id); err != nil {
				return err
			}
			return apperr.Conflict(apperr.CodeConcurrentModification, "order was modified by another request")
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

	logger.FromContext(ctx, s.logger).Info("order updated",
		zap.Int64("order_id", id),
		zap.Bool("lines_replaced", req.Lines != nil),
		zap.Int64("version", dto.Version),
	)
	s.publish(ctx, EventOrderUpdated, id, dto)
	return dto, nil
}

// replaceLines swaps the full line set of an order for lines.
func (s *OrderService) replaceLines(ctx context.Context, orderID int64, lines []models.OrderLine) error {
	for i := range lines {
		lines[i].OrderID = orderID
	}
	return replaceChildren(ctx,
		func(ctx context.Context) (int64, error) { return s.orders.DeleteLines(ctx, orderID) },
		s.orders.InsertLine,
		lines,
	)
}

func (s *OrderService) Get(ctx context.Context, id int64) (*OrderDTO, error) {
	order, err := s.orders.FindHeader(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, *order, map[int64]*catalog.PriceDTO{})
}

// Void marks the order voided. It reports false only when the order does not
// exist; voiding an already voided order reports true.
func (s *OrderService) Void(ctx context.Context, id int64) (bool, error) {
	voided, err := s.orders.SetVoided(ctx, id, s.clock.Now().UTC())
	if err != nil {
		return false, err
	}
	if !voided {
		return false, nil
	}

	logger.FromContext(ctx, s.logger).Info("order voided", zap.Int64("order_id", id))
	s.publish(ctx, EventOrderVoided, id, nil)
	return true, nil
}

// Delete removes the order lines and then the header in one transaction.
func (s *OrderService) Delete(ctx context.Context, id int64) (bool, error) {
	var existed bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.orders.DeleteLines(ctx, id); err != nil {
			return err
		}
		var err error
		existed, err = s.orders.DeleteHeader(ctx, id)
		return err
	})
	if err != nil {
		return false, err
	}

	if existed {
		logger.FromContext(ctx, s.logger).Info("order deleted", zap.Int64("order_id", id))
		s.publish(ctx, EventOrderDeleted, id, nil)
	}
	return existed, nil
}

// List assembles every matching order in full, one line query per order.
func (s *OrderService) List(ctx context.Context, filter OrderFilter) ([]OrderDTO, error) {
	orders, err := s.orders.ListHeaders(ctx, filter)
	if err != nil {
		return nil, err
	}

	snapshots := map[int64]*catalog.PriceDTO{}
	out := make([]OrderDTO, 0, len(orders))
	for _, order := range orders {
		dto, err := s.assemble(ctx, order, snapshots)
		if err != nil {
			return nil, err
		}
		out = append(out, *dto)
	}
	return out, nil
}

// prepareLines validates and defaults every requested line before anything
// is written.
func (s *OrderService) prepareLines(ctx context.Context, reqs []OrderLineRequest) ([]models.OrderLine, error) {
	lines := make([]models.OrderLine, 0, len(reqs))
	seen := make(map[int64]struct{}, len(reqs))

	for i, req := range reqs {
		if _, dup := seen[req.ProductPriceID]; dup {
			return nil, apperr.Validationf(apperr.CodeDuplicateLine,
				"line %d repeats product price %d", i+1, req.ProductPriceID)
		}
		seen[req.ProductPriceID] = struct{}{}

		price, err := s.prices.GetPrice(ctx, req.ProductPriceID)
		if err != nil {
			if apperr.IsNotFound(err) {
				return nil, apperr.Validationf(apperr.CodeProductPriceNotFound,
					"line %d references unknown product price %d", i+1, req.ProductPriceID)
			}
			return nil, err
		}

		line := models.OrderLine{
			ProductPriceID: req.ProductPriceID,
			Quantity:       1,
			Notes:          req.Notes,
		}
		if req.Quantity != nil {
			if *req.Quantity < 1 {
				return nil, apperr.Validationf(apperr.CodeValidation, "line %d quantity must be at least 1", i+1)
			}
			line.Quantity = *req.Quantity
		}

		if req.UnitPrice != nil {
			if req.UnitPrice.IsNegative() {
				return nil, apperr.Validationf(apperr.CodeValidation, "line %d unit_price must not be negative", i+1)
			}
			line.UnitPrice = req.UnitPrice.Round(2)
		} else {
			unitPrice, err := s.defaultUnitPrice(ctx, price)
			if err != nil {
				return nil, err
			}
			line.UnitPrice = unitPrice
		}

		lines = append(lines, line)
	}
	return lines, nil
}

// defaultUnitPrice is the suggested price in force today for the product the
// referenced price version belongs to.
func (s *OrderService) defaultUnitPrice(ctx context.Context, ref *models.ProductPrice) (decimal.Decimal, error) {
	effective, err := s.prices.ResolveEffectivePrice(ctx, ref.ProductID, s.clock.Now())
	if err == nil {
		return effective.SuggestedPrice.Round(2), nil
	}
	if !apperr.IsNotFound(err) {
		return decimal.Zero, err
	}

	if s.opts.PriceFallback == PriceFallbackFail {
		return decimal.Zero, apperr.Validationf(apperr.CodePriceNotResolvable,
			"no effective price today for product %d", ref.ProductID)
	}
	logger.FromContext(ctx, s.logger).Warn("no effective price, defaulting unit price to zero",
		zap.Int64("product_id", ref.ProductID),
		zap.Int64("product_price_id", ref.ID),
	)
	return decimal.Zero, nil
}

func (s *OrderService) assemble(ctx context.Context, order models.Order, snapshots map[int64]*catalog.PriceDTO) (*OrderDTO, error) {
	lines, err := s.orders.FindLines(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	dto := &OrderDTO{
		ID:        order.ID,
		Date:      order.Date,
		Branch:    order.Branch,
		Voided:    order.Voided,
		Version:   order.Version,
		Lines:     make([]OrderLineDTO, 0, len(lines)),
		Total:     decimal.Zero,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}

	for _, line := range lines {
		snapshot, err := s.priceSnapshot(ctx, line.ProductPriceID, snapshots)
		if err != nil {
			return nil, err
		}
		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt32(line.Quantity)).Round(2)
		dto.Lines = append(dto.Lines, OrderLineDTO{
			ProductPriceID: line.ProductPriceID,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
			LineTotal:      lineTotal,
			Notes:          line.Notes,
			ProductPrice:   snapshot,
		})
		dto.Total = dto.Total.Add(lineTotal)
	}
	return dto, nil
}

// priceSnapshot returns nil for a price version deleted after the line was
// written.
func (s *OrderService) priceSnapshot(ctx context.Context, id int64, cache map[int64]*catalog.PriceDTO) (*catalog.PriceDTO, error) {
	if snapshot, ok := cache[id]; ok {
		return snapshot, nil
	}
	price, err := s.prices.GetPrice(ctx, id)
	if err != nil {
		if apperr.IsNotFound(err) {
			cache[id] = nil
			return nil, nil
		}
		return nil, err
	}
	dto := catalog.ToPriceDTO(*price)
	cache[id] = &dto
	return &dto, nil
}

func (s *OrderService) publish(ctx context.Context, eventType string, orderID int64, payload interface{}) {
	event := Event{
		EventType:   eventType,
		AggregateID: orderID,
		OrderID:     orderID,
		Timestamp:   s.clock.Now().UTC(),
		Payload:     payload,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.FromContext(ctx, s.logger).Warn("failed to publish order event",
			zap.String("event_type", eventType),
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)
	}
}

func normalizeBranch(branch string) (string, error) {
	branch = strings.TrimSpace(branch)
	if len(branch) > maxBranchLength {
		return "", apperr.Validationf(apperr.CodeValidation, "branch must be at most %d characters", maxBranchLength)
	}
	return branch, nil
}
