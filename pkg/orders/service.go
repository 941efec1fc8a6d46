// Package orders creates payment-gateway orders for donation amounts.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"react2give/pkg/models"
	"react2give/pkg/utils"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrGateway             = errors.New("failed to create order")
	ErrIdempotencyConflict = errors.New("idempotency key reuse with different amount")
)

var hundred = decimal.NewFromInt(100)

type Gateway interface {
	CreateOrder(ctx context.Context, params models.CreateOrderParams) (*models.OrderRecord, error)
}

// Store remembers which gateway order an idempotency key produced.
type Store interface {
	Find(ctx context.Context, key string) (*models.PaymentOrder, *models.OrderRecord, error)
	Save(ctx context.Context, key string, order *models.OrderRecord) error
}

type Config struct {
	Currency string
	Receipt  string
	Timeout  time.Duration
}

type Service struct {
	gateway Gateway
	store   Store
	cfg     Config
}

func NewService(gateway Gateway, store Store, cfg Config) *Service {
	return &Service{gateway: gateway, store: store, cfg: cfg}
}

// MinorUnits converts a major-unit amount into the gateway's minor unit.
func MinorUnits(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, ErrInvalidAmount
	}
	minor := amount.Mul(hundred)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("%w: more than two decimal places", ErrInvalidAmount)
	}
	return minor.IntPart(), nil
}

func (s *Service) CreateOrder(ctx context.Context, amount decimal.Decimal, idempotencyKey, correlationID string) (*models.OrderRecord, error) {
	logPrefix := utils.LogPrefix(correlationID)
	minor, err := MinorUnits(amount)
	if err != nil {
		return nil, err
	}

	if s.store != nil && idempotencyKey != "" {
		stored, record, err := s.store.Find(ctx, idempotencyKey)
		switch {
		case err != nil:
			slog.Error(logPrefix+"Idempotency lookup failed, creating a new order", "key", idempotencyKey, "error", err)
		case stored != nil && stored.Amount != minor:
			return nil, ErrIdempotencyConflict
		case record != nil:
			slog.Info(logPrefix+"Duplicate request detected, returning existing order", "key", idempotencyKey, "order_id", record.ID)
			return record, nil
		}
	}

	params := models.CreateOrderParams{
		Amount:   minor,
		Currency: s.cfg.Currency,
		Receipt:  s.cfg.Receipt,
	}
	if idempotencyKey != "" {
		params.Notes = map[string]string{"idempotency_key": idempotencyKey}
	}

	callCtx := ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	order, err := s.gateway.CreateOrder(callCtx, params)
	if err != nil {
		slog.Error(logPrefix+"Error creating order", "amount", minor, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	slog.Info(logPrefix+"Order created", "order_id", order.ID, "amount", order.Amount, "currency", order.Currency)

	if s.store != nil && idempotencyKey != "" {
		if err := s.store.Save(ctx, idempotencyKey, order); err != nil {
			slog.Error(logPrefix+"Failed to store order for idempotency key", "key", idempotencyKey, "error", err)
		}
	}

	return order, nil
}
