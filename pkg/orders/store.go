package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"react2give/pkg/models"
)

type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (s *MySQLStore) Find(ctx context.Context, key string) (*models.PaymentOrder, *models.OrderRecord, error) {
	var (
		po      models.PaymentOrder
		payload []byte
	)
	query := `SELECT idempotency_key, gateway_order_id, amount, currency, payload, created_at
			  FROM payment_orders WHERE idempotency_key = ?`
	err := s.db.QueryRowContext(ctx, query, key).Scan(
		&po.IdempotencyKey, &po.GatewayOrderID, &po.Amount, &po.Currency, &payload, &po.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("query payment order: %w", err)
	}

	var record models.OrderRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, nil, fmt.Errorf("decode stored order %s: %w", po.GatewayOrderID, err)
	}
	return &po, &record, nil
}

// Save keeps the first order stored for a key; a concurrent duplicate loses.
func (s *MySQLStore) Save(ctx context.Context, key string, order *models.OrderRecord) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	query := `INSERT INTO payment_orders (idempotency_key, gateway_order_id, amount, currency, payload)
			  VALUES (?, ?, ?, ?, ?) ON DUPLICATE KEY UPDATE idempotency_key = idempotency_key`
	if _, err := s.db.ExecContext(ctx, query, key, order.ID, order.Amount, order.Currency, payload); err != nil {
		return fmt.Errorf("insert payment order: %w", err)
	}
	return nil
}

// FindByGatewayID returns the order created for a gateway order id.
func (s *MySQLStore) FindByGatewayID(ctx context.Context, gatewayOrderID string) (*models.PaymentOrder, error) {
	var po models.PaymentOrder
	query := `SELECT idempotency_key, gateway_order_id, amount, currency, created_at
			  FROM payment_orders WHERE gateway_order_id = ? LIMIT 1`
	err := s.db.QueryRowContext(ctx, query, gatewayOrderID).Scan(
		&po.IdempotencyKey, &po.GatewayOrderID, &po.Amount, &po.Currency, &po.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query payment order by gateway id: %w", err)
	}
	return &po, nil
}

func (s *MySQLStore) ListBetween(ctx context.Context, from, to time.Time) ([]models.PaymentOrder, error) {
	query := `SELECT idempotency_key, gateway_order_id, amount, currency, created_at
			  FROM payment_orders WHERE created_at >= ? AND created_at < ? ORDER BY created_at ASC`
	rows, err := s.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("query payment orders: %w", err)
	}
	defer rows.Close()

	var out []models.PaymentOrder
	for rows.Next() {
		var po models.PaymentOrder
		if err := rows.Scan(&po.IdempotencyKey, &po.GatewayOrderID, &po.Amount, &po.Currency, &po.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment order: %w", err)
		}
		out = append(out, po)
	}
	return out, rows.Err()
}
