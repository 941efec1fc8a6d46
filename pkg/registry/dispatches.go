package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"react2give/pkg/models"
)

const (
	DispatchSucceeded = "succeeded"
	DispatchFailed    = "failed"
)

// SaveDispatch writes a reminder run and its per-contact outcomes atomically.
func (s *Store) SaveDispatch(ctx context.Context, d *models.Dispatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin dispatch tx: %w", err)
	}
	defer tx.Rollback()

	r := d.Result
	query := `INSERT INTO sms_dispatches (id, correlation_id, attempted, skipped, succeeded, failed, status, error)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query, d.ID, d.CorrelationID, r.Attempted, r.Skipped, r.Succeeded,
		r.Failed, d.Status, d.Error); err != nil {
		return fmt.Errorf("insert dispatch: %w", err)
	}

	if len(r.Outcomes) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO sms_outcomes
			(dispatch_id, contact_row, name, phone_number, status, message_sid, error) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare outcome insert: %w", err)
		}
		defer stmt.Close()

		for _, o := range r.Outcomes {
			if _, err := stmt.ExecContext(ctx, d.ID, o.Contact.Row, o.Contact.Name, o.Contact.PhoneNumber,
				o.Status, o.MessageSID, o.Error); err != nil {
				return fmt.Errorf("insert outcome: %w", err)
			}
		}
	}

	return tx.Commit()
}

func (s *Store) GetDispatch(ctx context.Context, id string) (*models.Dispatch, error) {
	var d models.Dispatch
	query := `SELECT id, correlation_id, attempted, skipped, succeeded, failed, status, COALESCE(error, ''), dispatched_at
			  FROM sms_dispatches WHERE id = ?`
	err := s.db.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.CorrelationID, &d.Result.Attempted,
		&d.Result.Skipped, &d.Result.Succeeded, &d.Result.Failed, &d.Status, &d.Error, &d.DispatchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query dispatch: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT contact_row, COALESCE(name, ''), COALESCE(phone_number, ''), status,
		COALESCE(message_sid, ''), COALESCE(error, '') FROM sms_outcomes WHERE dispatch_id = ? ORDER BY contact_row`, id)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	d.Result.Outcomes = []models.ContactOutcome{}
	for rows.Next() {
		var o models.ContactOutcome
		if err := rows.Scan(&o.Contact.Row, &o.Contact.Name, &o.Contact.PhoneNumber, &o.Status,
			&o.MessageSID, &o.Error); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		d.Result.Outcomes = append(d.Result.Outcomes, o)
	}
	return &d, rows.Err()
}

// RecentDispatches returns run summaries without outcomes, newest first.
func (s *Store) RecentDispatches(ctx context.Context, limit int) ([]models.Dispatch, error) {
	query := `SELECT id, correlation_id, attempted, skipped, succeeded, failed, status, COALESCE(error, ''), dispatched_at
			  FROM sms_dispatches ORDER BY dispatched_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query dispatches: %w", err)
	}
	defer rows.Close()

	var out []models.Dispatch
	for rows.Next() {
		var d models.Dispatch
		if err := rows.Scan(&d.ID, &d.CorrelationID, &d.Result.Attempted, &d.Result.Skipped,
			&d.Result.Succeeded, &d.Result.Failed, &d.Status, &d.Error, &d.DispatchedAt); err != nil {
			return nil, fmt.Errorf("scan dispatch: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
