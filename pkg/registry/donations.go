package registry

import (
	"context"
	"fmt"
	"time"

	"react2give/pkg/models"
	"react2give/pkg/utils"
)

const donationColumns = `id, payment_id, order_id, COALESCE(user_id, ''), donor_name, amount, currency,
	COALESCE(payment_mode, ''), donated_at`

// RecordDonation inserts d unless a donation for the same payment id exists.
// It reports whether a row was written.
func (s *Store) RecordDonation(ctx context.Context, d *models.Donation) (bool, error) {
	if d.ID == "" {
		d.ID = utils.GenerateUUID7()
	}
	if d.DonatedAt.IsZero() {
		d.DonatedAt = time.Now()
	}
	query := `INSERT INTO donations (id, payment_id, order_id, user_id, donor_name, amount, currency, payment_mode, donated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) ON DUPLICATE KEY UPDATE payment_id = payment_id`
	res, err := s.db.ExecContext(ctx, query, d.ID, d.PaymentID, d.OrderID, d.UserID, d.DonorName,
		d.Amount, d.Currency, d.PaymentMode, d.DonatedAt)
	if err != nil {
		return false, fmt.Errorf("insert donation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert donation: %w", err)
	}
	return n > 0, nil
}

func (s *Store) ListDonations(ctx context.Context) (*models.DonationSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+donationColumns+` FROM donations ORDER BY donated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query donations: %w", err)
	}
	defer rows.Close()
	return summarize(rows)
}

func (s *Store) DonationsBetween(ctx context.Context, from, to time.Time) (*models.DonationSummary, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE donated_at >= ? AND donated_at < ? ORDER BY donated_at ASC`
	rows, err := s.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("query donations: %w", err)
	}
	defer rows.Close()
	return summarize(rows)
}

func (s *Store) DeleteDonation(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "donations", id)
}

type rowScanner interface {
	Next() bool
	Scan(...any) error
	Err() error
}

func summarize(rows rowScanner) (*models.DonationSummary, error) {
	summary := &models.DonationSummary{Donations: []models.Donation{}}
	for rows.Next() {
		var d models.Donation
		if err := rows.Scan(&d.ID, &d.PaymentID, &d.OrderID, &d.UserID, &d.DonorName, &d.Amount,
			&d.Currency, &d.PaymentMode, &d.DonatedAt); err != nil {
			return nil, fmt.Errorf("scan donation: %w", err)
		}
		summary.Donations = append(summary.Donations, d)
		summary.TotalAmount += d.Amount
	}
	summary.Count = len(summary.Donations)
	return summary, rows.Err()
}
