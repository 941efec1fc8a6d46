package registry

import (
	"context"
	"fmt"
	"log/slog"

	"react2give/pkg/models"
	"react2give/pkg/utils"
)

type OrderLookup interface {
	FindByGatewayID(ctx context.Context, gatewayOrderID string) (*models.PaymentOrder, error)
}

type DonationRecorder interface {
	RecordDonation(ctx context.Context, d *models.Donation) (bool, error)
}

// Ledger turns verified payments into donation rows.
type Ledger struct {
	donations DonationRecorder
	orders    OrderLookup
}

func NewLedger(donations DonationRecorder, orders OrderLookup) *Ledger {
	return &Ledger{donations: donations, orders: orders}
}

func (l *Ledger) RecordVerifiedPayment(ctx context.Context, msg models.PaymentVerifiedMessage) error {
	correlationID := msg.CorrelationID
	if correlationID == "" {
		correlationID = utils.GenerateCorrelationID()
	}
	logPrefix := utils.LogPrefix(correlationID)

	if msg.OrderID == "" || msg.PaymentID == "" {
		return fmt.Errorf("%w: payment message without order or payment id", ErrValidation)
	}

	order, err := l.orders.FindByGatewayID(ctx, msg.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("%w: order %s", ErrNotFound, msg.OrderID)
	}

	donorName := msg.DonorName
	if donorName == "" {
		donorName = "Anonymous"
	}

	inserted, err := l.donations.RecordDonation(ctx, &models.Donation{
		PaymentID:   msg.PaymentID,
		OrderID:     msg.OrderID,
		UserID:      msg.UserID,
		DonorName:   donorName,
		Amount:      order.Amount,
		Currency:    order.Currency,
		PaymentMode: msg.PaymentMode,
		DonatedAt:   msg.VerifiedAt,
	})
	if err != nil {
		return err
	}

	if inserted {
		slog.Info(logPrefix+"Donation recorded", "payment_id", msg.PaymentID, "order_id", msg.OrderID, "amount", order.Amount)
	} else {
		slog.Info(logPrefix+"Donation already recorded for payment", "payment_id", msg.PaymentID)
	}
	return nil
}
