package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"react2give/pkg/models"
	"react2give/pkg/nats"
	"react2give/pkg/orders"
	"react2give/pkg/signature"
	"react2give/pkg/utils"

	"github.com/shopspring/decimal"
)

type createOrderRequest struct {
	Amount json.RawMessage `json:"amount"`
}

// parseAmount accepts JSON numbers only; strings, null and booleans are rejected.
func parseAmount(body io.Reader) (decimal.Decimal, bool) {
	var req createOrderRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return decimal.Zero, false
	}
	raw := strings.TrimSpace(string(req.Amount))
	if raw == "" || raw == "null" || strings.HasPrefix(raw, `"`) || raw == "true" || raw == "false" {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	corrID := correlationID(r)
	logPrefix := utils.LogPrefix(corrID)

	amount, ok := parseAmount(r.Body)
	if !ok || !amount.IsPositive() {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid amount"})
		return
	}

	key := strings.TrimSpace(r.Header.Get(utils.IdempotencyHeader))
	if key == "" {
		key = utils.GenerateUUID7()
	} else if !utils.ValidIdempotencyKey(key) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid Idempotency-Key"})
		return
	}
	w.Header().Set(utils.IdempotencyHeader, key)

	slog.Info(logPrefix+"Creating order", "amount", amount.String(), "idempotency_key", key)

	order, err := s.orders.CreateOrder(r.Context(), amount, key, corrID)
	switch {
	case errors.Is(err, orders.ErrInvalidAmount):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid amount"})
	case errors.Is(err, orders.ErrIdempotencyConflict):
		writeJSON(w, http.StatusConflict, errorBody{Error: "Idempotency key reuse with different amount"})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to create order"})
	default:
		writeJSON(w, http.StatusOK, order)
	}
}

func (s *Server) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	corrID := correlationID(r)
	logPrefix := utils.LogPrefix(corrID)

	var req models.PaymentVerification
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Missing required parameters"})
		return
	}

	err := signature.Check(req.OrderID, req.PaymentID, req.Signature, s.keySecret)
	switch {
	case errors.Is(err, signature.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Missing required parameters"})
		return
	case err != nil:
		slog.Warn(logPrefix+"Payment signature mismatch", "order_id", req.OrderID, "payment_id", req.PaymentID)
		writeJSON(w, http.StatusBadRequest, statusBody{Status: "failure", Error: "Invalid signature"})
		return
	}

	slog.Info(logPrefix+"Payment verified", "order_id", req.OrderID, "payment_id", req.PaymentID)

	msg := models.PaymentVerifiedMessage{
		OrderID:       req.OrderID,
		PaymentID:     req.PaymentID,
		DonorName:     req.DonorName,
		PaymentMode:   req.PaymentMode,
		VerifiedAt:    time.Now(),
		CorrelationID: corrID,
	}
	if p, err := s.parseToken(r); err == nil {
		msg.UserID = p.UserID
		if msg.DonorName == "" {
			msg.DonorName = p.Name
		}
	}
	if s.events != nil {
		if err := s.events.PublishJSON(nats.SubjectPaymentVerified, msg); err != nil {
			slog.Error(logPrefix+"Failed to publish message", "subject", nats.SubjectPaymentVerified, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, statusBody{Status: "success"})
}
