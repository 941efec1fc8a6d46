package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"react2give/pkg/models"
	"react2give/pkg/notify"
	"react2give/pkg/registry"
	"react2give/pkg/utils"
)

const dispatchHeader = "X-Dispatch-Id"

func (s *Server) handleSendSMS(w http.ResponseWriter, r *http.Request) {
	corrID := correlationID(r)
	logPrefix := utils.LogPrefix(corrID)

	result, err := s.reminders.Dispatch(r.Context(), corrID)

	dispatchID := s.recordDispatch(r.Context(), corrID, result, err)
	if dispatchID != "" {
		w.Header().Set(dispatchHeader, dispatchID)
	}

	switch {
	case errors.Is(err, notify.ErrNoContacts):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "No contacts found"})
	case errors.Is(err, notify.ErrSourceUnavailable):
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Error reading Excel file"})
	case err != nil:
		slog.Error(logPrefix+"Reminder dispatch failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to send some SMS messages"})
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("SMS sent successfully!"))
	}
}

// recordDispatch stores the run for later inspection. A storage failure never
// changes the response.
func (s *Server) recordDispatch(ctx context.Context, corrID string, result *models.DispatchResult, runErr error) string {
	if s.registry == nil {
		return ""
	}

	d := &models.Dispatch{
		ID:            utils.GenerateUUID7(),
		CorrelationID: corrID,
		Status:        registry.DispatchSucceeded,
		DispatchedAt:  time.Now(),
	}
	if result != nil {
		d.Result = *result
	}
	if runErr != nil {
		d.Status = registry.DispatchFailed
		d.Error = runErr.Error()
	}

	if err := s.registry.SaveDispatch(context.WithoutCancel(ctx), d); err != nil {
		slog.Error(utils.LogPrefix(corrID)+"Failed to record dispatch", "dispatch_id", d.ID, "error", err)
		return ""
	}
	return d.ID
}

func (s *Server) handleGetDispatch(w http.ResponseWriter, r *http.Request) {
	d, err := s.registry.GetDispatch(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
