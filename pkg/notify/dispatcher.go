// Package notify sends donation reminders to every contact in a list.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"react2give/pkg/models"
	"react2give/pkg/utils"

	"golang.org/x/time/rate"
)

var (
	ErrSourceUnavailable = errors.New("error reading contact list")
	ErrNoContacts        = errors.New("no contacts found")
	ErrSendFailures      = errors.New("failed to send some messages")
)

const reminderTemplate = "Dear %s, please consider donating!"

type ContactSource interface {
	Load(ctx context.Context) ([]models.Contact, error)
}

type Messenger interface {
	Send(ctx context.Context, body, to, from string) (*models.MessageReceipt, error)
}

type Config struct {
	From          string
	Concurrency   int
	RatePerSecond float64
	SendTimeout   time.Duration
}

type Dispatcher struct {
	source    ContactSource
	messenger Messenger
	cfg       Config
	limiter   *rate.Limiter
}

func NewDispatcher(source ContactSource, messenger Messenger, cfg Config) *Dispatcher {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Concurrency)
	}
	return &Dispatcher{source: source, messenger: messenger, cfg: cfg, limiter: limiter}
}

func ReminderBody(name string) string {
	return fmt.Sprintf(reminderTemplate, name)
}

// Dispatch sends one reminder per contact with a phone number and waits for
// every send to settle. A non-nil result is returned whenever contacts were
// loaded, including alongside ErrSendFailures.
func (d *Dispatcher) Dispatch(ctx context.Context, correlationID string) (*models.DispatchResult, error) {
	logPrefix := utils.LogPrefix(correlationID)

	contacts, err := d.source.Load(ctx)
	if err != nil {
		slog.Error(logPrefix+"Error reading contact list", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if len(contacts) == 0 {
		return nil, ErrNoContacts
	}

	result := &models.DispatchResult{Outcomes: make([]models.ContactOutcome, len(contacts))}
	sem := make(chan struct{}, d.cfg.Concurrency)
	var wg sync.WaitGroup

	for i, contact := range contacts {
		if contact.PhoneNumber == "" {
			slog.Warn(logPrefix+"Skipping contact without phone number", "name", contact.Name, "row", contact.Row)
			result.Outcomes[i] = models.ContactOutcome{Contact: contact, Status: models.OutcomeSkipped}
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, contact models.Contact) {
			defer wg.Done()
			defer func() { <-sem }()
			result.Outcomes[i] = d.send(ctx, contact, logPrefix)
		}(i, contact)
	}
	wg.Wait()

	for _, o := range result.Outcomes {
		switch o.Status {
		case models.OutcomeSkipped:
			result.Skipped++
		case models.OutcomeSent:
			result.Attempted++
			result.Succeeded++
		case models.OutcomeFailed:
			result.Attempted++
			result.Failed++
		}
	}

	slog.Info(logPrefix+"Reminder dispatch finished",
		"attempted", result.Attempted,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"skipped", result.Skipped)

	if result.Failed > 0 {
		return result, ErrSendFailures
	}
	return result, nil
}

func (d *Dispatcher) send(ctx context.Context, contact models.Contact, logPrefix string) models.ContactOutcome {
	outcome := models.ContactOutcome{Contact: contact, Status: models.OutcomeFailed}

	if err := d.limiter.Wait(ctx); err != nil {
		outcome.Error = err.Error()
		slog.Error(logPrefix+"Reminder not sent", "row", contact.Row, "error", err)
		return outcome
	}

	sendCtx := ctx
	if d.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, d.cfg.SendTimeout)
		defer cancel()
	}

	receipt, err := d.messenger.Send(sendCtx, ReminderBody(contact.Name), contact.PhoneNumber, d.cfg.From)
	if err != nil {
		outcome.Error = err.Error()
		slog.Error(logPrefix+"Failed to send reminder", "row", contact.Row, "to", contact.PhoneNumber, "error", err)
		return outcome
	}

	outcome.Status = models.OutcomeSent
	if receipt != nil {
		outcome.MessageSID = receipt.SID
	}
	return outcome
}
