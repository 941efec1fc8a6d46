package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"react2give/pkg/config"
	"react2give/pkg/database"
	"react2give/pkg/models"
	"react2give/pkg/nats"
	"react2give/pkg/orders"
	"react2give/pkg/registry"

	natspkg "github.com/nats-io/nats.go"
)

const queueGroup = "donation-ledger"

func main() {
	config.LoadDotEnv()

	dbCfg, err := config.LoadDatabase()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = natspkg.DefaultURL
	}

	db, err := database.Open(dbCfg)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.CreateTables(db); err != nil {
		slog.Error("Failed to create tables", "error", err)
		os.Exit(1)
	}

	bus, err := nats.Connect(natsURL, "donation-ledger")
	if err != nil {
		slog.Error("Failed to initialize NATS", "error", err)
		os.Exit(1)
	}
	defer bus.Close()

	ledger := registry.NewLedger(registry.NewStore(db), orders.NewMySQLStore(db))

	sub, err := bus.QueueSubscribe(nats.SubjectPaymentVerified, queueGroup, handlePaymentVerified(ledger))
	if err != nil {
		slog.Error("Failed to subscribe to "+nats.SubjectPaymentVerified, "error", err)
		os.Exit(1)
	}
	defer sub.Unsubscribe()

	slog.Info("Donation ledger listening", "subject", nats.SubjectPaymentVerified, "queue", queueGroup)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("Shutting down donation ledger")
}

func handlePaymentVerified(ledger *registry.Ledger) natspkg.MsgHandler {
	return func(msg *natspkg.Msg) {
		var payment models.PaymentVerifiedMessage
		if err := json.Unmarshal(msg.Data, &payment); err != nil {
			slog.Error("Failed to unmarshal payment message", "error", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := ledger.RecordVerifiedPayment(ctx, payment); err != nil {
			if errors.Is(err, registry.ErrValidation) || errors.Is(err, registry.ErrNotFound) {
				slog.Warn("Dropping payment message", "order_id", payment.OrderID, "error", err)
				return
			}
			slog.Error("Failed to record donation", "order_id", payment.OrderID, "payment_id", payment.PaymentID, "error", err)
		}
	}
}
