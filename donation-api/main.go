package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"react2give/pkg/api"
	"react2give/pkg/config"
	"react2give/pkg/contacts"
	"react2give/pkg/database"
	"react2give/pkg/nats"
	"react2give/pkg/notify"
	"react2give/pkg/orders"
	"react2give/pkg/razorpay"
	"react2give/pkg/registry"
	"react2give/pkg/twilio"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.CreateTables(db); err != nil {
		slog.Error("Failed to create tables", "error", err)
		os.Exit(1)
	}

	bus, err := nats.Connect(cfg.NATSURL, "donation-api")
	if err != nil {
		slog.Error("Failed to initialize NATS", "error", err)
		os.Exit(1)
	}
	defer bus.Close()

	orderService := orders.NewService(
		razorpay.NewClient(cfg.Razorpay.BaseURL, cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.GatewayTimeout),
		orders.NewMySQLStore(db),
		orders.Config{
			Currency: cfg.Razorpay.Currency,
			Receipt:  cfg.Razorpay.Receipt,
			Timeout:  cfg.GatewayTimeout,
		},
	)

	dispatcher := notify.NewDispatcher(
		contacts.NewWorkbookSource(cfg.SMS.ContactsFile),
		twilio.NewClient(cfg.Twilio.BaseURL, cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.SMS.SendTimeout),
		notify.Config{
			From:          cfg.Twilio.PhoneNumber,
			Concurrency:   cfg.SMS.Concurrency,
			RatePerSecond: cfg.SMS.RatePerSecond,
			SendTimeout:   cfg.SMS.SendTimeout,
		},
	)

	server := api.NewServer(orderService, dispatcher, registry.NewStore(db), bus, api.Options{
		KeySecret:      cfg.Razorpay.KeySecret,
		JWTSecret:      cfg.JWTSecret,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		CORSOrigins:    cfg.CORSOrigins,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Donation API starting", "addr", httpServer.Addr,
			"sms_concurrency", cfg.SMS.Concurrency,
			"sms_rate_per_second", cfg.SMS.RatePerSecond,
			"contacts_file", cfg.SMS.ContactsFile)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down donation API")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
