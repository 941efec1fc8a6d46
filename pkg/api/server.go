// Package api is the HTTP boundary of the donation service.
package api

import (
	"context"
	"net/http"

	"react2give/pkg/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"
)

type OrderCreator interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, idempotencyKey, correlationID string) (*models.OrderRecord, error)
}

type ReminderDispatcher interface {
	Dispatch(ctx context.Context, correlationID string) (*models.DispatchResult, error)
}

type EventPublisher interface {
	PublishJSON(subject string, v interface{}) error
}

type Registry interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id string) error
	CreateOrganization(ctx context.Context, o *models.Organization) error
	ListOrganizations(ctx context.Context) ([]models.Organization, error)
	ListDonations(ctx context.Context) (*models.DonationSummary, error)
	DeleteDonation(ctx context.Context, id string) error
	SaveDispatch(ctx context.Context, d *models.Dispatch) error
	GetDispatch(ctx context.Context, id string) (*models.Dispatch, error)
}

type Options struct {
	KeySecret      string
	JWTSecret      string
	RateLimitRPS   int
	RateLimitBurst int
	CORSOrigins    []string
}

type Server struct {
	orders    OrderCreator
	reminders ReminderDispatcher
	registry  Registry
	events    EventPublisher
	keySecret string
	jwtSecret []byte
	limiter   *rateLimiter
	cors      []string
}

func NewServer(orders OrderCreator, reminders ReminderDispatcher, registry Registry, events EventPublisher, opts Options) *Server {
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = 5
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 10
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	return &Server{
		orders:    orders,
		reminders: reminders,
		registry:  registry,
		events:    events,
		keySecret: opts.KeySecret,
		jwtSecret: []byte(opts.JWTSecret),
		limiter:   newRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
		cors:      opts.CORSOrigins,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cors,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Idempotency-Key", "X-Correlation-Id"},
		ExposedHeaders: []string{"Idempotency-Key", "X-Correlation-Id", "X-Dispatch-Id"},
	}))
	r.Use(withCorrelation)
	r.Use(limitBody)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.middleware)
		r.Post("/api/createOrder", s.handleCreateOrder)
		r.Post("/api/verifyPayment", s.handleVerifyPayment)
		r.Post("/send-sms", s.handleSendSMS)
		r.Post("/api/organizations", s.handleCreateOrganization)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Post("/api/users", s.handleCreateUser)
		r.Get("/api/users/me", s.handleGetMe)
		r.Put("/api/users/me", s.handleUpdateMe)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Use(s.requireAdmin)
		r.Get("/users", s.handleListUsers)
		r.Delete("/users/{id}", s.handleDeleteUser)
		r.Get("/donations", s.handleListDonations)
		r.Delete("/donations/{id}", s.handleDeleteDonation)
		r.Get("/organizations", s.handleListOrganizations)
		r.Get("/dispatches/{id}", s.handleGetDispatch)
	})

	return r
}
