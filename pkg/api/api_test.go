package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"react2give/pkg/models"
	"react2give/pkg/nats"
	"react2give/pkg/notify"
	"react2give/pkg/orders"
	"react2give/pkg/registry"
	"react2give/pkg/signature"
	"react2give/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKeySecret = "rzp_test_secret"
	testJWTSecret = "jwt-test-secret"
)

type fakeOrders struct {
	calls  int
	amount decimal.Decimal
	key    string
	err    error
}

func (f *fakeOrders) CreateOrder(ctx context.Context, amount decimal.Decimal, key, corrID string) (*models.OrderRecord, error) {
	f.calls++
	f.amount = amount
	f.key = key
	if f.err != nil {
		return nil, f.err
	}
	minor, _ := orders.MinorUnits(amount)
	return &models.OrderRecord{
		ID:        "order_test",
		Entity:    "order",
		Amount:    minor,
		AmountDue: minor,
		Currency:  "INR",
		Receipt:   "receipt_order_74394",
		Status:    "created",
		Notes:     map[string]string{},
	}, nil
}

type fakeReminders struct {
	result *models.DispatchResult
	err    error
}

func (f *fakeReminders) Dispatch(ctx context.Context, corrID string) (*models.DispatchResult, error) {
	return f.result, f.err
}

type fakeEvents struct {
	mu       sync.Mutex
	subjects []string
	messages []interface{}
}

func (f *fakeEvents) PublishJSON(subject string, v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subjects = append(f.subjects, subject)
	f.messages = append(f.messages, v)
	return nil
}

type fakeRegistry struct {
	users      map[string]*models.User
	dispatches map[string]*models.Dispatch
	saveErr    error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{users: map[string]*models.User{}, dispatches: map[string]*models.Dispatch{}}
}

func (f *fakeRegistry) CreateUser(ctx context.Context, u *models.User) error {
	if _, ok := f.users[u.ID]; ok {
		return registry.ErrAlreadyExists
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRegistry) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, registry.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRegistry) UpdateUser(ctx context.Context, u *models.User) error {
	existing, ok := f.users[u.ID]
	if !ok {
		return registry.ErrNotFound
	}
	existing.Name = u.Name
	existing.Address = u.Address
	return nil
}

func (f *fakeRegistry) ListUsers(ctx context.Context) ([]models.User, error) {
	out := []models.User{}
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeRegistry) DeleteUser(ctx context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return registry.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeRegistry) CreateOrganization(ctx context.Context, o *models.Organization) error {
	o.ID = "org-1"
	return nil
}

func (f *fakeRegistry) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	return []models.Organization{}, nil
}

func (f *fakeRegistry) ListDonations(ctx context.Context) (*models.DonationSummary, error) {
	return &models.DonationSummary{
		Donations:   []models.Donation{{ID: "d1", Amount: 50000, Currency: "INR", DonorName: "Asha"}},
		Count:       1,
		TotalAmount: 50000,
	}, nil
}

func (f *fakeRegistry) DeleteDonation(ctx context.Context, id string) error {
	return registry.ErrNotFound
}

func (f *fakeRegistry) SaveDispatch(ctx context.Context, d *models.Dispatch) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.dispatches[d.ID] = d
	return nil
}

func (f *fakeRegistry) GetDispatch(ctx context.Context, id string) (*models.Dispatch, error) {
	d, ok := f.dispatches[id]
	if !ok {
		return nil, registry.ErrNotFound
	}
	return d, nil
}

type harness struct {
	orders    *fakeOrders
	reminders *fakeReminders
	registry  *fakeRegistry
	events    *fakeEvents
	handler   http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		orders:    &fakeOrders{},
		reminders: &fakeReminders{},
		registry:  newFakeRegistry(),
		events:    &fakeEvents{},
	}
	srv := NewServer(h.orders, h.reminders, h.registry, h.events, Options{
		KeySecret:      testKeySecret,
		JWTSecret:      testJWTSecret,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	})
	h.handler = srv.Routes()
	return h
}

func (h *harness) do(method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func token(t *testing.T, subject, role string) string {
	t.Helper()
	claims := Claims{
		Email: subject + "@example.com",
		Name:  "Test " + subject,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestCreateOrderRejectsInvalidAmounts(t *testing.T) {
	bodies := []string{
		`{"amount": -5}`,
		`{"amount": 0}`,
		`{"amount": "100"}`,
		`{"amount": null}`,
		`{"amount": true}`,
		`{}`,
		`not json`,
	}
	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			h := newHarness(t)
			rec := h.do(http.MethodPost, "/api/createOrder", body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"Invalid amount"}`, rec.Body.String())
			assert.Zero(t, h.orders.calls)
		})
	}
}

func TestCreateOrderReturnsGatewayOrder(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodPost, "/api/createOrder", `{"amount": 500}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"amount":50000`)
	assert.Contains(t, rec.Body.String(), `"id":"order_test"`)
	assert.True(t, h.orders.amount.Equal(decimal.NewFromInt(500)))

	key := rec.Header().Get(utils.IdempotencyHeader)
	assert.NotEmpty(t, key)
	assert.Equal(t, h.orders.key, key)
	assert.NotEmpty(t, rec.Header().Get(utils.CorrelationHeader))
}

func TestCreateOrderUsesClientIdempotencyKey(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodPost, "/api/createOrder", `{"amount": 10.5}`,
		map[string]string{utils.IdempotencyHeader: "donate-42"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "donate-42", h.orders.key)
	assert.Equal(t, "donate-42", rec.Header().Get(utils.IdempotencyHeader))
}

func TestCreateOrderRejectsMalformedIdempotencyKey(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodPost, "/api/createOrder", `{"amount": 10}`,
		map[string]string{utils.IdempotencyHeader: "has spaces in it"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, h.orders.calls)
}

func TestCreateOrderErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"gateway", fmt.Errorf("%w: boom", orders.ErrGateway), http.StatusInternalServerError, `{"error":"Failed to create order"}`},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, `{"error":"Failed to create order"}`},
		{"invalid", orders.ErrInvalidAmount, http.StatusBadRequest, `{"error":"Invalid amount"}`},
		{"conflict", orders.ErrIdempotencyConflict, http.StatusConflict, `{"error":"Idempotency key reuse with different amount"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.orders.err = tc.err
			rec := h.do(http.MethodPost, "/api/createOrder", `{"amount": 100}`, nil)
			assert.Equal(t, tc.code, rec.Code)
			assert.JSONEq(t, tc.body, rec.Body.String())
		})
	}
}

func verifyBody(orderID, paymentID, sig string) string {
	return fmt.Sprintf(`{"razorpay_order_id":%q,"razorpay_payment_id":%q,"razorpay_signature":%q}`, orderID, paymentID, sig)
}

func TestVerifyPaymentSuccess(t *testing.T) {
	h := newHarness(t)
	sig := signature.Sign("order_1", "pay_1", testKeySecret)

	rec := h.do(http.MethodPost, "/api/verifyPayment", verifyBody("order_1", "pay_1", sig), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())

	require.Len(t, h.events.subjects, 1)
	assert.Equal(t, nats.SubjectPaymentVerified, h.events.subjects[0])
	msg, ok := h.events.messages[0].(models.PaymentVerifiedMessage)
	require.True(t, ok)
	assert.Equal(t, "order_1", msg.OrderID)
	assert.Equal(t, "pay_1", msg.PaymentID)
	assert.Empty(t, msg.UserID)
}

func TestVerifyPaymentAttributesTokenHolder(t *testing.T) {
	h := newHarness(t)
	sig := signature.Sign("order_1", "pay_1", testKeySecret)

	rec := h.do(http.MethodPost, "/api/verifyPayment", verifyBody("order_1", "pay_1", sig),
		map[string]string{"Authorization": token(t, "user-7", "")})

	require.Equal(t, http.StatusOK, rec.Code)
	msg := h.events.messages[0].(models.PaymentVerifiedMessage)
	assert.Equal(t, "user-7", msg.UserID)
	assert.Equal(t, "Test user-7", msg.DonorName)
}

func TestVerifyPaymentRejectsTamperedSignature(t *testing.T) {
	h := newHarness(t)
	sig := signature.Sign("order_1", "pay_1", testKeySecret)
	tampered := "x" + sig[1:]

	rec := h.do(http.MethodPost, "/api/verifyPayment", verifyBody("order_1", "pay_1", tampered), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":"failure","error":"Invalid signature"}`, rec.Body.String())
	assert.Empty(t, h.events.subjects)
}

func TestVerifyPaymentRejectsMismatchedIDs(t *testing.T) {
	h := newHarness(t)
	sig := signature.Sign("order_1", "pay_1", testKeySecret)

	rec := h.do(http.MethodPost, "/api/verifyPayment", verifyBody("order_2", "pay_1", sig), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":"failure","error":"Invalid signature"}`, rec.Body.String())
}

func TestVerifyPaymentMissingParameters(t *testing.T) {
	bodies := []string{
		verifyBody("", "pay_1", "abc"),
		verifyBody("order_1", "", "abc"),
		verifyBody("order_1", "pay_1", ""),
		`{}`,
		`garbage`,
	}
	for _, body := range bodies {
		h := newHarness(t)
		rec := h.do(http.MethodPost, "/api/verifyPayment", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error":"Missing required parameters"}`, rec.Body.String(), body)
	}
}

func TestSendSMSSuccess(t *testing.T) {
	h := newHarness(t)
	h.reminders.result = &models.DispatchResult{
		Attempted: 1,
		Succeeded: 1,
		Outcomes: []models.ContactOutcome{{
			Contact: models.Contact{Row: 2, Name: "Asha", PhoneNumber: "+15550001"},
			Status:  models.OutcomeSent,
		}},
	}

	rec := h.do(http.MethodPost, "/send-sms", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SMS sent successfully!", rec.Body.String())

	id := rec.Header().Get(dispatchHeader)
	require.NotEmpty(t, id)
	saved := h.registry.dispatches[id]
	require.NotNil(t, saved)
	assert.Equal(t, registry.DispatchSucceeded, saved.Status)
	assert.Equal(t, 1, saved.Result.Succeeded)
}

func TestSendSMSErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		result *models.DispatchResult
		err    error
		code   int
		body   string
	}{
		{"no contacts", nil, notify.ErrNoContacts, http.StatusBadRequest, `{"error":"No contacts found"}`},
		{"source", nil, fmt.Errorf("%w: open: no such file", notify.ErrSourceUnavailable), http.StatusInternalServerError, `{"error":"Error reading Excel file"}`},
		{"send failures", &models.DispatchResult{Attempted: 2, Succeeded: 1, Failed: 1}, notify.ErrSendFailures, http.StatusInternalServerError, `{"error":"Failed to send some SMS messages"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.reminders.result = tc.result
			h.reminders.err = tc.err

			rec := h.do(http.MethodPost, "/send-sms", "", nil)

			assert.Equal(t, tc.code, rec.Code)
			assert.JSONEq(t, tc.body, rec.Body.String())

			saved := h.registry.dispatches[rec.Header().Get(dispatchHeader)]
			require.NotNil(t, saved)
			assert.Equal(t, registry.DispatchFailed, saved.Status)
		})
	}
}

func TestSendSMSIgnoresAuditFailure(t *testing.T) {
	h := newHarness(t)
	h.reminders.result = &models.DispatchResult{}
	h.registry.saveErr = errors.New("db down")

	rec := h.do(http.MethodPost, "/send-sms", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(dispatchHeader))
}

func TestRateLimit(t *testing.T) {
	srv := NewServer(&fakeOrders{}, &fakeReminders{}, newFakeRegistry(), nil, Options{
		KeySecret:      testKeySecret,
		JWTSecret:      testJWTSecret,
		RateLimitRPS:   1,
		RateLimitBurst: 1,
	})
	handler := srv.Routes()

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/createOrder", strings.NewReader(`{"amount": 1}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestUserRoutesRequireToken(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(http.MethodGet, "/api/users/me", "", map[string]string{"Authorization": "Bearer not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterAndReadProfile(t *testing.T) {
	h := newHarness(t)
	auth := map[string]string{"Authorization": token(t, "user-1", "")}

	rec := h.do(http.MethodPost, "/api/users", `{"name":"Asha","email":"asha@example.com","role":"admin"}`, auth)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, models.RoleDonor, h.registry.users["user-1"].Role)

	rec = h.do(http.MethodPost, "/api/users", `{"name":"Asha","email":"asha@example.com"}`, auth)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do(http.MethodPut, "/api/users/me", `{"name":"Asha K","email":"asha@example.com","address":"Pune"}`, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Asha K"`)

	rec = h.do(http.MethodGet, "/api/users/me", "", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"address":"Pune"`)
}

func TestRegisterValidatesBody(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodPost, "/api/users", `{"name":""}`,
		map[string]string{"Authorization": token(t, "user-1", "")})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, h.registry.users)
}

func TestCreateOrganization(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodPost, "/api/organizations",
		`{"organizationName":"Helping Hands","contactPerson":"Ravi","email":"ravi@example.org","phoneNumber":"9876543210"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"org-1"`)

	rec = h.do(http.MethodPost, "/api/organizations", `{"organizationName":"x"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoutes(t *testing.T) {
	h := newHarness(t)
	h.registry.users["donor-1"] = &models.User{ID: "donor-1", Name: "D", Email: "d@example.com", Role: models.RoleDonor}
	h.registry.users["admin-1"] = &models.User{ID: "admin-1", Name: "A", Email: "a@example.com", Role: models.RoleAdmin}

	rec := h.do(http.MethodGet, "/admin/donations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(http.MethodGet, "/admin/donations", "", map[string]string{"Authorization": token(t, "donor-1", "")})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(http.MethodGet, "/admin/donations", "", map[string]string{"Authorization": token(t, "admin-1", "")})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalDonations":1`)
	assert.Contains(t, rec.Body.String(), `"totalAmount":50000`)

	claimAdmin := map[string]string{"Authorization": token(t, "someone", models.RoleAdmin)}
	rec = h.do(http.MethodGet, "/admin/users", "", claimAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalUsers":2`)

	rec = h.do(http.MethodDelete, "/admin/users/donor-1", "", claimAdmin)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, h.registry.users, "donor-1")

	rec = h.do(http.MethodDelete, "/admin/donations/missing", "", claimAdmin)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(http.MethodGet, "/admin/dispatches/missing", "", claimAdmin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRejectsForeignSigningKey(t *testing.T) {
	h := newHarness(t)
	claims := Claims{Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "x"}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	rec := h.do(http.MethodGet, "/admin/users", "", map[string]string{"Authorization": "Bearer " + signed})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
