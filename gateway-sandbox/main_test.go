package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"react2give/pkg/models"
	"react2give/pkg/razorpay"
	"react2give/pkg/twilio"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSandboxServesRazorpayClient(t *testing.T) {
	srv := httptest.NewServer(newSandbox(0, 1).routes())
	defer srv.Close()

	client := razorpay.NewClient(srv.URL, "rzp_test", "secret", time.Second)
	order, err := client.CreateOrder(context.Background(), models.CreateOrderParams{
		Amount:   50000,
		Currency: "INR",
		Receipt:  "receipt_order_74394",
		Notes:    map[string]string{"idempotency_key": "k1"},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^order_`, order.ID)
	assert.Equal(t, int64(50000), order.Amount)
	assert.Equal(t, "created", order.Status)
	assert.Equal(t, "k1", order.Notes["idempotency_key"])
}

func TestSandboxRejectsSubMinimumOrder(t *testing.T) {
	srv := httptest.NewServer(newSandbox(0, 1).routes())
	defer srv.Close()

	client := razorpay.NewClient(srv.URL, "rzp_test", "secret", time.Second)
	_, err := client.CreateOrder(context.Background(), models.CreateOrderParams{Amount: 50, Currency: "INR"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minimum amount")
}

func TestSandboxServesTwilioClient(t *testing.T) {
	sb := newSandbox(0, 1)
	srv := httptest.NewServer(sb.routes())
	defer srv.Close()

	client := twilio.NewClient(srv.URL, "AC123", "token", time.Second)
	receipt, err := client.Send(context.Background(), "Dear Asha, please consider donating!", "+15550001", "+15550000")
	require.NoError(t, err)
	assert.Regexp(t, `^SM`, receipt.SID)
	assert.Equal(t, "queued", receipt.Status)
	assert.Equal(t, 1, sb.sentCount())

	_, err = client.Send(context.Background(), "hi", "5550001", "+15550000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "21211")
}

func TestSandboxAlwaysFails(t *testing.T) {
	srv := httptest.NewServer(newSandbox(100, 1).routes())
	defer srv.Close()

	client := twilio.NewClient(srv.URL, "AC123", "token", time.Second)
	_, err := client.Send(context.Background(), "hi", "+15550001", "+15550000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Random error occurred")
}

func TestSandboxTwilioErrorStatusMatchesResponse(t *testing.T) {
	cases := []struct {
		name   string
		user   string
		form   url.Values
		status int
		code   int
	}{
		{"bad auth", "ACother", url.Values{"To": {"+15550001"}, "From": {"+15550000"}, "Body": {"hi"}}, http.StatusUnauthorized, 20003},
		{"bad number", "AC123", url.Values{"To": {"5550001"}, "From": {"+15550000"}, "Body": {"hi"}}, http.StatusBadRequest, 21211},
	}
	handler := newSandbox(0, 1).routes()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/2010-04-01/Accounts/AC123/Messages.json", strings.NewReader(tc.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			req.SetBasicAuth(tc.user, "token")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tc.status, rec.Code)
			var body twilioErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, tc.status, body.Status)
		})
	}
}
