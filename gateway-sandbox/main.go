package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"react2give/pkg/models"
	"react2give/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	failurePercent, err := strconv.Atoi(os.Getenv("SANDBOX_FAILURE_PERCENT"))
	if err != nil {
		failurePercent = 10
	}
	port := os.Getenv("SANDBOX_PORT")
	if port == "" {
		port = "9000"
	}

	sb := newSandbox(failurePercent, time.Now().UnixNano())

	slog.Info("Gateway sandbox starting on port "+port, "failure_percent", failurePercent)
	if err := http.ListenAndServe(":"+port, sb.routes()); err != nil {
		slog.Error("Failed to start server", "error", err)
	}
}

type sandbox struct {
	failurePercent int

	mu   sync.Mutex
	rng  *rand.Rand
	sent int
}

func newSandbox(failurePercent int, seed int64) *sandbox {
	return &sandbox{
		failurePercent: failurePercent,
		rng:            rand.New(rand.NewSource(seed)),
	}
}

func (sb *sandbox) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Post("/v1/orders", sb.createOrder)
	r.Post("/2010-04-01/Accounts/{sid}/Messages.json", sb.sendMessage)
	return r
}

func (sb *sandbox) fail() bool {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.rng.Intn(100) < sb.failurePercent
}

func (sb *sandbox) sentCount() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.sent
}

func (sb *sandbox) createOrder(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := r.BasicAuth(); !ok {
		writeJSON(w, http.StatusUnauthorized, razorpayError("BAD_REQUEST_ERROR", "Authentication failed"))
		return
	}

	var params models.CreateOrderParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeJSON(w, http.StatusBadRequest, razorpayError("BAD_REQUEST_ERROR", "Invalid request body"))
		return
	}

	key := params.Notes["idempotency_key"]
	if params.Amount < 100 {
		writeJSON(w, http.StatusBadRequest, razorpayError("BAD_REQUEST_ERROR", "Order amount less than minimum amount allowed"))
		return
	}
	if sb.fail() {
		slog.Info("Random error generated", "amount", params.Amount, "idempotency_key", key)
		writeJSON(w, http.StatusInternalServerError, razorpayError("SERVER_ERROR", "Random error occurred"))
		return
	}

	order := models.OrderRecord{
		ID:        "order_" + strings.ReplaceAll(utils.GenerateUUID7(), "-", "")[:14],
		Entity:    "order",
		Amount:    params.Amount,
		AmountDue: params.Amount,
		Currency:  params.Currency,
		Receipt:   params.Receipt,
		Status:    "created",
		Notes:     params.Notes,
		CreatedAt: time.Now().Unix(),
	}
	if order.Notes == nil {
		order.Notes = map[string]string{}
	}

	slog.Info("Sandbox order created", "order_id", order.ID, "amount", order.Amount, "idempotency_key", key)
	writeJSON(w, http.StatusOK, order)
}

func (sb *sandbox) sendMessage(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	if user, _, ok := r.BasicAuth(); !ok || user != sid {
		writeTwilioError(w, http.StatusUnauthorized, 20003, "Authenticate")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeTwilioError(w, http.StatusBadRequest, 21602, "Message body is required.")
		return
	}

	to, from, body := r.PostForm.Get("To"), r.PostForm.Get("From"), r.PostForm.Get("Body")
	switch {
	case body == "":
		writeTwilioError(w, http.StatusBadRequest, 21602, "Message body is required.")
		return
	case !strings.HasPrefix(to, "+"):
		writeTwilioError(w, http.StatusBadRequest, 21211, fmt.Sprintf("The 'To' number %s is not a valid phone number.", to))
		return
	case from == "":
		writeTwilioError(w, http.StatusBadRequest, 21603, "A 'From' phone number is required.")
		return
	}

	if sb.fail() {
		slog.Info("Random error generated", "to", to)
		writeTwilioError(w, http.StatusInternalServerError, 20500, "Random error occurred")
		return
	}

	sb.mu.Lock()
	sb.sent++
	sb.mu.Unlock()

	receipt := models.MessageReceipt{
		SID:    "SM" + strings.ReplaceAll(utils.GenerateUUID7(), "-", ""),
		Status: "queued",
	}
	slog.Info("Sandbox message accepted", "sid", receipt.SID, "to", to)
	writeJSON(w, http.StatusCreated, receipt)
}

type razorpayErrorBody struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func razorpayError(code, description string) razorpayErrorBody {
	var b razorpayErrorBody
	b.Error.Code = code
	b.Error.Description = description
	return b
}

type twilioErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// writeTwilioError mirrors Twilio's error body, whose status field repeats the HTTP status.
func writeTwilioError(w http.ResponseWriter, status, code int, message string) {
	writeJSON(w, status, twilioErrorBody{Code: code, Message: message, Status: status})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
