package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"react2give/pkg/config"
	"react2give/pkg/database"
	"react2give/pkg/httpclient"
	"react2give/pkg/models"
	"react2give/pkg/orders"
	"react2give/pkg/registry"
	"react2give/pkg/signature"
	"react2give/pkg/utils"

	"github.com/shopspring/decimal"
)

const simulatorWorkers = 4

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./tooling <command> [args]")
		fmt.Println("Commands:")
		fmt.Println("  resetdb                    - Reset all database tables")
		fmt.Println("  simulator <count>          - Create and verify <count> donations against the API")
		fmt.Println("  donations                  - Print today's donations")
		fmt.Println("  orders                     - Print today's payment orders")
		fmt.Println("  dispatches                 - Print recent SMS reminder runs")
		os.Exit(1)
	}

	config.LoadDotEnv()

	command := os.Args[1]
	if command == "simulator" {
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./tooling simulator <count>")
			os.Exit(1)
		}
		count, err := strconv.Atoi(os.Args[2])
		if err != nil || count < 1 {
			fmt.Println("Invalid count:", os.Args[2])
			os.Exit(1)
		}
		runSimulator(count)
		return
	}

	dbCfg, err := config.LoadDatabase()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	db, err := database.Open(dbCfg)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	switch command {
	case "resetdb":
		resetDB(db)
	case "donations":
		printDonations(db)
	case "orders":
		printOrders(db)
	case "dispatches":
		printDispatches(db)
	default:
		fmt.Println("Unknown command:", command)
		os.Exit(1)
	}
}

func resetDB(db *sql.DB) {
	if err := database.ResetTables(db); err != nil {
		slog.Error("Failed to reset database", "error", err)
		return
	}
	fmt.Println("Database reset completed")
}

type simulator struct {
	client    *httpclient.Client
	keySecret string
}

type simulationResult struct {
	iteration int
	outcome   string
	line      string
}

func runSimulator(count int) {
	sim := &simulator{
		client:    httpclient.NewClient(apiBaseURL(), 15*time.Second),
		keySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
	}
	if sim.keySecret == "" {
		fmt.Println("RAZORPAY_KEY_SECRET is required to sign simulated payments")
		os.Exit(1)
	}

	fmt.Printf("Starting simulation with %d iterations using %d goroutines\n", count, simulatorWorkers)

	jobs := make(chan int)
	results := make(chan simulationResult, count)

	var wg sync.WaitGroup
	for i := 0; i < simulatorWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for iteration := range jobs {
				results <- sim.iterate(context.Background(), iteration, rng)
			}
		}(time.Now().UnixNano() + int64(i))
	}

	go func() {
		for i := 1; i <= count; i++ {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	tally := map[string]int{}
	for result := range results {
		tally[result.outcome]++
		fmt.Println(result.line)
	}

	fmt.Printf("\nSimulation completed. Success: %d, Replay mismatches: %d, Failed: %d\n",
		tally["SUCCESS"], tally["MISMATCH"], tally["FAILED"])
}

// iterate creates an order, repeats the request with the same idempotency
// key to check that it is replayed, then verifies a signed payment for it.
func (sim *simulator) iterate(ctx context.Context, iteration int, rng *rand.Rand) simulationResult {
	correlationID := utils.GenerateCorrelationID()
	logPrefix := utils.LogPrefix(correlationID)
	key := utils.GenerateUUID7()
	amount := decimal.New(int64(100+rng.Intn(99900)), -2).Add(decimal.NewFromInt(1))

	fail := func(format string, args ...interface{}) simulationResult {
		return simulationResult{
			iteration: iteration,
			outcome:   "FAILED",
			line:      fmt.Sprintf("Iteration %d [%s]: FAILED %s", iteration, correlationID, fmt.Sprintf(format, args...)),
		}
	}

	first, err := sim.createOrder(ctx, amount, key, correlationID)
	if err != nil {
		return fail("to create order - %v", err)
	}
	slog.Info(logPrefix+"Order created for simulation", "iteration", iteration, "order_id", first.ID)

	replay, err := sim.createOrder(ctx, amount, key, correlationID)
	if err != nil {
		return fail("to replay order - %v", err)
	}
	if replay.ID != first.ID {
		return simulationResult{
			iteration: iteration,
			outcome:   "MISMATCH",
			line: fmt.Sprintf("Iteration %d [%s]: MISMATCH - key %s returned %s then %s",
				iteration, correlationID, key, first.ID, replay.ID),
		}
	}

	paymentID := "pay_" + strings.ReplaceAll(utils.GenerateUUID7(), "-", "")[:14]
	verification := models.PaymentVerification{
		OrderID:     first.ID,
		PaymentID:   paymentID,
		Signature:   signature.Sign(first.ID, paymentID, sim.keySecret),
		DonorName:   fmt.Sprintf("Simulated Donor %d", iteration),
		PaymentMode: "upi",
	}
	var status struct {
		Status string `json:"status"`
	}
	if err := sim.post(ctx, "/api/verifyPayment", correlationID, "", verification, &status); err != nil {
		return fail("payment verification - %v", err)
	}
	if status.Status != "success" {
		return fail("payment verification - status %q", status.Status)
	}

	return simulationResult{
		iteration: iteration,
		outcome:   "SUCCESS",
		line: fmt.Sprintf("Iteration %d [%s]: SUCCESS - Order: %s, Payment: %s, Amount: %s",
			iteration, correlationID, first.ID, paymentID, amount.StringFixed(2)),
	}
}

func (sim *simulator) createOrder(ctx context.Context, amount decimal.Decimal, key, correlationID string) (*models.OrderRecord, error) {
	var order models.OrderRecord
	body := map[string]json.RawMessage{"amount": json.RawMessage(amount.StringFixed(2))}
	if err := sim.post(ctx, "/api/createOrder", correlationID, key, body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (sim *simulator) post(ctx context.Context, path, correlationID, key string, payload, out interface{}) error {
	headers := map[string]string{utils.CorrelationHeader: correlationID}
	if key != "" {
		headers[utils.IdempotencyHeader] = key
	}
	return sim.client.PostJSON(httpclient.WithHeaders(ctx, headers), path, payload, out)
}

func apiBaseURL() string {
	if u := os.Getenv("DONATION_API_URL"); u != "" {
		return strings.TrimRight(u, "/")
	}
	return "http://localhost:5000"
}

func printDonations(db *sql.DB) {
	checkDatabaseTimezone(db)
	today, startOfDay, endOfDay := todayRange()
	loc := reportLocation()

	slog.Info("Printing donations", "date", today, "timezone", loc.String())

	summary, err := registry.NewStore(db).DonationsBetween(context.Background(), startOfDay, endOfDay)
	if err != nil {
		slog.Error("Failed to query donations", "error", err)
		return
	}

	table := NewTable(os.Stdout, "Donations for "+today+" ("+loc.String()+")")
	table.AddColumn("Payment ID", 24, AlignLeft).
		AddColumn("Order ID", 24, AlignLeft).
		AddColumn("Donor", 22, AlignLeft).
		AddColumn("Amount", 12, AlignRight).
		AddColumn("Mode", 8, AlignLeft).
		AddColumn("Donated At", 21, AlignLeft)
	table.PrintHeader()

	if len(summary.Donations) == 0 {
		table.PrintEmptyRow("No donations recorded today")
	}
	for _, d := range summary.Donations {
		table.PrintRow(d.PaymentID, d.OrderID, d.DonorName, majorUnits(d.Amount), d.PaymentMode,
			d.DonatedAt.In(loc).Format("2006-01-02 15:04:05"))
	}

	table.PrintFooter()
	fmt.Printf("Total donations: %d\n", summary.Count)
	fmt.Println("Total amount: ", majorUnits(summary.TotalAmount))
}

func printOrders(db *sql.DB) {
	checkDatabaseTimezone(db)
	today, startOfDay, endOfDay := todayRange()
	loc := reportLocation()

	records, err := orders.NewMySQLStore(db).ListBetween(context.Background(), startOfDay, endOfDay)
	if err != nil {
		slog.Error("Failed to query payment orders", "error", err)
		return
	}

	table := NewTable(os.Stdout, "Payment orders for "+today+" ("+loc.String()+")")
	table.AddColumn("Idempotency Key", 38, AlignLeft).
		AddColumn("Order ID", 24, AlignLeft).
		AddColumn("Amount", 12, AlignRight).
		AddColumn("Currency", 9, AlignLeft).
		AddColumn("Created At", 21, AlignLeft)
	table.PrintHeader()

	if len(records) == 0 {
		table.PrintEmptyRow("No payment orders created today")
	}
	var total int64
	for _, o := range records {
		total += o.Amount
		table.PrintRow(o.IdempotencyKey, o.GatewayOrderID, majorUnits(o.Amount), o.Currency,
			o.CreatedAt.In(loc).Format("2006-01-02 15:04:05"))
	}

	table.PrintFooter()
	fmt.Printf("Total orders: %d\n", len(records))
	fmt.Println("Total ordered amount: ", majorUnits(total))
}

func printDispatches(db *sql.DB) {
	loc := reportLocation()

	dispatches, err := registry.NewStore(db).RecentDispatches(context.Background(), 20)
	if err != nil {
		slog.Error("Failed to query dispatches", "error", err)
		return
	}

	table := NewTable(os.Stdout, "Recent SMS reminder runs ("+loc.String()+")")
	table.AddColumn("Dispatch ID", 38, AlignLeft).
		AddColumn("Status", 11, AlignLeft).
		AddColumn("Sent", 6, AlignRight).
		AddColumn("Failed", 8, AlignRight).
		AddColumn("Skipped", 9, AlignRight).
		AddColumn("Dispatched At", 21, AlignLeft)
	table.PrintHeader()

	if len(dispatches) == 0 {
		table.PrintEmptyRow("No reminder runs recorded")
	}
	for _, d := range dispatches {
		table.PrintRow(d.ID, d.Status, d.Result.Succeeded, d.Result.Failed, d.Result.Skipped,
			d.DispatchedAt.In(loc).Format("2006-01-02 15:04:05"))
	}

	table.PrintFooter()
	fmt.Printf("Total runs shown: %d\n", len(dispatches))
}

func majorUnits(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

func reportLocation() *time.Location {
	return database.Location()
}

func todayRange() (string, time.Time, time.Time) {
	loc := reportLocation()
	now := time.Now().In(loc)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	return now.Format("2006-01-02"), startOfDay, startOfDay.Add(24 * time.Hour)
}

func checkDatabaseTimezone(db *sql.DB) {
	var timezone string
	if err := db.QueryRow("SELECT @@time_zone").Scan(&timezone); err != nil {
		slog.Error("Failed to get database timezone", "error", err)
		return
	}

	var currentTime time.Time
	if err := db.QueryRow("SELECT NOW()").Scan(&currentTime); err != nil {
		slog.Error("Failed to get database current time", "error", err)
		return
	}

	slog.Info("Database timezone info", "timezone", timezone, "current_time", currentTime.Format("2006-01-02 15:04:05 -0700"))
}
