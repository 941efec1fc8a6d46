package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"react2give/pkg/config"

	"github.com/go-sql-driver/mysql"
)

const timeZoneOffset = "+05:30"

// Location is the zone the session time_zone is pinned to. The driver must
// read and write times in the same zone.
func Location() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.FixedZone("Asia/Kolkata", 5*60*60+30*60)
	}
	return loc
}

func DSN(cfg config.Database) string {
	c := mysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = cfg.Host + ":" + cfg.Port
	c.DBName = cfg.Name
	c.ParseTime = true
	c.Loc = Location()
	c.Params = map[string]string{"time_zone": "'" + timeZoneOffset + "'"}
	return c.FormatDSN()
}

func Open(cfg config.Database) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

var tables = []string{"sms_outcomes", "sms_dispatches", "donations", "payment_orders", "organizations", "users"}

func CreateTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(128) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			date_of_birth VARCHAR(10),
			mobile_number VARCHAR(20),
			gender VARCHAR(20),
			age_group VARCHAR(20),
			marital_status VARCHAR(20),
			address VARCHAR(512),
			profile_image_url VARCHAR(1024),
			role VARCHAR(20) NOT NULL DEFAULT 'donor',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS organizations (
			id VARCHAR(36) PRIMARY KEY,
			organization_name VARCHAR(255) NOT NULL,
			contact_person VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			phone_number VARCHAR(10) NOT NULL,
			website VARCHAR(1024),
			address VARCHAR(512),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS payment_orders (
			idempotency_key VARCHAR(255) PRIMARY KEY,
			gateway_order_id VARCHAR(64) NOT NULL,
			amount BIGINT NOT NULL,
			currency VARCHAR(3) NOT NULL,
			payload JSON NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			KEY idx_gateway_order (gateway_order_id)
		)`,
		`CREATE TABLE IF NOT EXISTS donations (
			id VARCHAR(36) PRIMARY KEY,
			payment_id VARCHAR(64) NOT NULL,
			order_id VARCHAR(64) NOT NULL,
			user_id VARCHAR(128),
			donor_name VARCHAR(255) NOT NULL,
			amount BIGINT NOT NULL,
			currency VARCHAR(3) NOT NULL,
			payment_mode VARCHAR(32),
			donated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY unique_payment (payment_id)
		)`,
		`CREATE TABLE IF NOT EXISTS sms_dispatches (
			id VARCHAR(36) PRIMARY KEY,
			correlation_id VARCHAR(64) NOT NULL,
			attempted INT NOT NULL,
			skipped INT NOT NULL,
			succeeded INT NOT NULL,
			failed INT NOT NULL,
			status VARCHAR(20) NOT NULL,
			error VARCHAR(255),
			dispatched_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS sms_outcomes (
			id INT AUTO_INCREMENT PRIMARY KEY,
			dispatch_id VARCHAR(36) NOT NULL,
			contact_row INT NOT NULL,
			name VARCHAR(255),
			phone_number VARCHAR(32),
			status VARCHAR(20) NOT NULL,
			message_sid VARCHAR(64),
			error VARCHAR(512),
			KEY idx_dispatch (dispatch_id)
		)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

func ResetTables(db *sql.DB) error {
	for _, table := range tables {
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", table)
		if _, err := db.Exec(query); err != nil {
			slog.Error("Failed to drop table", "table", table, "error", err)
		} else {
			slog.Info("Table dropped", "table", table)
		}
	}

	if err := CreateTables(db); err != nil {
		return fmt.Errorf("failed to recreate tables: %w", err)
	}

	slog.Info("All tables dropped and recreated successfully")
	return nil
}
