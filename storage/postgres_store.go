package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore implements Store on PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection, waits for the database to come up,
// runs schema migrations and returns a ready-to-use store.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS usage_total (
			device_id   TEXT PRIMARY KEY,
			total_count INTEGER NOT NULL DEFAULT 0,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS usage_daily (
			device_id TEXT NOT NULL,
			day       TEXT NOT NULL,
			count     INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (device_id, day)
		);

		CREATE TABLE IF NOT EXISTS device_email (
			device_id  TEXT PRIMARY KEY,
			email      TEXT NOT NULL,
			verified   BOOLEAN NOT NULL DEFAULT TRUE,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS licenses (
			license_key TEXT PRIMARY KEY,
			email       TEXT NOT NULL,
			plan        TEXT NOT NULL DEFAULT 'paid',
			device_id   TEXT,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			bound_at    TIMESTAMPTZ
		);

		CREATE INDEX IF NOT EXISTS idx_licenses_device ON licenses(device_id);
	`)
	return err
}

// TotalCount returns the lifetime analysis count for a device.
func (ps *PostgresStore) TotalCount(deviceID string) (int, error) {
	var n int
	err := ps.db.QueryRow(
		`SELECT total_count FROM usage_total WHERE device_id = $1`, deviceID,
	).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("postgres: total count: %w", err)
	}
	return n, nil
}

// DailyCount returns the analysis count for a device on the given UTC day.
func (ps *PostgresStore) DailyCount(deviceID, day string) (int, error) {
	var n int
	err := ps.db.QueryRow(
		`SELECT count FROM usage_daily WHERE device_id = $1 AND day = $2`, deviceID, day,
	).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("postgres: daily count: %w", err)
	}
	return n, nil
}

// IncrTotal adds amount to the device's lifetime counter.
func (ps *PostgresStore) IncrTotal(deviceID string, amount int) error {
	_, err := ps.db.Exec(`
		INSERT INTO usage_total (device_id, total_count)
		VALUES ($1, $2)
		ON CONFLICT (device_id) DO UPDATE SET total_count = usage_total.total_count + $2
	`, deviceID, amount)
	if err != nil {
		return fmt.Errorf("postgres: incr total: %w", err)
	}
	return nil
}

// IncrDaily adds amount to the device's counter for the given UTC day.
func (ps *PostgresStore) IncrDaily(deviceID string, amount int, day string) error {
	_, err := ps.db.Exec(`
		INSERT INTO usage_daily (device_id, day, count)
		VALUES ($1, $2, $3)
		ON CONFLICT (device_id, day) DO UPDATE SET count = usage_daily.count + $3
	`, deviceID, day, amount)
	if err != nil {
		return fmt.Errorf("postgres: incr daily: %w", err)
	}
	return nil
}

// EmailForDevice returns the registered email for a device, "" when none.
func (ps *PostgresStore) EmailForDevice(deviceID string) (string, error) {
	var email string
	err := ps.db.QueryRow(
		`SELECT email FROM device_email WHERE device_id = $1`, deviceID,
	).Scan(&email)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("postgres: email for device: %w", err)
	}
	return email, nil
}

// SetDeviceEmail registers (or replaces) the email bound to a device.
func (ps *PostgresStore) SetDeviceEmail(deviceID, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := ps.db.Exec(`
		INSERT INTO device_email (device_id, email, verified, updated_at)
		VALUES ($1, $2, TRUE, NOW())
		ON CONFLICT (device_id) DO UPDATE SET
			email = EXCLUDED.email,
			verified = TRUE,
			updated_at = EXCLUDED.updated_at
	`, deviceID, email)
	if err != nil {
		return fmt.Errorf("postgres: set device email: %w", err)
	}
	return nil
}

// CreateLicense stores a freshly issued, unbound license key.
func (ps *PostgresStore) CreateLicense(key, email, plan string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := ps.db.Exec(`
		INSERT INTO licenses (license_key, email, plan, device_id, bound_at)
		VALUES ($1, $2, $3, NULL, NULL)
	`, key, email, plan)
	if err != nil {
		return fmt.Errorf("postgres: create license: %w", err)
	}
	return nil
}

// BindLicense binds key to deviceID, enforcing one device per key.
func (ps *PostgresStore) BindLicense(key, deviceID string) (bool, string, error) {
	key = strings.ToUpper(strings.TrimSpace(key))

	var bound sql.NullString
	err := ps.db.QueryRow(
		`SELECT device_id FROM licenses WHERE license_key = $1`, key,
	).Scan(&bound)
	if err == sql.ErrNoRows {
		return false, "LICENSE_NOT_FOUND", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("postgres: lookup license: %w", err)
	}

	if bound.Valid && bound.String != "" {
		if bound.String == deviceID {
			return true, "ALREADY_BOUND", nil
		}
		return false, "LICENSE_ALREADY_BOUND_TO_ANOTHER_DEVICE", nil
	}

	_, err = ps.db.Exec(
		`UPDATE licenses SET device_id = $1, bound_at = NOW() WHERE license_key = $2`,
		deviceID, key,
	)
	if err != nil {
		return false, "", fmt.Errorf("postgres: bind license: %w", err)
	}
	return true, "BOUND_OK", nil
}

// IsDevicePaid reports whether any paid license is bound to the device.
func (ps *PostgresStore) IsDevicePaid(deviceID string) (bool, error) {
	var one int
	err := ps.db.QueryRow(
		`SELECT 1 FROM licenses WHERE device_id = $1 AND plan = 'paid' LIMIT 1`, deviceID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("postgres: is device paid: %w", err)
	}
	return true, nil
}

// Close closes the underlying connection pool.
func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
