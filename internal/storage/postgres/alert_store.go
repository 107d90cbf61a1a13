package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"lp-radar/internal/domain"
	"lp-radar/internal/observability"
	"lp-radar/internal/storage"
)

// AlertStore implements storage.AlertStore using PostgreSQL.
type AlertStore struct {
	pool *Pool
}

// NewAlertStore creates a new AlertStore.
func NewAlertStore(pool *Pool) *AlertStore {
	return &AlertStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AlertStore = (*AlertStore)(nil)

const alertColumns = `
	alert_id, event_id, pool, pair, kind, magnitude,
	passed, dispatched, quota_exhausted, priority, reason, created_at
`

// Insert adds a new alert. Returns ErrDuplicateKey if alert_id exists.
func (s *AlertStore) Insert(ctx context.Context, a *domain.Alert) error {
	if a == nil || a.AlertID == "" || a.EventID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO alerts (` + alertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	start := time.Now()
	_, err := s.pool.Exec(ctx, query,
		a.AlertID,
		a.EventID,
		a.Pool,
		a.Pair,
		a.Kind,
		a.Magnitude,
		a.Passed,
		a.Dispatched,
		a.QuotaExhausted,
		a.Priority,
		a.Reason,
		a.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			// Replay duplicates are an expected outcome, not a query error.
			observability.RecordDBQuery("postgres", "insert_alert", time.Since(start).Seconds(), nil)
			return storage.ErrDuplicateKey
		}
		observability.RecordDBQuery("postgres", "insert_alert", time.Since(start).Seconds(), err)
		return fmt.Errorf("insert alert: %w", err)
	}
	observability.RecordDBQuery("postgres", "insert_alert", time.Since(start).Seconds(), nil)
	return nil
}

// GetByID retrieves an alert by its ID. Returns ErrNotFound if not exists.
func (s *AlertStore) GetByID(ctx context.Context, alertID string) (*domain.Alert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE alert_id = $1
	`

	row := s.pool.QueryRow(ctx, query, alertID)
	a, err := scanAlert(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get alert by id: %w", err)
	}
	return a, nil
}

// GetByPool retrieves all alerts for a pool, ordered by created_at ASC.
func (s *AlertStore) GetByPool(ctx context.Context, pool string) ([]*domain.Alert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE pool = $1
		ORDER BY created_at ASC, alert_id ASC
	`

	rows, err := s.pool.Query(ctx, query, pool)
	if err != nil {
		return nil, fmt.Errorf("get alerts by pool: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// GetByTimeRange retrieves alerts created within [start, end] (inclusive).
func (s *AlertStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.Alert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at ASC, alert_id ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get alerts by time range: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

func scanAlert(row pgx.Row) (*domain.Alert, error) {
	var a domain.Alert
	err := row.Scan(
		&a.AlertID,
		&a.EventID,
		&a.Pool,
		&a.Pair,
		&a.Kind,
		&a.Magnitude,
		&a.Passed,
		&a.Dispatched,
		&a.QuotaExhausted,
		&a.Priority,
		&a.Reason,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// scanAlerts scans multiple rows into a slice of Alert.
func scanAlerts(rows pgx.Rows) ([]*domain.Alert, error) {
	var alerts []*domain.Alert

	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}
		alerts = append(alerts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alert rows: %w", err)
	}

	return alerts, nil
}
