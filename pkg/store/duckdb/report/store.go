package report

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/civic-tools/civiceye/pkg/models/store"
	"github.com/civic-tools/civiceye/pkg/store/duckdb"
)

// PersistenceError marks a failed durable write or read: the store is
// unavailable or the engine rejected the statement (e.g. a colliding id).
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("report store: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Store is the durable, append-only collection of reports.
type Store interface {
	Add(ctx context.Context, record store.Report) error
	ListByPriority(ctx context.Context) ([]store.Report, error)
	Get(ctx context.Context, id string) (*store.Report, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type reportStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &reportStore{db: db}, nil
}

func (s *reportStore) Add(ctx context.Context, record store.Report) error {
	tx := duckdb.GetTransaction(ctx)
	query := `
		INSERT INTO reports (
			id, category, severity, urgency_score, description,
			location, status, created_at, image_path
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?
		)`

	var stmt *sql.Stmt
	var err error
	if tx == nil {
		stmt, err = s.db.PrepareContext(ctx, query)
	} else {
		stmt, err = tx.PrepareContext(ctx, query)
	}

	if err != nil {
		return &PersistenceError{Op: "prepare insert", Err: err}
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		record.ID,
		record.Category,
		record.Severity,
		record.UrgencyScore,
		record.Description,
		record.Location,
		record.Status,
		record.CreatedAt,
		record.ImagePath,
	)
	if err != nil {
		return &PersistenceError{Op: "insert report", Err: err}
	}

	return nil
}

// ListByPriority returns every report, most urgent first; ties break on the
// most recent creation time. The result is fully materialized.
func (s *reportStore) ListByPriority(ctx context.Context) ([]store.Report, error) {
	query := `
		SELECT id, category, severity, urgency_score, description,
		       location, status, created_at, image_path
		FROM reports
		ORDER BY urgency_score DESC, created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &PersistenceError{Op: "list reports", Err: err}
	}
	defer rows.Close()
	return scanReportRows(rows)
}

func (s *reportStore) Get(ctx context.Context, id string) (*store.Report, error) {
	query := `
		SELECT id, category, severity, urgency_score, description,
		       location, status, created_at, image_path
		FROM reports
		WHERE id = ?
	`
	row := s.db.QueryRowContext(ctx, query, id)
	record, err := scanReportRow(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, &PersistenceError{Op: "get report", Err: err}
	}
	return &record, nil
}

func (s *reportStore) CountByStatus(ctx context.Context) (map[string]int64, error) {
	query := `SELECT status, COUNT(*) FROM reports GROUP BY status`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &PersistenceError{Op: "count reports", Err: err}
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, &PersistenceError{Op: "scan count", Err: err}
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "count reports", Err: err}
	}
	return counts, nil
}

func scanReportRows(rows *sql.Rows) ([]store.Report, error) {
	records := make([]store.Report, 0)
	for rows.Next() {
		record, err := scanReportRow(rows.Scan)
		if err != nil {
			return nil, &PersistenceError{Op: "scan report", Err: err}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list reports", Err: err}
	}
	return records, nil
}

func scanReportRow(scan func(...any) error) (store.Report, error) {
	var (
		r           store.Report
		description sql.NullString
		imagePath   sql.NullString
	)
	err := scan(
		&r.ID, &r.Category, &r.Severity, &r.UrgencyScore, &description,
		&r.Location, &r.Status, &r.CreatedAt, &imagePath,
	)
	if err != nil {
		return store.Report{}, err
	}
	r.Description = description.String
	r.ImagePath = imagePath.String
	return r, nil
}
