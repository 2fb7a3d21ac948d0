package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Audit is one recorded prediction.
type Audit struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"request_id,omitempty"`
	Prediction   int       `json:"prediction"`
	Probability  float64   `json:"probability"`
	RiskLevel    string    `json:"risk_level"`
	Language     string    `json:"language,omitempty"`
	ClientType   string    `json:"client_type,omitempty"`
	ProcessingMS int64     `json:"processing_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuditRepository provides access to the prediction audit trail.
type AuditRepository struct {
	db *DB
}

func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Insert stores one audit row, assigning an ID and timestamp when unset.
func (r *AuditRepository) Insert(ctx context.Context, a *Audit) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	stmt, err := r.db.stmt("insert_audit")
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx,
		a.ID, a.RequestID, a.Prediction, a.Probability, a.RiskLevel,
		a.Language, a.ClientType, a.ProcessingMS, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

// Recent returns the latest audits, newest first.
func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]Audit, error) {
	if limit <= 0 {
		limit = 50
	}

	stmt, err := r.db.stmt("recent_audits")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent audits: %w", err)
	}
	defer rows.Close()

	var audits []Audit
	for rows.Next() {
		var a Audit
		if err := rows.Scan(&a.ID, &a.RequestID, &a.Prediction, &a.Probability,
			&a.RiskLevel, &a.Language, &a.ClientType, &a.ProcessingMS, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		audits = append(audits, a)
	}
	return audits, rows.Err()
}

// RiskCounts tallies recorded predictions per risk level.
func (r *AuditRepository) RiskCounts(ctx context.Context) (map[string]int, error) {
	stmt, err := r.db.stmt("risk_counts")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query risk counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("scan risk count: %w", err)
		}
		counts[level] = count
	}
	return counts, rows.Err()
}
