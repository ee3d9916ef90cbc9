package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"retail-chatbot/internal/common/errors"
	"retail-chatbot/internal/common/logger"
)

const defaultTable = "chat_bot_analytics"

// PostgresRecorder persists records to the analytics table.
type PostgresRecorder struct {
	db    *sql.DB
	table string
	log   logger.Logger
}

func NewPostgresRecorder(db *sql.DB, table string, log logger.Logger) *PostgresRecorder {
	if table == "" {
		table = defaultTable
	}
	return &PostgresRecorder{db: db, table: table, log: log}
}

func (r *PostgresRecorder) Track(ctx context.Context, rec Record) error {
	rec = Finalize(rec)

	query := fmt.Sprintf(`INSERT INTO %s
		(user_id, concept, query, intent, success, response_time_ms,
		 prompt_tokens, completion_tokens, total_tokens,
		 model, finish_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`, r.table)

	_, err := r.db.ExecContext(ctx, query,
		rec.UserID, rec.Concept, rec.Query, rec.Intent, rec.Success, rec.ResponseTimeMs,
		rec.PromptTokens, rec.CompletionTokens, rec.TotalTokens,
		rec.Model, rec.FinishReason, rec.Timestamp,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(r.table, err)
	}
	return nil
}

// Summary aggregates usage since the given time.
type Summary struct {
	TotalRequests int64     `json:"totalRequests"`
	TotalTokens   int64     `json:"totalTokens"`
	AvgTokens     float64   `json:"avgTokensPerRequest"`
	PeriodStart   time.Time `json:"periodStart"`
	PeriodEnd     time.Time `json:"periodEnd"`
}

func (r *PostgresRecorder) GetSummary(ctx context.Context, since time.Time) (*Summary, error) {
	query := fmt.Sprintf(`SELECT COUNT(*),
		COALESCE(SUM(total_tokens), 0)
		FROM %s WHERE created_at >= $1`, r.table)

	var s Summary
	row := r.db.QueryRowContext(ctx, query, since)
	if err := row.Scan(&s.TotalRequests, &s.TotalTokens); err != nil {
		return nil, errors.NewSearchQueryFailedError(r.table, err)
	}

	if s.TotalRequests > 0 {
		s.AvgTokens = float64(s.TotalTokens) / float64(s.TotalRequests)
	}
	s.PeriodStart = since
	s.PeriodEnd = time.Now().UTC()
	return &s, nil
}

// ModelUsage is per-model aggregate usage.
type ModelUsage struct {
	Model        string `json:"model"`
	RequestCount int64  `json:"requestCount"`
	TotalTokens  int64  `json:"totalTokens"`
}

func (r *PostgresRecorder) GetUsageByModel(ctx context.Context, since time.Time) ([]ModelUsage, error) {
	query := fmt.Sprintf(`SELECT model, COUNT(*),
		COALESCE(SUM(total_tokens), 0)
		FROM %s WHERE created_at >= $1 AND model IS NOT NULL
		GROUP BY model ORDER BY COUNT(*) DESC`, r.table)

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(r.table, err)
	}
	defer rows.Close()

	var out []ModelUsage
	for rows.Next() {
		var m ModelUsage
		if err := rows.Scan(&m.Model, &m.RequestCount, &m.TotalTokens); err != nil {
			return nil, errors.NewSearchQueryFailedError(r.table, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
