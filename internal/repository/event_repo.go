package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"microwave/internal/models"

	"github.com/google/uuid"
)

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

const (
	insertEventSQL = `INSERT INTO oven_events (id, occurred_at, type, message, operator_id, operator, meta) VALUES (?, ?, ?, ?, ?, ?, ?)`
	selectEventSQL = `SELECT id, occurred_at, type, message, operator_id, operator, meta FROM oven_events`
)

// Append inserts a new event, filling EventID and OccurredAt when empty.
func (r *EventSQLite) Append(ctx context.Context, e models.OvenEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	var meta sql.NullString
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			meta = sql.NullString{String: string(b), Valid: true}
		}
	}

	// timer events have no operator and are stored with NULLs
	var (
		operatorID sql.NullInt64
		operator   sql.NullString
	)
	if e.OperatorID != 0 {
		operatorID = sql.NullInt64{Int64: int64(e.OperatorID), Valid: true}
		operator = sql.NullString{String: e.Operator, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		e.OccurredAt.UTC(),
		strings.ToUpper(strings.TrimSpace(e.Type)),
		e.Description,
		operatorID,
		operator,
		meta,
	)
	if err != nil {
		return fmt.Errorf("append oven event %s: %w", e.Type, err)
	}
	return nil
}

// List returns events within [From, To] (zero bounds are open), of the given
// type and pressed by the given operator (empty means any), oldest first.
func (r *EventSQLite) List(ctx context.Context, q EventQuery) ([]models.OvenEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !q.From.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, q.From.UTC())
	}
	if !q.To.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, q.To.UTC())
	}
	if typ := strings.ToUpper(strings.TrimSpace(q.Type)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}
	if op := strings.ToLower(strings.TrimSpace(q.Operator)); op != "" {
		conds = append(conds, "operator = ?")
		args = append(args, op)
	}

	query := selectEventSQL
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list oven events: %w", err)
	}
	defer rows.Close()

	out := make([]models.OvenEvent, 0, 64)
	for rows.Next() {
		var (
			ev         models.OvenEvent
			operatorID sql.NullInt64
			operator   sql.NullString
			meta       sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.Type, &ev.Description, &operatorID, &operator, &meta); err != nil {
			return nil, fmt.Errorf("scan oven event: %w", err)
		}
		ev.OccurredAt = ev.OccurredAt.UTC()
		ev.OperatorID = int(operatorID.Int64)
		ev.Operator = operator.String
		ev.Metadata = decodeMeta(meta)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeMeta parses stored JSON metadata, keeping the raw text if malformed.
func decodeMeta(meta sql.NullString) any {
	if !meta.Valid || meta.String == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(meta.String), &v); err != nil {
		return meta.String
	}
	return v
}
