package journal

import (
	"context"
	"database/sql"
	"fmt"
)

// List returns events in execution order. limit <= 0 means no limit.
// Returns an empty slice, not nil, when the journal has no events.
func (j *Journal) List(ctx context.Context, limit int) ([]Event, error) {
	query := `
		SELECT seq, session, op, value, arg, status, depth, capacity
		FROM events
		ORDER BY seq ASC
	`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = j.db.QueryContext(ctx, query+" LIMIT ?", limit)
	} else {
		rows, err = j.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// LastSeq returns the highest assigned sequence number, or 0 for an
// empty journal. The recorder seeds its counter from this so sequence
// numbers keep increasing across daemon restarts.
func (j *Journal) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	err := j.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM events`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	if !seq.Valid {
		return 0, nil
	}
	return seq.Int64, nil
}

func scanEvent(rows *sql.Rows) (Event, error) {
	var e Event
	var op string
	var value, arg sql.NullInt64
	if err := rows.Scan(&e.Seq, &e.Session, &op, &value, &arg, &e.Status, &e.Depth, &e.Capacity); err != nil {
		return Event{}, fmt.Errorf("scan event: %w", err)
	}
	e.Op = Op(op)
	if value.Valid {
		v := int32(value.Int64)
		e.Value = &v
	}
	if arg.Valid {
		a := int(arg.Int64)
		e.Arg = &a
	}
	return e, nil
}
