package journal

import (
	"context"
	"database/sql"
	"fmt"
)

// Append inserts one event. Duplicate sequence numbers are rejected by
// the primary key rather than silently ignored: the recorder is the
// only writer, so a collision means two recorders share one journal,
// which is a deployment error worth surfacing.
func (j *Journal) Append(ctx context.Context, e Event) error {
	var value, arg sql.NullInt64
	if e.Value != nil {
		value = sql.NullInt64{Int64: int64(*e.Value), Valid: true}
	}
	if e.Arg != nil {
		arg = sql.NullInt64{Int64: int64(*e.Arg), Valid: true}
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO events (seq, session, op, value, arg, status, depth, capacity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.Seq,
		e.Session,
		string(e.Op),
		value,
		arg,
		e.Status,
		e.Depth,
		e.Capacity,
	)
	if err != nil {
		return fmt.Errorf("append event %d: %w", e.Seq, err)
	}
	return nil
}
