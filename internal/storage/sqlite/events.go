package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sidequests/questd/internal/model"
)

// AppendEvent appends a committed event to the log. The sequence number is
// assigned by the database.
func (r *Repository) AppendEvent(ctx context.Context, e model.Event) error {
	query := `
		INSERT INTO events (id, type, at, task_id, user, metadata, achievement_type, asset_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.q.ExecContext(ctx, query,
		e.ID, e.Type, e.At.UnixNano(), e.TaskID, e.User, e.Metadata, e.AchievementType, e.AssetID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("event %s: %w", e.ID, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert event: %w", err)
	}

	return nil
}

// ListEventsAfter returns up to limit events with a sequence number greater
// than seq, in sequence order.
func (r *Repository) ListEventsAfter(ctx context.Context, seq uint64, limit int) ([]model.Event, error) {
	query := `
		SELECT seq, id, type, at, task_id, user, metadata, achievement_type, asset_id
		FROM events
		WHERE seq > ?
		ORDER BY seq ASC
		LIMIT ?
	`
	rows, err := r.q.QueryContext(ctx, query, seq, limit)
	if err != nil {
		return nil, fmt.Errorf("could not query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		var at int64
		err := rows.Scan(&e.Seq, &e.ID, &e.Type, &at, &e.TaskID, &e.User, &e.Metadata, &e.AchievementType, &e.AssetID)
		if err != nil {
			return nil, fmt.Errorf("could not scan event row: %w", err)
		}
		e.At = time.Unix(0, at).UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return events, nil
}

// LatestEventSeq returns the sequence number of the newest event, zero when
// the log is empty.
func (r *Repository) LatestEventSeq(ctx context.Context) (uint64, error) {
	var seq uint64
	err := r.q.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM events`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("could not read event sequence: %w", err)
	}
	return seq, nil
}
