package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sidequests/questd/internal/model"
	"github.com/sidequests/questd/internal/storage"
)

const taskColumns = `id, creator, worker, metadata_uri, status, created_at, claimed_at, completed_at, verified_at`

// CreateTask stores a new task and returns its assigned id.
func (r *Repository) CreateTask(ctx context.Context, t model.Task) (uint64, error) {
	var id uint64
	err := r.Atomic(ctx, func(ctx context.Context, ar storage.Repository) error {
		tr := ar.(*Repository)

		// Allocate the next task id from the monotonic counter. The counter
		// is never decremented, so ids are not reused after deletes.
		if _, err := tr.q.ExecContext(ctx, `UPDATE counters SET value = value + 1 WHERE name = 'task_id'`); err != nil {
			return fmt.Errorf("could not advance task counter: %w", err)
		}
		if err := tr.q.QueryRowContext(ctx, `SELECT value FROM counters WHERE name = 'task_id'`).Scan(&id); err != nil {
			return fmt.Errorf("could not read task counter: %w", err)
		}

		query := `
			INSERT INTO tasks (id, creator, worker, metadata_uri, status, created_at, claimed_at, completed_at, verified_at)
			VALUES (?, ?, ?, ?, ?, ?, NULL, NULL, NULL)
		`
		_, err := tr.q.ExecContext(ctx, query, id, t.Creator, t.Worker, t.MetadataURI, t.Status, t.CreatedAt.Unix())
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return fmt.Errorf("task %d: %w", id, model.ErrAlreadyExists)
			}
			return fmt.Errorf("could not insert task: %w", err)
		}

		for seq, e := range t.Reward {
			_, err := tr.q.ExecContext(ctx,
				`INSERT INTO task_rewards (task_id, seq, asset_id, amount) VALUES (?, ?, ?, ?)`,
				id, seq, e.AssetID, e.Amount)
			if err != nil {
				return fmt.Errorf("could not insert task reward: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Debugf("Created task in repository: %d", id)
	return id, nil
}

// GetTask retrieves a task by id, including its reward spec.
func (r *Repository) GetTask(ctx context.Context, id uint64) (*model.Task, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := r.scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query task: %w", err)
	}

	if err := r.loadRewards(ctx, &task); err != nil {
		return nil, err
	}

	return &task, nil
}

// UpdateTask updates an existing task's mutable fields (worker, status,
// timestamps). The reward spec is immutable after creation.
func (r *Repository) UpdateTask(ctx context.Context, t model.Task) error {
	query := `
		UPDATE tasks
		SET worker = ?, status = ?, claimed_at = ?, completed_at = ?, verified_at = ?
		WHERE id = ?
	`
	result, err := r.q.ExecContext(ctx, query,
		t.Worker, t.Status, unixOrNil(t.ClaimedAt), unixOrNil(t.CompletedAt), unixOrNil(t.VerifiedAt), t.ID)
	if err != nil {
		return fmt.Errorf("could not update task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("task %d: %w", t.ID, model.ErrNotFound)
	}

	r.logger.Debugf("Updated task in repository: %d", t.ID)
	return nil
}

// DeleteTask deletes a task. The id counter is untouched, so the id is never
// reassigned.
func (r *Repository) DeleteTask(ctx context.Context, id uint64) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("task %d: %w", id, model.ErrNotFound)
	}

	r.logger.Debugf("Deleted task from repository: %d", id)
	return nil
}

// ListTasks returns tasks matching the filter, ordered by id.
func (r *Repository) ListTasks(ctx context.Context, f storage.TaskFilter) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var conds []string
	var args []any

	if f.Creator != "" {
		conds = append(conds, "creator = ?")
		args = append(args, f.Creator)
	}
	if f.Worker != "" {
		conds = append(conds, "worker = ?")
		args = append(args, f.Worker)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.OpenOnly {
		conds = append(conds, "status IN (?, ?)")
		args = append(args, model.TaskStatusCreated, model.TaskStatusInProgress)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id ASC"

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := r.scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	for i := range tasks {
		if err := r.loadRewards(ctx, &tasks[i]); err != nil {
			return nil, err
		}
	}

	return tasks, nil
}

// TaskCount returns the total number of tasks ever created.
func (r *Repository) TaskCount(ctx context.Context) (uint64, error) {
	var count uint64
	err := r.q.QueryRowContext(ctx, `SELECT value FROM counters WHERE name = 'task_id'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("could not read task counter: %w", err)
	}
	return count, nil
}

func (r *Repository) loadRewards(ctx context.Context, t *model.Task) error {
	rows, err := r.q.QueryContext(ctx,
		`SELECT asset_id, amount FROM task_rewards WHERE task_id = ? ORDER BY seq ASC`, t.ID)
	if err != nil {
		return fmt.Errorf("could not query task rewards: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e model.RewardEntry
		if err := rows.Scan(&e.AssetID, &e.Amount); err != nil {
			return fmt.Errorf("could not scan reward row: %w", err)
		}
		t.Reward = append(t.Reward, e)
	}

	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanTask(s scanner) (model.Task, error) {
	var task model.Task
	var createdAt int64
	var claimedAt, completedAt, verifiedAt sql.NullInt64

	err := s.Scan(
		&task.ID,
		&task.Creator,
		&task.Worker,
		&task.MetadataURI,
		&task.Status,
		&createdAt,
		&claimedAt,
		&completedAt,
		&verifiedAt,
	)
	if err != nil {
		return model.Task{}, err
	}

	task.CreatedAt = timeFromUnix(createdAt)
	task.ClaimedAt = timePtrFromUnix(claimedAt)
	task.CompletedAt = timePtrFromUnix(completedAt)
	task.VerifiedAt = timePtrFromUnix(verifiedAt)

	return task, nil
}

func unixOrNil(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	u := t.Unix()
	return &u
}

func timeFromUnix(unix int64) time.Time { return time.Unix(unix, 0).UTC() }

func timePtrFromUnix(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := timeFromUnix(v.Int64)
	return &t
}
