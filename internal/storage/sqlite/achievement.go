package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sidequests/questd/internal/model"
)

// GetUserStats returns a user's achievement counters, zero-valued if the
// user has no recorded activity.
func (r *Repository) GetUserStats(ctx context.Context, user string) (model.UserStats, error) {
	query := `
		SELECT tasks_completed, tokens_earned, tasks_created, current_streak, max_streak, last_completion_day
		FROM user_stats
		WHERE user = ?
	`
	stats := model.UserStats{User: user}
	err := r.q.QueryRowContext(ctx, query, user).Scan(
		&stats.TasksCompleted,
		&stats.TokensEarned,
		&stats.TasksCreated,
		&stats.CurrentStreak,
		&stats.MaxStreak,
		&stats.LastCompletionDay,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.UserStats{User: user}, nil
		}
		return model.UserStats{}, fmt.Errorf("could not query user stats: %w", err)
	}

	return stats, nil
}

// UpsertUserStats stores a user's achievement counters.
func (r *Repository) UpsertUserStats(ctx context.Context, s model.UserStats) error {
	query := `
		INSERT INTO user_stats (user, tasks_completed, tokens_earned, tasks_created, current_streak, max_streak, last_completion_day)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user) DO UPDATE SET
			tasks_completed = excluded.tasks_completed,
			tokens_earned = excluded.tokens_earned,
			tasks_created = excluded.tasks_created,
			current_streak = excluded.current_streak,
			max_streak = excluded.max_streak,
			last_completion_day = excluded.last_completion_day
	`
	_, err := r.q.ExecContext(ctx, query,
		s.User, s.TasksCompleted, s.TokensEarned, s.TasksCreated, s.CurrentStreak, s.MaxStreak, s.LastCompletionDay)
	if err != nil {
		return fmt.Errorf("could not upsert user stats: %w", err)
	}

	return nil
}

// HasAward reports whether the user already holds the given achievement.
func (r *Repository) HasAward(ctx context.Context, user string, t model.AchievementType) (bool, error) {
	var one int
	err := r.q.QueryRowContext(ctx,
		`SELECT 1 FROM awards WHERE user = ? AND achievement_type = ?`, user, t).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("could not query award: %w", err)
	}
	return true, nil
}

// CreateAward records a one-time achievement award. Fails if the user
// already holds it.
func (r *Repository) CreateAward(ctx context.Context, a model.Award) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO awards (user, achievement_type, minted_at) VALUES (?, ?, ?)`,
		a.User, a.Type, a.MintedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("award %d for %s: %w", a.Type, a.User, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert award: %w", err)
	}

	r.logger.Debugf("Recorded award %d for %s", a.Type, a.User)
	return nil
}

// ListAwards returns the achievements held by a user, ordered by type.
func (r *Repository) ListAwards(ctx context.Context, user string) ([]model.Award, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT user, achievement_type, minted_at FROM awards WHERE user = ? ORDER BY achievement_type ASC`, user)
	if err != nil {
		return nil, fmt.Errorf("could not query awards: %w", err)
	}
	defer rows.Close()

	var awards []model.Award
	for rows.Next() {
		var a model.Award
		if err := rows.Scan(&a.User, &a.Type, &a.MintedAt); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		awards = append(awards, a)
	}

	return awards, rows.Err()
}
