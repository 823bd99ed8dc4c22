package achievement

import (
	"context"
	"fmt"
	"time"

	"github.com/sidequests/questd/internal/access"
	"github.com/sidequests/questd/internal/ledger"
	"github.com/sidequests/questd/internal/log"
	"github.com/sidequests/questd/internal/model"
	"github.com/sidequests/questd/internal/storage"
)

// secondsPerDay buckets completion timestamps into UTC days for streaks.
const secondsPerDay = 86400

// EngineConfig is the configuration of the achievement engine.
type EngineConfig struct {
	// Repository is the storage the engine reads and writes stats and awards on.
	Repository storage.Repository
	// Identity is the principal badges are minted as. It must hold the
	// minter capability.
	Identity string
	Logger   log.Logger
}

func (c *EngineConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Identity == "" {
		return fmt.Errorf("identity is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"srv": "achievement.Engine"})

	return nil
}

// Engine tracks per-user counters and streaks and mints milestone badges
// when thresholds are crossed. Every badge type is minted at most once per
// user.
type Engine struct {
	repo     storage.Repository
	identity string
	logger   log.Logger
}

// NewEngine returns a new achievement engine.
func NewEngine(config EngineConfig) (*Engine, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Engine{
		repo:     config.Repository,
		identity: config.Identity,
		logger:   config.Logger,
	}, nil
}

// RecordTaskCompletion updates the completion, earnings and streak counters
// of a user and mints every milestone badge crossed by the update.
// rewardTokens is the fungible amount earned by the completion. Returned
// badges are the ones minted by this call.
func (e *Engine) RecordTaskCompletion(ctx context.Context, user string, rewardTokens uint64, now time.Time) ([]model.BadgeMeta, error) {
	if user == "" {
		return nil, fmt.Errorf("user is required: %w", model.ErrNotValid)
	}

	var minted []model.BadgeMeta
	err := e.repo.Atomic(ctx, func(ctx context.Context, r storage.Repository) error {
		stats, err := r.GetUserStats(ctx, user)
		if err != nil {
			return fmt.Errorf("could not get user stats: %w", err)
		}

		stats.TasksCompleted++
		stats.TokensEarned += rewardTokens

		day := uint64(now.UTC().Unix() / secondsPerDay)
		switch {
		case stats.CurrentStreak == 0:
			stats.CurrentStreak = 1
		case day == stats.LastCompletionDay:
			// Same day, streak unchanged.
		case day == stats.LastCompletionDay+1:
			stats.CurrentStreak++
		default:
			stats.CurrentStreak = 1
		}
		stats.LastCompletionDay = day
		if stats.CurrentStreak > stats.MaxStreak {
			stats.MaxStreak = stats.CurrentStreak
		}

		err = r.UpsertUserStats(ctx, stats)
		if err != nil {
			return fmt.Errorf("could not store user stats: %w", err)
		}

		minted, err = e.evaluate(ctx, r, stats)
		return err
	})
	if err != nil {
		return nil, err
	}

	return minted, nil
}

// RecordTaskCreation updates the creation counter of a user and mints any
// crossed creation milestone badge.
func (e *Engine) RecordTaskCreation(ctx context.Context, user string) ([]model.BadgeMeta, error) {
	if user == "" {
		return nil, fmt.Errorf("user is required: %w", model.ErrNotValid)
	}

	var minted []model.BadgeMeta
	err := e.repo.Atomic(ctx, func(ctx context.Context, r storage.Repository) error {
		stats, err := r.GetUserStats(ctx, user)
		if err != nil {
			return fmt.Errorf("could not get user stats: %w", err)
		}

		stats.TasksCreated++
		err = r.UpsertUserStats(ctx, stats)
		if err != nil {
			return fmt.Errorf("could not store user stats: %w", err)
		}

		minted, err = e.evaluate(ctx, r, stats)
		return err
	})
	if err != nil {
		return nil, err
	}

	return minted, nil
}

// evaluate mints every threshold badge the user's counters have reached and
// does not already hold. Runs inside the caller's transaction.
func (e *Engine) evaluate(ctx context.Context, r storage.Repository, stats model.UserStats) ([]model.BadgeMeta, error) {
	var minted []model.BadgeMeta
	for _, rule := range thresholds {
		if counterValue(stats, rule.counter) < rule.value {
			continue
		}

		meta, err := e.mintOnce(ctx, r, stats.User, rule.badge, time.Now())
		if err != nil {
			return nil, err
		}
		if meta != nil {
			minted = append(minted, *meta)
		}
	}

	return minted, nil
}

// mintOnce mints a badge to a user unless it already holds it. Returns nil
// metadata when the badge was already held.
func (e *Engine) mintOnce(ctx context.Context, r storage.Repository, user string, t model.AchievementType, now time.Time) (*model.BadgeMeta, error) {
	has, err := r.HasAward(ctx, user, t)
	if err != nil {
		return nil, fmt.Errorf("could not check award: %w", err)
	}
	if has {
		return nil, nil
	}

	meta, ok := Meta(t)
	if !ok {
		return nil, fmt.Errorf("unknown achievement type %d: %w", t, model.ErrNotValid)
	}

	// The ledger service bound to the transactional view enforces the
	// minter capability and the pause switch on badge mints too.
	led, err := ledger.NewService(ledger.ServiceConfig{Repository: r, Logger: e.logger})
	if err != nil {
		return nil, err
	}

	err = led.Mint(ctx, e.identity, user, model.BadgeAssetID(t), 1)
	if err != nil {
		return nil, fmt.Errorf("could not mint badge: %w", err)
	}

	err = r.CreateAward(ctx, model.Award{User: user, Type: t, MintedAt: now.Unix()})
	if err != nil {
		return nil, fmt.Errorf("could not store award: %w", err)
	}

	e.logger.WithCtxValues(ctx).WithValues(log.Kv{"user": user, "badge": meta.Title}).Infof("badge minted")

	return &meta, nil
}

// Award mints a manual badge to a user. Only admins can award, and only the
// badge types outside the automatic threshold rules can be awarded this way.
func (e *Engine) Award(ctx context.Context, caller, user string, t model.AchievementType, now time.Time) (model.BadgeMeta, error) {
	if user == "" {
		return model.BadgeMeta{}, fmt.Errorf("user is required: %w", model.ErrNotValid)
	}

	if !IsManual(t) {
		return model.BadgeMeta{}, fmt.Errorf("achievement type %d is not awardable manually: %w", t, model.ErrNotValid)
	}

	var meta *model.BadgeMeta
	err := e.repo.Atomic(ctx, func(ctx context.Context, r storage.Repository) error {
		err := access.Require(ctx, r, caller, model.CapabilityAdmin)
		if err != nil {
			return err
		}

		meta, err = e.mintOnce(ctx, r, user, t, now)
		if err != nil {
			return err
		}
		if meta == nil {
			return fmt.Errorf("user already holds badge %d: %w", t, model.ErrAlreadyExists)
		}

		return nil
	})
	if err != nil {
		return model.BadgeMeta{}, err
	}

	return *meta, nil
}

// Stats returns the counters of a user, zero valued when unknown.
func (e *Engine) Stats(ctx context.Context, user string) (model.UserStats, error) {
	if user == "" {
		return model.UserStats{}, fmt.Errorf("user is required: %w", model.ErrNotValid)
	}

	return e.repo.GetUserStats(ctx, user)
}

// Badge pairs an award with its static metadata.
type Badge struct {
	Meta     model.BadgeMeta
	MintedAt int64
}

// Badges returns the badges a user holds, oldest first.
func (e *Engine) Badges(ctx context.Context, user string) ([]Badge, error) {
	if user == "" {
		return nil, fmt.Errorf("user is required: %w", model.ErrNotValid)
	}

	awards, err := e.repo.ListAwards(ctx, user)
	if err != nil {
		return nil, err
	}

	badges := make([]Badge, 0, len(awards))
	for _, a := range awards {
		meta, ok := Meta(a.Type)
		if !ok {
			continue
		}
		badges = append(badges, Badge{Meta: meta, MintedAt: a.MintedAt})
	}

	return badges, nil
}
