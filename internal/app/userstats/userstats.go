package userstats

import (
	"context"
	"fmt"

	"github.com/sidequests/questd/internal/achievement"
	"github.com/sidequests/questd/internal/log"
	"github.com/sidequests/questd/internal/model"
	"github.com/sidequests/questd/internal/storage"
)

// ServiceConfig is the configuration for the user stats service.
type ServiceConfig struct {
	Repository storage.Repository
	Engine     *achievement.Engine
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Engine == nil {
		return fmt.Errorf("engine is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service aggregates a user's counters, badges and currency balance.
type Service struct {
	repo   storage.Repository
	engine *achievement.Engine
	logger log.Logger
}

// NewService creates a new user stats service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		engine: cfg.Engine,
		logger: cfg.Logger,
	}, nil
}

// Request represents the stats query.
type Request struct {
	User string
}

// Result is a user profile snapshot.
type Result struct {
	Stats model.UserStats
	// Balance is the fungible currency balance.
	Balance uint64
	Badges  []achievement.Badge
}

// Run returns the profile snapshot of a user. Unknown users get a zero
// valued profile, not an error.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if req.User == "" {
		return nil, fmt.Errorf("user is required: %w", model.ErrNotValid)
	}

	stats, err := s.engine.Stats(ctx, req.User)
	if err != nil {
		return nil, fmt.Errorf("could not get stats: %w", err)
	}

	balance, err := s.repo.GetBalance(ctx, req.User, model.FungibleAssetID)
	if err != nil {
		return nil, fmt.Errorf("could not get balance: %w", err)
	}

	badges, err := s.engine.Badges(ctx, req.User)
	if err != nil {
		return nil, fmt.Errorf("could not get badges: %w", err)
	}

	return &Result{Stats: stats, Balance: balance, Badges: badges}, nil
}
