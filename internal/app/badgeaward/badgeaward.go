package badgeaward

import (
	"context"
	"fmt"
	"time"

	"github.com/sidequests/questd/internal/achievement"
	"github.com/sidequests/questd/internal/event"
	"github.com/sidequests/questd/internal/log"
	"github.com/sidequests/questd/internal/model"
	"github.com/sidequests/questd/internal/storage"
)

// ServiceConfig is the configuration for the manual badge award service.
type ServiceConfig struct {
	Repository storage.Repository
	Notifier   *event.Notifier
	// MintIdentity is the principal badges are minted as.
	MintIdentity string
	Logger       log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Notifier == nil {
		return fmt.Errorf("notifier is required")
	}

	if c.MintIdentity == "" {
		return fmt.Errorf("mint identity is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service awards the admin-only badge types that no automatic threshold
// covers.
type Service struct {
	repo         storage.Repository
	notifier     *event.Notifier
	mintIdentity string
	logger       log.Logger
}

// NewService creates a new badge award service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:         cfg.Repository,
		notifier:     cfg.Notifier,
		mintIdentity: cfg.MintIdentity,
		logger:       cfg.Logger,
	}, nil
}

// Request represents the award parameters.
type Request struct {
	// Caller is the principal awarding. It must hold the admin capability.
	Caller string
	// User is the badge recipient.
	User string
	Type model.AchievementType
}

// Run awards a manual badge to a user.
func (s *Service) Run(ctx context.Context, req Request) (*model.BadgeMeta, error) {
	var (
		meta   model.BadgeMeta
		minted model.Event
	)
	err := s.repo.Atomic(ctx, func(ctx context.Context, r storage.Repository) error {
		engine, err := achievement.NewEngine(achievement.EngineConfig{
			Repository: r,
			Identity:   s.mintIdentity,
			Logger:     s.logger,
		})
		if err != nil {
			return err
		}

		meta, err = engine.Award(ctx, req.Caller, req.User, req.Type, time.Now().UTC())
		if err != nil {
			return err
		}

		minted = s.notifier.Stamp(model.Event{
			Type:            model.EventBadgeMinted,
			User:            req.User,
			AchievementType: meta.Type,
			AssetID:         model.BadgeAssetID(meta.Type),
		})
		if err := r.AppendEvent(ctx, minted); err != nil {
			return fmt.Errorf("could not append event: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, minted)

	s.logger.Infof("badge %q awarded to %s by %s", meta.Title, req.User, req.Caller)
	return &meta, nil
}
