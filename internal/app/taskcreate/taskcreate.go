package taskcreate

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

// ServiceConfig is the configuration for the task creation service.
type ServiceConfig struct {
	Repository storage.Repository
	Notifier   *event.Notifier
	// MintIdentity is the principal milestone badges are minted as.
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

// Service creates new tasks in the marketplace.
type Service struct {
	repo         storage.Repository
	notifier     *event.Notifier
	mintIdentity string
	logger       log.Logger
}

// NewService creates a new task creation service.
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

// Request represents the task creation parameters.
type Request struct {
	// Creator is the principal posting the task.
	Creator string
	// MetadataURI points at the off-core task description.
	MetadataURI string
	// Reward is the asset bundle escrow-promised to the worker.
	Reward []model.RewardEntry
}

// Run creates a task and updates the creator's creation milestones.
func (s *Service) Run(ctx context.Context, req Request) (*model.Task, error) {
	if req.Creator == "" {
		return nil, fmt.Errorf("creator is required: %w", model.ErrNotValid)
	}

	if req.MetadataURI == "" {
		return nil, fmt.Errorf("metadata URI is required: %w", model.ErrNotValid)
	}

	if err := model.ValidateReward(req.Reward); err != nil {
		return nil, err
	}

	task := model.Task{
		Creator:     req.Creator,
		MetadataURI: req.MetadataURI,
		Reward:      req.Reward,
		Status:      model.TaskStatusCreated,
		CreatedAt:   time.Now().UTC(),
	}

	var events []model.Event
	err := s.repo.Atomic(ctx, func(ctx context.Context, r storage.Repository) error {
		id, err := r.CreateTask(ctx, task)
		if err != nil {
			return fmt.Errorf("could not create task: %w", err)
		}
		task.ID = id

		engine, err := achievement.NewEngine(achievement.EngineConfig{
			Repository: r,
			Identity:   s.mintIdentity,
			Logger:     s.logger,
		})
		if err != nil {
			return err
		}

		milestones, err := engine.RecordTaskCreation(ctx, req.Creator)
		if err != nil {
			return fmt.Errorf("could not record task creation: %w", err)
		}

		events = append(events, s.notifier.Stamp(model.Event{
			Type:     model.EventTaskCreated,
			TaskID:   task.ID,
			User:     task.Creator,
			Metadata: task.MetadataURI,
		}))
		for _, m := range milestones {
			events = append(events, s.notifier.Stamp(model.Event{
				Type:            model.EventMilestoneReached,
				User:            task.Creator,
				AchievementType: m.Type,
				AssetID:         model.BadgeAssetID(m.Type),
			}))
		}
		for _, e := range events {
			if err := r.AppendEvent(ctx, e); err != nil {
				return fmt.Errorf("could not append event: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, e := range events {
		s.notifier.Publish(ctx, e)
	}

	s.logger.Infof("created task %d by %s", task.ID, task.Creator)
	return &task, nil
}
