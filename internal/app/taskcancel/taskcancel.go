package taskcancel

import (
	"context"
	"fmt"

	"github.com/sidequests/questd/internal/event"
	"github.com/sidequests/questd/internal/log"
	"github.com/sidequests/questd/internal/model"
	"github.com/sidequests/questd/internal/storage"
)

// ServiceConfig is the configuration for the task cancel service.
type ServiceConfig struct {
	Repository storage.Repository
	Notifier   *event.Notifier
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Notifier == nil {
		return fmt.Errorf("notifier is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service cancels unclaimed tasks. The task row is deleted but its id is
// never reassigned.
type Service struct {
	repo     storage.Repository
	notifier *event.Notifier
	logger   log.Logger
}

// NewService creates a new task cancel service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:     cfg.Repository,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
	}, nil
}

// Request represents the cancel parameters.
type Request struct {
	TaskID uint64
	// Caller is the principal cancelling. It must be the task creator.
	Caller string
}

// Run cancels an open task.
func (s *Service) Run(ctx context.Context, req Request) error {
	if req.Caller == "" {
		return fmt.Errorf("caller is required: %w", model.ErrNotValid)
	}

	var creator string
	var cancelled model.Event
	err := s.repo.Atomic(ctx, func(ctx context.Context, r storage.Repository) error {
		t, err := r.GetTask(ctx, req.TaskID)
		if err != nil {
			return fmt.Errorf("could not get task %d: %w", req.TaskID, err)
		}

		if err := t.CanCancel(req.Caller); err != nil {
			return err
		}

		if err := r.DeleteTask(ctx, t.ID); err != nil {
			return fmt.Errorf("could not delete task: %w", err)
		}

		cancelled = s.notifier.Stamp(model.Event{
			Type:   model.EventTaskCancelled,
			TaskID: t.ID,
			User:   t.Creator,
		})
		if err := r.AppendEvent(ctx, cancelled); err != nil {
			return fmt.Errorf("could not append event: %w", err)
		}

		creator = t.Creator
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.Publish(ctx, cancelled)

	s.logger.Infof("task %d cancelled by %s", req.TaskID, creator)
	return nil
}
