package taskclaim

import (
	"context"
	"fmt"
	"time"

	"github.com/sidequests/questd/internal/event"
	"github.com/sidequests/questd/internal/log"
	"github.com/sidequests/questd/internal/model"
	"github.com/sidequests/questd/internal/storage"
)

// ServiceConfig is the configuration for the task claim service.
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

// Service assigns open tasks to workers. Assignment is first come first
// served: the first claim inside a committed transaction wins.
type Service struct {
	repo     storage.Repository
	notifier *event.Notifier
	logger   log.Logger
}

// NewService creates a new task claim service.
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

// Request represents the claim parameters.
type Request struct {
	TaskID uint64
	// Worker is the principal claiming the task.
	Worker string
}

// Run claims an open task for a worker.
func (s *Service) Run(ctx context.Context, req Request) (*model.Task, error) {
	if req.Worker == "" {
		return nil, fmt.Errorf("worker is required: %w", model.ErrNotValid)
	}

	var task *model.Task
	var claimed model.Event
	err := s.repo.Atomic(ctx, func(ctx context.Context, r storage.Repository) error {
		t, err := r.GetTask(ctx, req.TaskID)
		if err != nil {
			return fmt.Errorf("could not get task %d: %w", req.TaskID, err)
		}

		if err := t.CanClaim(req.Worker); err != nil {
			return err
		}

		now := time.Now().UTC()
		t.Worker = req.Worker
		t.Status = model.TaskStatusInProgress
		t.ClaimedAt = &now

		if err := r.UpdateTask(ctx, *t); err != nil {
			return fmt.Errorf("could not update task: %w", err)
		}

		claimed = s.notifier.Stamp(model.Event{
			Type:   model.EventTaskClaimed,
			TaskID: t.ID,
			User:   t.Worker,
		})
		if err := r.AppendEvent(ctx, claimed); err != nil {
			return fmt.Errorf("could not append event: %w", err)
		}

		task = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, claimed)

	s.logger.Infof("task %d claimed by %s", task.ID, task.Worker)
	return task, nil
}
