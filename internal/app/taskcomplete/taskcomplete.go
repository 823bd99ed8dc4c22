package taskcomplete

import (
	"context"
	"fmt"
	"time"

	"github.com/sidequests/questd/internal/event"
	"github.com/sidequests/questd/internal/log"
	"github.com/sidequests/questd/internal/model"
	"github.com/sidequests/questd/internal/storage"
)

// ServiceConfig is the configuration for the task completion service.
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

// Service marks claimed tasks as completed by their worker.
type Service struct {
	repo     storage.Repository
	notifier *event.Notifier
	logger   log.Logger
}

// NewService creates a new task completion service.
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

// Request represents the completion parameters.
type Request struct {
	TaskID uint64
	// Caller is the principal reporting completion. It must be the assigned
	// worker.
	Caller string
}

// Run marks a task completed, pending verification by its creator.
func (s *Service) Run(ctx context.Context, req Request) (*model.Task, error) {
	if req.Caller == "" {
		return nil, fmt.Errorf("caller is required: %w", model.ErrNotValid)
	}

	var task *model.Task
	var completed model.Event
	err := s.repo.Atomic(ctx, func(ctx context.Context, r storage.Repository) error {
		t, err := r.GetTask(ctx, req.TaskID)
		if err != nil {
			return fmt.Errorf("could not get task %d: %w", req.TaskID, err)
		}

		if err := t.CanComplete(req.Caller); err != nil {
			return err
		}

		now := time.Now().UTC()
		t.Status = model.TaskStatusCompleted
		t.CompletedAt = &now

		if err := r.UpdateTask(ctx, *t); err != nil {
			return fmt.Errorf("could not update task: %w", err)
		}

		completed = s.notifier.Stamp(model.Event{
			Type:   model.EventTaskCompleted,
			TaskID: t.ID,
			User:   t.Worker,
		})
		if err := r.AppendEvent(ctx, completed); err != nil {
			return fmt.Errorf("could not append event: %w", err)
		}

		task = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, completed)

	s.logger.Infof("task %d completed by %s", task.ID, task.Worker)
	return task, nil
}
