package tasklist

import (
	"context"
	"fmt"

	"github.com/sidequests/questd/internal/log"
	"github.com/sidequests/questd/internal/model"
	"github.com/sidequests/questd/internal/storage"
)

// ServiceConfig is the configuration for the task listing service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service lists and fetches tasks.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new task listing service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the listing filters.
type Request struct {
	Filter storage.TaskFilter
}

// Run lists tasks matching the filter, ordered by id.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Task, error) {
	tasks, err := s.repo.ListTasks(ctx, req.Filter)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}

	return tasks, nil
}

// Get returns a single task by id.
func (s *Service) Get(ctx context.Context, id uint64) (*model.Task, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get task %d: %w", id, err)
	}

	return task, nil
}

// Count returns the number of tasks ever created.
func (s *Service) Count(ctx context.Context) (uint64, error) {
	return s.repo.TaskCount(ctx)
}
