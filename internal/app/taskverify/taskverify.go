package taskverify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sidequests/questd/internal/achievement"
	"github.com/sidequests/questd/internal/event"
	"github.com/sidequests/questd/internal/ledger"
	"github.com/sidequests/questd/internal/log"
	"github.com/sidequests/questd/internal/model"
	"github.com/sidequests/questd/internal/storage"
)

// ServiceConfig is the configuration for the task verification service.
type ServiceConfig struct {
	Repository storage.Repository
	Notifier   *event.Notifier
	// MintIdentity is the principal rewards and badges are minted as. It must
	// hold the minter capability.
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

// Service verifies completed tasks: the status flip, the reward payout and
// the achievement updates commit as a single unit or not at all.
type Service struct {
	repo         storage.Repository
	notifier     *event.Notifier
	mintIdentity string
	logger       log.Logger

	mu       sync.Mutex
	inFlight map[uint64]bool
}

// NewService creates a new task verification service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:         cfg.Repository,
		notifier:     cfg.Notifier,
		mintIdentity: cfg.MintIdentity,
		logger:       cfg.Logger,
		inFlight:     map[uint64]bool{},
	}, nil
}

// Request represents the verification parameters.
type Request struct {
	TaskID uint64
	// Caller is the principal verifying. It must be the task creator.
	Caller string
}

// Result is the outcome of a verification.
type Result struct {
	Task *model.Task
	// Milestones are the badges minted to the worker by this verification.
	Milestones []model.BadgeMeta
}

// Run verifies a completed task, pays the worker and mints any crossed
// milestone badges.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	ctx, span := otel.Tracer("questd/taskverify").Start(ctx, "taskverify.Run")
	defer span.End()
	span.SetAttributes(attribute.Int64("task.id", int64(req.TaskID)))

	if req.Caller == "" {
		return nil, fmt.Errorf("caller is required: %w", model.ErrNotValid)
	}

	if err := s.begin(req.TaskID); err != nil {
		return nil, err
	}
	defer s.end(req.TaskID)

	var (
		task       *model.Task
		milestones []model.BadgeMeta
		events     []model.Event
	)
	err := s.repo.Atomic(ctx, func(ctx context.Context, r storage.Repository) error {
		t, err := r.GetTask(ctx, req.TaskID)
		if err != nil {
			return fmt.Errorf("could not get task %d: %w", req.TaskID, err)
		}

		if err := t.CanVerify(req.Caller); err != nil {
			return err
		}

		now := time.Now().UTC()
		t.Status = model.TaskStatusVerified
		t.VerifiedAt = &now

		if err := r.UpdateTask(ctx, *t); err != nil {
			return fmt.Errorf("could not update task: %w", err)
		}

		led, err := ledger.NewService(ledger.ServiceConfig{Repository: r, Logger: s.logger})
		if err != nil {
			return err
		}

		assetIDs := make([]uint64, 0, len(t.Reward))
		amounts := make([]uint64, 0, len(t.Reward))
		var tokens uint64
		for _, re := range t.Reward {
			assetIDs = append(assetIDs, re.AssetID)
			amounts = append(amounts, re.Amount)
			if re.AssetID == model.FungibleAssetID {
				tokens += re.Amount
			}
		}

		if err := led.MintBatch(ctx, s.mintIdentity, t.Worker, assetIDs, amounts); err != nil {
			return fmt.Errorf("could not pay reward: %w", err)
		}

		engine, err := achievement.NewEngine(achievement.EngineConfig{
			Repository: r,
			Identity:   s.mintIdentity,
			Logger:     s.logger,
		})
		if err != nil {
			return err
		}

		milestones, err = engine.RecordTaskCompletion(ctx, t.Worker, tokens, now)
		if err != nil {
			return fmt.Errorf("could not record completion: %w", err)
		}

		events = append(events, s.notifier.Stamp(model.Event{
			Type:   model.EventTaskVerified,
			TaskID: t.ID,
			User:   t.Worker,
		}))
		for _, m := range milestones {
			events = append(events, s.notifier.Stamp(model.Event{
				Type:            model.EventMilestoneReached,
				User:            t.Worker,
				AchievementType: m.Type,
				AssetID:         model.BadgeAssetID(m.Type),
			}))
		}
		for _, e := range events {
			if err := r.AppendEvent(ctx, e); err != nil {
				return fmt.Errorf("could not append event: %w", err)
			}
		}

		task = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, e := range events {
		s.notifier.Publish(ctx, e)
	}

	s.logger.Infof("task %d verified, %d reward entries paid to %s", task.ID, len(task.Reward), task.Worker)
	return &Result{Task: task, Milestones: milestones}, nil
}

// begin marks a task as being verified, rejecting concurrent verification
// attempts on the same task while one is in flight.
func (s *Service) begin(taskID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight[taskID] {
		return fmt.Errorf("verification of task %d already in progress: %w", taskID, model.ErrInvalidState)
	}
	s.inFlight[taskID] = true

	return nil
}

func (s *Service) end(taskID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, taskID)
}
