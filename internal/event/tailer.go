package event

import (
	"context"
	"fmt"
	"time"

	"github.com/sidequests/questd/internal/log"
	"github.com/sidequests/questd/internal/storage"
)

// TailerConfig is the configuration of a Tailer.
type TailerConfig struct {
	Repository storage.EventRepository
	Notifier   *Notifier
	// Interval is the poll interval of the event log.
	Interval time.Duration
	// BatchSize is the maximum number of events read per poll.
	BatchSize int
	Logger    log.Logger
}

func (c *TailerConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Notifier == nil {
		return fmt.Errorf("notifier is required")
	}

	if c.Interval <= 0 {
		c.Interval = 250 * time.Millisecond
	}

	if c.BatchSize <= 0 {
		c.BatchSize = 256
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"srv": "event.Tailer"})

	return nil
}

// Tailer follows the persisted event log and republishes new events on a
// notifier. It bridges events committed by other processes (the CLI) into
// the daemon's live feed: the feed starts at the log tail, earlier history
// is not replayed.
type Tailer struct {
	repo     storage.EventRepository
	notifier *Notifier
	interval time.Duration
	batch    int
	logger   log.Logger
}

// NewTailer returns a new event log tailer.
func NewTailer(config TailerConfig) (*Tailer, error) {
	if err := config.defaults(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Tailer{
		repo:     config.Repository,
		notifier: config.Notifier,
		interval: config.Interval,
		batch:    config.BatchSize,
		logger:   config.Logger,
	}, nil
}

// Run polls the event log until the context is cancelled, publishing every
// new event with its persisted id. It returns nil on cancellation.
func (t *Tailer) Run(ctx context.Context) error {
	seq, err := t.repo.LatestEventSeq(ctx)
	if err != nil {
		return fmt.Errorf("could not read event log position: %w", err)
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			seq, err = t.publishAfter(ctx, seq)
			if err != nil {
				t.logger.Warningf("could not read event log: %v", err)
			}
		}
	}
}

func (t *Tailer) publishAfter(ctx context.Context, seq uint64) (uint64, error) {
	for {
		events, err := t.repo.ListEventsAfter(ctx, seq, t.batch)
		if err != nil {
			return seq, err
		}
		if len(events) == 0 {
			return seq, nil
		}

		for _, e := range events {
			t.notifier.Publish(ctx, e)
			seq = e.Seq
		}

		if len(events) < t.batch {
			return seq, nil
		}
	}
}
