package event

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/sidequests/questd/internal/log"
	"github.com/sidequests/questd/internal/model"
)

// Notifier fans out marketplace events to in-process subscribers. Publishing
// never blocks: slow subscribers drop events once their buffer is full.
type Notifier struct {
	mu      sync.Mutex
	subs    map[int]chan model.Event
	nextSub int
	entropy *ulid.MonotonicEntropy
	logger  log.Logger
}

// NotifierConfig is the configuration of a Notifier.
type NotifierConfig struct {
	Logger log.Logger
}

// NewNotifier returns a new event notifier.
func NewNotifier(config NotifierConfig) *Notifier {
	if config.Logger == nil {
		config.Logger = log.Noop
	}

	return &Notifier{
		subs:    map[int]chan model.Event{},
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		logger:  config.Logger.WithValues(log.Kv{"srv": "event.Notifier"}),
	}
}

// subscriberBuffer is the per-subscriber channel capacity.
const subscriberBuffer = 64

// Stamp assigns the event an id and timestamp. Services stamp events before
// appending them to storage so the persisted log and the live feed carry the
// same ids.
func (n *Notifier) Stamp(e model.Event) model.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stamp(e)
}

func (n *Notifier) stamp(e model.Event) model.Event {
	now := time.Now().UTC()
	e.ID = ulid.MustNew(ulid.Timestamp(now), n.entropy).String()
	e.At = now
	return e
}

// Publish delivers the event to every subscriber, stamping it first if it
// has no id yet. Events must be published only after the state change they
// describe has been committed.
func (n *Notifier) Publish(ctx context.Context, e model.Event) model.Event {
	n.mu.Lock()
	defer n.mu.Unlock()

	if e.ID == "" {
		e = n.stamp(e)
	}

	for _, ch := range n.subs {
		select {
		case ch <- e:
		default:
			n.logger.WithCtxValues(ctx).Warningf("subscriber buffer full, event %s dropped", e.ID)
		}
	}

	return e
}

// Subscribe registers a new subscriber and returns its channel and a cancel
// function. The channel is closed on cancel.
func (n *Notifier) Subscribe() (<-chan model.Event, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextSub
	n.nextSub++
	ch := make(chan model.Event, subscriberBuffer)
	n.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs, id)
			close(ch)
		})
	}

	return ch, cancel
}
