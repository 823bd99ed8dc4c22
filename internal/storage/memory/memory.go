package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sidequests/questd/internal/log"
	"github.com/sidequests/questd/internal/model"
	"github.com/sidequests/questd/internal/storage"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

type balanceKey struct {
	holder  string
	assetID uint64
}

type awardKey struct {
	user string
	typ  model.AchievementType
}

type grantKey struct {
	principal  string
	capability model.Capability
}

// state holds all ledger data. It is shared between the root repository and
// its transactional views.
type state struct {
	taskCounter uint64
	tasks       map[uint64]model.Task
	balances    map[balanceKey]uint64
	paused      bool
	stats       map[string]model.UserStats
	awards      map[awardKey]model.Award
	grants      map[grantKey]struct{}
	eventSeq    uint64
	events      []model.Event
}

func newState() *state {
	return &state{
		tasks:    map[uint64]model.Task{},
		balances: map[balanceKey]uint64{},
		stats:    map[string]model.UserStats{},
		awards:   map[awardKey]model.Award{},
		grants:   map[grantKey]struct{}{},
	}
}

func (s *state) clone() *state {
	c := newState()
	c.taskCounter = s.taskCounter
	c.paused = s.paused
	for k, v := range s.tasks {
		c.tasks[k] = copyTask(v)
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	for k, v := range s.stats {
		c.stats[k] = v
	}
	for k, v := range s.awards {
		c.awards[k] = v
	}
	for k := range s.grants {
		c.grants[k] = struct{}{}
	}
	c.eventSeq = s.eventSeq
	c.events = append([]model.Event(nil), s.events...)
	return c
}

// Repository is an in-memory implementation of storage.Repository, used in
// tests and fake mode. A single mutex serializes all mutating blocks;
// Atomic snapshots the state and restores it when fn fails, giving the same
// commit-or-rollback contract as the SQLite repository.
type Repository struct {
	mu     sync.RWMutex
	st     *state
	inTx   bool
	logger log.Logger
}

var _ storage.Repository = (*Repository)(nil)

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		st:     newState(),
		logger: cfg.Logger,
	}, nil
}

// Atomic runs fn against a transactional view of the repository.
func (r *Repository) Atomic(ctx context.Context, fn func(ctx context.Context, ar storage.Repository) error) error {
	if r.inTx {
		return fn(ctx, r)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := r.st.clone()
	txRepo := &Repository{st: r.st, inTx: true, logger: r.logger}

	if err := fn(ctx, txRepo); err != nil {
		r.st.taskCounter = snapshot.taskCounter
		r.st.paused = snapshot.paused
		r.st.tasks = snapshot.tasks
		r.st.balances = snapshot.balances
		r.st.stats = snapshot.stats
		r.st.awards = snapshot.awards
		r.st.grants = snapshot.grants
		r.st.eventSeq = snapshot.eventSeq
		r.st.events = snapshot.events
		return err
	}

	return nil
}

func (r *Repository) rlock() func() {
	if r.inTx {
		return func() {}
	}
	r.mu.RLock()
	return r.mu.RUnlock
}

func (r *Repository) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

// CreateTask stores a new task and returns its assigned id.
func (r *Repository) CreateTask(ctx context.Context, t model.Task) (uint64, error) {
	defer r.lock()()

	r.st.taskCounter++
	t.ID = r.st.taskCounter
	r.st.tasks[t.ID] = copyTask(t)

	r.logger.Debugf("Created task in repository: %d", t.ID)
	return t.ID, nil
}

// GetTask retrieves a task by id.
func (r *Repository) GetTask(ctx context.Context, id uint64) (*model.Task, error) {
	defer r.rlock()()

	task, ok := r.st.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %d: %w", id, model.ErrNotFound)
	}

	taskCopy := copyTask(task)
	return &taskCopy, nil
}

// UpdateTask updates an existing task.
func (r *Repository) UpdateTask(ctx context.Context, t model.Task) error {
	defer r.lock()()

	if _, ok := r.st.tasks[t.ID]; !ok {
		return fmt.Errorf("task %d: %w", t.ID, model.ErrNotFound)
	}

	r.st.tasks[t.ID] = copyTask(t)
	r.logger.Debugf("Updated task in repository: %d", t.ID)
	return nil
}

// DeleteTask deletes a task. The id counter is untouched.
func (r *Repository) DeleteTask(ctx context.Context, id uint64) error {
	defer r.lock()()

	if _, ok := r.st.tasks[id]; !ok {
		return fmt.Errorf("task %d: %w", id, model.ErrNotFound)
	}

	delete(r.st.tasks, id)
	r.logger.Debugf("Deleted task from repository: %d", id)
	return nil
}

// ListTasks returns tasks matching the filter, ordered by id.
func (r *Repository) ListTasks(ctx context.Context, f storage.TaskFilter) ([]model.Task, error) {
	defer r.rlock()()

	var tasks []model.Task
	for _, t := range r.st.tasks {
		if f.Creator != "" && t.Creator != f.Creator {
			continue
		}
		if f.Worker != "" && t.Worker != f.Worker {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.OpenOnly && t.Status != model.TaskStatusCreated && t.Status != model.TaskStatusInProgress {
			continue
		}
		tasks = append(tasks, copyTask(t))
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

// TaskCount returns the total number of tasks ever created.
func (r *Repository) TaskCount(ctx context.Context) (uint64, error) {
	defer r.rlock()()
	return r.st.taskCounter, nil
}

// GetBalance returns the balance of one asset for a holder.
func (r *Repository) GetBalance(ctx context.Context, holder string, assetID uint64) (uint64, error) {
	defer r.rlock()()
	return r.st.balances[balanceKey{holder, assetID}], nil
}

// AddBalance increases a holder's balance of an asset.
func (r *Repository) AddBalance(ctx context.Context, holder string, assetID uint64, amount uint64) error {
	defer r.lock()()

	r.st.balances[balanceKey{holder, assetID}] += amount
	r.logger.Debugf("Added %d of asset %d to %s", amount, assetID, holder)
	return nil
}

// SubBalance decreases a holder's balance of an asset.
func (r *Repository) SubBalance(ctx context.Context, holder string, assetID uint64, amount uint64) error {
	defer r.lock()()

	key := balanceKey{holder, assetID}
	if r.st.balances[key] < amount {
		return fmt.Errorf("insufficient balance of asset %d for %s: %w", assetID, holder, model.ErrNotValid)
	}

	r.st.balances[key] -= amount
	return nil
}

// ListBadgeAssets returns the badge asset ids the holder has a positive
// balance of.
func (r *Repository) ListBadgeAssets(ctx context.Context, holder string) ([]uint64, error) {
	defer r.rlock()()

	var ids []uint64
	for k, v := range r.st.balances {
		if k.holder == holder && k.assetID >= model.BadgeAssetIDBase && v > 0 {
			ids = append(ids, k.assetID)
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// GetLedgerState returns the administrative state of the reward ledger.
func (r *Repository) GetLedgerState(ctx context.Context) (model.LedgerState, error) {
	defer r.rlock()()
	return model.LedgerState{Paused: r.st.paused}, nil
}

// SetLedgerState stores the administrative state of the reward ledger.
func (r *Repository) SetLedgerState(ctx context.Context, s model.LedgerState) error {
	defer r.lock()()
	r.st.paused = s.Paused
	return nil
}

// GetUserStats returns a user's achievement counters.
func (r *Repository) GetUserStats(ctx context.Context, user string) (model.UserStats, error) {
	defer r.rlock()()

	stats, ok := r.st.stats[user]
	if !ok {
		return model.UserStats{User: user}, nil
	}
	return stats, nil
}

// UpsertUserStats stores a user's achievement counters.
func (r *Repository) UpsertUserStats(ctx context.Context, s model.UserStats) error {
	defer r.lock()()
	r.st.stats[s.User] = s
	return nil
}

// HasAward reports whether the user already holds the given achievement.
func (r *Repository) HasAward(ctx context.Context, user string, t model.AchievementType) (bool, error) {
	defer r.rlock()()
	_, ok := r.st.awards[awardKey{user, t}]
	return ok, nil
}

// CreateAward records a one-time achievement award.
func (r *Repository) CreateAward(ctx context.Context, a model.Award) error {
	defer r.lock()()

	key := awardKey{a.User, a.Type}
	if _, ok := r.st.awards[key]; ok {
		return fmt.Errorf("award %d for %s: %w", a.Type, a.User, model.ErrAlreadyExists)
	}

	r.st.awards[key] = a
	r.logger.Debugf("Recorded award %d for %s", a.Type, a.User)
	return nil
}

// ListAwards returns the achievements held by a user, ordered by type.
func (r *Repository) ListAwards(ctx context.Context, user string) ([]model.Award, error) {
	defer r.rlock()()

	var awards []model.Award
	for k, a := range r.st.awards {
		if k.user == user {
			awards = append(awards, a)
		}
	}

	sort.Slice(awards, func(i, j int) bool { return awards[i].Type < awards[j].Type })
	return awards, nil
}

// AppendEvent appends a committed event to the log.
func (r *Repository) AppendEvent(ctx context.Context, e model.Event) error {
	defer r.lock()()

	r.st.eventSeq++
	e.Seq = r.st.eventSeq
	r.st.events = append(r.st.events, e)
	return nil
}

// ListEventsAfter returns up to limit events with a sequence number greater
// than seq, in sequence order.
func (r *Repository) ListEventsAfter(ctx context.Context, seq uint64, limit int) ([]model.Event, error) {
	defer r.rlock()()

	var events []model.Event
	for _, e := range r.st.events {
		if e.Seq <= seq {
			continue
		}
		events = append(events, e)
		if len(events) == limit {
			break
		}
	}
	return events, nil
}

// LatestEventSeq returns the sequence number of the newest event, zero when
// the log is empty.
func (r *Repository) LatestEventSeq(ctx context.Context) (uint64, error) {
	defer r.rlock()()
	return r.st.eventSeq, nil
}

// HasCapability reports whether a principal holds a capability.
func (r *Repository) HasCapability(ctx context.Context, principal string, c model.Capability) (bool, error) {
	defer r.rlock()()
	_, ok := r.st.grants[grantKey{principal, c}]
	return ok, nil
}

// AddGrant stores a capability grant.
func (r *Repository) AddGrant(ctx context.Context, g model.Grant) error {
	defer r.lock()()

	key := grantKey{g.Principal, g.Capability}
	if _, ok := r.st.grants[key]; ok {
		return fmt.Errorf("grant %s for %s: %w", g.Capability, g.Principal, model.ErrAlreadyExists)
	}

	r.st.grants[key] = struct{}{}
	r.logger.Debugf("Granted %s to %s", g.Capability, g.Principal)
	return nil
}

// RemoveGrant deletes a capability grant.
func (r *Repository) RemoveGrant(ctx context.Context, g model.Grant) error {
	defer r.lock()()

	key := grantKey{g.Principal, g.Capability}
	if _, ok := r.st.grants[key]; !ok {
		return fmt.Errorf("grant %s for %s: %w", g.Capability, g.Principal, model.ErrNotFound)
	}

	delete(r.st.grants, key)
	r.logger.Debugf("Revoked %s from %s", g.Capability, g.Principal)
	return nil
}

// ListGrants returns all grants of one capability, ordered by principal.
func (r *Repository) ListGrants(ctx context.Context, c model.Capability) ([]model.Grant, error) {
	defer r.rlock()()

	var grants []model.Grant
	for k := range r.st.grants {
		if k.capability == c {
			grants = append(grants, model.Grant{Principal: k.principal, Capability: k.capability})
		}
	}

	sort.Slice(grants, func(i, j int) bool { return grants[i].Principal < grants[j].Principal })
	return grants, nil
}

func copyTask(t model.Task) model.Task {
	c := t
	c.Reward = append([]model.RewardEntry(nil), t.Reward...)
	c.ClaimedAt = copyTime(t.ClaimedAt)
	c.CompletedAt = copyTime(t.CompletedAt)
	c.VerifiedAt = copyTime(t.VerifiedAt)
	return c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
