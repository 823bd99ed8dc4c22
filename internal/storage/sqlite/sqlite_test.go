package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidequests/questd/internal/log"
	"github.com/sidequests/questd/internal/model"
	"github.com/sidequests/questd/internal/storage"
	"github.com/sidequests/questd/internal/storage/sqlite"
)

func newRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
		Logger: log.Noop,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func taskFixture(creator string) model.Task {
	return model.Task{
		Creator:     creator,
		MetadataURI: "ipfs://task",
		Reward: []model.RewardEntry{
			{AssetID: 0, Amount: 100},
			{AssetID: 3, Amount: 1},
		},
		Status:    model.TaskStatusCreated,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestRepositoryTaskCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	id, err := repo.CreateTask(ctx, taskFixture("carol"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	got, err := repo.GetTask(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "carol", got.Creator)
	assert.Equal(t, model.TaskStatusCreated, got.Status)
	// Reward entries keep their order.
	assert.Equal(t, []model.RewardEntry{{AssetID: 0, Amount: 100}, {AssetID: 3, Amount: 1}}, got.Reward)
	assert.Nil(t, got.ClaimedAt)

	now := time.Now().UTC().Truncate(time.Second)
	got.Worker = "alice"
	got.Status = model.TaskStatusInProgress
	got.ClaimedAt = &now
	require.NoError(t, repo.UpdateTask(ctx, *got))

	updated, err := repo.GetTask(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", updated.Worker)
	assert.Equal(t, model.TaskStatusInProgress, updated.Status)
	require.NotNil(t, updated.ClaimedAt)
	assert.Equal(t, now.Unix(), updated.ClaimedAt.Unix())

	_, err = repo.GetTask(ctx, 42)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestRepositoryTaskIDsNeverReused(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	first, err := repo.CreateTask(ctx, taskFixture("carol"))
	require.NoError(t, err)
	require.NoError(t, repo.DeleteTask(ctx, first))

	second, err := repo.CreateTask(ctx, taskFixture("carol"))
	require.NoError(t, err)
	assert.Equal(t, first+1, second)

	// The counter tracks tasks ever created, not rows stored.
	count, err := repo.TaskCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, count)
}

func TestRepositoryListTasks(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	store := func(creator, worker string, status model.TaskStatus) {
		task := taskFixture(creator)
		id, err := repo.CreateTask(ctx, task)
		require.NoError(t, err)
		if worker != "" || status != model.TaskStatusCreated {
			task.ID = id
			task.Worker = worker
			task.Status = status
			require.NoError(t, repo.UpdateTask(ctx, task))
		}
	}

	store("carol", "", model.TaskStatusCreated)
	store("carol", "alice", model.TaskStatusInProgress)
	store("dave", "alice", model.TaskStatusVerified)

	all, err := repo.ListTasks(ctx, storage.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Ordered by id.
	assert.True(t, all[0].ID < all[1].ID && all[1].ID < all[2].ID)

	open, err := repo.ListTasks(ctx, storage.TaskFilter{OpenOnly: true})
	require.NoError(t, err)
	assert.Len(t, open, 2)

	byCreator, err := repo.ListTasks(ctx, storage.TaskFilter{Creator: "dave"})
	require.NoError(t, err)
	assert.Len(t, byCreator, 1)

	byStatus, err := repo.ListTasks(ctx, storage.TaskFilter{Status: model.TaskStatusInProgress})
	require.NoError(t, err)
	assert.Len(t, byStatus, 1)
}

func TestRepositoryBalances(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	balance, err := repo.GetBalance(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)

	require.NoError(t, repo.AddBalance(ctx, "alice", 0, 100))
	require.NoError(t, repo.AddBalance(ctx, "alice", 0, 50))
	require.NoError(t, repo.AddBalance(ctx, "alice", 5, 1))

	balance, err = repo.GetBalance(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), balance)

	require.ErrorIs(t, repo.SubBalance(ctx, "alice", 0, 151), model.ErrNotValid)
	require.NoError(t, repo.SubBalance(ctx, "alice", 0, 150))

	badges, err := repo.ListBadgeAssets(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []uint64{5}, badges)
}

func TestRepositoryLedgerState(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	state, err := repo.GetLedgerState(ctx)
	require.NoError(t, err)
	assert.False(t, state.Paused)

	require.NoError(t, repo.SetLedgerState(ctx, model.LedgerState{Paused: true}))

	state, err = repo.GetLedgerState(ctx)
	require.NoError(t, err)
	assert.True(t, state.Paused)
}

func TestRepositoryUserStats(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	// Unknown users get zero valued stats.
	stats, err := repo.GetUserStats(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, model.UserStats{User: "alice"}, stats)

	stats.TasksCompleted = 3
	stats.TokensEarned = 150
	stats.CurrentStreak = 2
	stats.MaxStreak = 5
	stats.LastCompletionDay = 20500
	require.NoError(t, repo.UpsertUserStats(ctx, stats))

	got, err := repo.GetUserStats(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, stats, got)
}

func TestRepositoryAwards(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	award := model.Award{User: "alice", Type: model.AchievementFirstQuest, MintedAt: 100}
	require.NoError(t, repo.CreateAward(ctx, award))
	require.ErrorIs(t, repo.CreateAward(ctx, award), model.ErrAlreadyExists)

	has, err := repo.HasAward(ctx, "alice", model.AchievementFirstQuest)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = repo.HasAward(ctx, "alice", model.AchievementQuestMaster)
	require.NoError(t, err)
	assert.False(t, has)

	awards, err := repo.ListAwards(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, awards, 1)
	assert.Equal(t, award, awards[0])
}

func TestRepositoryGrants(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	grant := model.Grant{Principal: "alice", Capability: model.CapabilityMinter}
	require.NoError(t, repo.AddGrant(ctx, grant))
	require.ErrorIs(t, repo.AddGrant(ctx, grant), model.ErrAlreadyExists)

	has, err := repo.HasCapability(ctx, "alice", model.CapabilityMinter)
	require.NoError(t, err)
	assert.True(t, has)

	grants, err := repo.ListGrants(ctx, model.CapabilityMinter)
	require.NoError(t, err)
	require.Len(t, grants, 1)

	require.NoError(t, repo.RemoveGrant(ctx, grant))
	require.ErrorIs(t, repo.RemoveGrant(ctx, grant), model.ErrNotFound)
}

func TestRepositoryEventLog(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	seq, err := repo.LatestEventSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), seq)

	at := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, repo.AppendEvent(ctx, model.Event{
		ID: "01ARZ3NDEKTSV4RRFFQ69G5FAV", Type: model.EventTaskCreated,
		At: at, TaskID: 1, User: "carol", Metadata: "ipfs://task",
	}))
	require.NoError(t, repo.AppendEvent(ctx, model.Event{
		ID: "01ARZ3NDEKTSV4RRFFQ69G5FAW", Type: model.EventTaskClaimed,
		At: at.Add(time.Second), TaskID: 1, User: "alice",
	}))

	// Duplicate ids are rejected, the log is append only.
	err = repo.AppendEvent(ctx, model.Event{
		ID: "01ARZ3NDEKTSV4RRFFQ69G5FAV", Type: model.EventTaskCreated, At: at,
	})
	require.ErrorIs(t, err, model.ErrAlreadyExists)

	events, err := repo.ListEventsAfter(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(1), events[0].Seq)
	assert.Equal(t, model.EventTaskCreated, events[0].Type)
	assert.Equal(t, at, events[0].At)
	assert.Equal(t, "carol", events[0].User)
	assert.Equal(t, "ipfs://task", events[0].Metadata)

	tail, err := repo.ListEventsAfter(ctx, events[0].Seq, 10)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, model.EventTaskClaimed, tail[0].Type)

	seq, err = repo.LatestEventSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, tail[0].Seq, seq)
}

func TestRepositoryAtomic(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	failErr := fmt.Errorf("boom")
	err := repo.Atomic(ctx, func(ctx context.Context, r storage.Repository) error {
		require.NoError(t, r.AddBalance(ctx, "alice", 0, 100))
		return failErr
	})
	require.ErrorIs(t, err, failErr)

	balance, err := repo.GetBalance(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)

	err = repo.Atomic(ctx, func(ctx context.Context, r storage.Repository) error {
		if err := r.AddBalance(ctx, "alice", 0, 100); err != nil {
			return err
		}
		// Re-entrant on transactional views.
		return r.Atomic(ctx, func(ctx context.Context, r storage.Repository) error {
			return r.AddBalance(ctx, "alice", 0, 25)
		})
	})
	require.NoError(t, err)

	balance, err = repo.GetBalance(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(125), balance)
}
