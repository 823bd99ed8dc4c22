package taskverify_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidequests/questd/internal/app/taskverify"
	"github.com/sidequests/questd/internal/event"
	"github.com/sidequests/questd/internal/model"
	"github.com/sidequests/questd/internal/storage"
	"github.com/sidequests/questd/internal/storage/memory"
)

const mintIdentity = "questd"

// gatedRepo holds the first transaction open until release is closed, so
// tests can overlap a second call with an in-flight one.
type gatedRepo struct {
	storage.Repository
	entered chan struct{}
	release chan struct{}
}

func (r *gatedRepo) Atomic(ctx context.Context, fn func(ctx context.Context, ar storage.Repository) error) error {
	close(r.entered)
	<-r.release
	return r.Repository.Atomic(ctx, fn)
}

func newTestService(t *testing.T) (*taskverify.Service, *memory.Repository) {
	t.Helper()
	require := require.New(t)

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(err)
	require.NoError(repo.AddGrant(context.Background(), model.Grant{
		Principal:  mintIdentity,
		Capability: model.CapabilityMinter,
	}))

	svc, err := taskverify.NewService(taskverify.ServiceConfig{
		Repository:   repo,
		Notifier:     event.NewNotifier(event.NotifierConfig{}),
		MintIdentity: mintIdentity,
	})
	require.NoError(err)

	return svc, repo
}

func storeTask(t *testing.T, repo *memory.Repository, task model.Task) uint64 {
	t.Helper()
	require := require.New(t)
	ctx := context.Background()

	id, err := repo.CreateTask(ctx, task)
	require.NoError(err)
	task.ID = id
	require.NoError(repo.UpdateTask(ctx, task))

	return id
}

func TestServiceRun(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	completedTask := func(reward []model.RewardEntry) model.Task {
		claimed := now.Add(time.Hour)
		completed := now.Add(2 * time.Hour)
		return model.Task{
			Creator:     "carol",
			Worker:      "alice",
			MetadataURI: "ipfs://task",
			Reward:      reward,
			Status:      model.TaskStatusCompleted,
			CreatedAt:   now,
			ClaimedAt:   &claimed,
			CompletedAt: &completed,
		}
	}

	t.Run("verification pays the worker and updates achievements", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		svc, repo := newTestService(t)
		ctx := context.Background()

		id := storeTask(t, repo, completedTask([]model.RewardEntry{
			{AssetID: model.FungibleAssetID, Amount: 150},
		}))

		res, err := svc.Run(ctx, taskverify.Request{TaskID: id, Caller: "carol"})
		require.NoError(err)

		assert.Equal(model.TaskStatusVerified, res.Task.Status)
		assert.NotNil(res.Task.VerifiedAt)

		balance, err := repo.GetBalance(ctx, "alice", model.FungibleAssetID)
		require.NoError(err)
		assert.Equal(uint64(150), balance)

		stats, err := repo.GetUserStats(ctx, "alice")
		require.NoError(err)
		assert.Equal(uint64(1), stats.TasksCompleted)
		assert.Equal(uint64(150), stats.TokensEarned)

		types := make([]model.AchievementType, 0, len(res.Milestones))
		for _, m := range res.Milestones {
			types = append(types, m.Type)
		}
		assert.ElementsMatch([]model.AchievementType{
			model.AchievementFirstQuest,
			model.AchievementTokenCollector,
		}, types)
	})

	t.Run("only the creator can verify", func(t *testing.T) {
		require := require.New(t)
		svc, repo := newTestService(t)

		id := storeTask(t, repo, completedTask([]model.RewardEntry{{AssetID: 0, Amount: 10}}))

		_, err := svc.Run(context.Background(), taskverify.Request{TaskID: id, Caller: "alice"})
		require.ErrorIs(err, model.ErrUnauthorized)
	})

	t.Run("only completed tasks can be verified", func(t *testing.T) {
		require := require.New(t)
		svc, repo := newTestService(t)

		task := completedTask([]model.RewardEntry{{AssetID: 0, Amount: 10}})
		task.Status = model.TaskStatusInProgress
		task.CompletedAt = nil
		id := storeTask(t, repo, task)

		_, err := svc.Run(context.Background(), taskverify.Request{TaskID: id, Caller: "carol"})
		require.ErrorIs(err, model.ErrInvalidState)
	})

	t.Run("unknown task should fail", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.Run(context.Background(), taskverify.Request{TaskID: 42, Caller: "carol"})
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("a paused ledger rolls the whole verification back", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		svc, repo := newTestService(t)
		ctx := context.Background()

		id := storeTask(t, repo, completedTask([]model.RewardEntry{{AssetID: 0, Amount: 10}}))
		require.NoError(repo.SetLedgerState(ctx, model.LedgerState{Paused: true}))

		_, err := svc.Run(ctx, taskverify.Request{TaskID: id, Caller: "carol"})
		require.ErrorIs(err, model.ErrPaused)

		// Nothing committed: the task is still completed and nothing was paid.
		task, err := repo.GetTask(ctx, id)
		require.NoError(err)
		assert.Equal(model.TaskStatusCompleted, task.Status)

		balance, err := repo.GetBalance(ctx, "alice", model.FungibleAssetID)
		require.NoError(err)
		assert.Equal(uint64(0), balance)

		stats, err := repo.GetUserStats(ctx, "alice")
		require.NoError(err)
		assert.Equal(uint64(0), stats.TasksCompleted)
	})

	t.Run("concurrent verifications of the same task pay out once", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		ctx := context.Background()

		memRepo, err := memory.NewRepository(memory.RepositoryConfig{})
		require.NoError(err)
		require.NoError(memRepo.AddGrant(ctx, model.Grant{
			Principal:  mintIdentity,
			Capability: model.CapabilityMinter,
		}))

		repo := &gatedRepo{
			Repository: memRepo,
			entered:    make(chan struct{}),
			release:    make(chan struct{}),
		}

		svc, err := taskverify.NewService(taskverify.ServiceConfig{
			Repository:   repo,
			Notifier:     event.NewNotifier(event.NotifierConfig{}),
			MintIdentity: mintIdentity,
		})
		require.NoError(err)

		id := storeTask(t, memRepo, completedTask([]model.RewardEntry{
			{AssetID: model.FungibleAssetID, Amount: 50},
		}))

		// First verification, held open inside its transaction.
		firstDone := make(chan error, 1)
		go func() {
			_, err := svc.Run(ctx, taskverify.Request{TaskID: id, Caller: "carol"})
			firstDone <- err
		}()
		<-repo.entered

		// Second verification of the same task while the first is in flight.
		_, err = svc.Run(ctx, taskverify.Request{TaskID: id, Caller: "carol"})
		require.ErrorIs(err, model.ErrInvalidState)

		close(repo.release)
		require.NoError(<-firstDone)

		balance, err := memRepo.GetBalance(ctx, "alice", model.FungibleAssetID)
		require.NoError(err)
		assert.Equal(uint64(50), balance)

		stats, err := memRepo.GetUserStats(ctx, "alice")
		require.NoError(err)
		assert.Equal(uint64(1), stats.TasksCompleted)
	})

	t.Run("verification emits task and milestone events", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		repo, err := memory.NewRepository(memory.RepositoryConfig{})
		require.NoError(err)
		require.NoError(repo.AddGrant(context.Background(), model.Grant{
			Principal:  mintIdentity,
			Capability: model.CapabilityMinter,
		}))

		notifier := event.NewNotifier(event.NotifierConfig{})
		events, cancel := notifier.Subscribe()
		defer cancel()

		svc, err := taskverify.NewService(taskverify.ServiceConfig{
			Repository:   repo,
			Notifier:     notifier,
			MintIdentity: mintIdentity,
		})
		require.NoError(err)

		id := storeTask(t, repo, completedTask([]model.RewardEntry{{AssetID: 0, Amount: 10}}))

		_, err = svc.Run(context.Background(), taskverify.Request{TaskID: id, Caller: "carol"})
		require.NoError(err)

		first := <-events
		assert.Equal(model.EventTaskVerified, first.Type)
		assert.Equal(id, first.TaskID)
		assert.NotEmpty(first.ID)

		second := <-events
		assert.Equal(model.EventMilestoneReached, second.Type)
		assert.Equal(model.AchievementFirstQuest, second.AchievementType)
	})
}
