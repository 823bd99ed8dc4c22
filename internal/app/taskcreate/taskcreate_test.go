package taskcreate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidequests/questd/internal/app/taskcreate"
	"github.com/sidequests/questd/internal/event"
	"github.com/sidequests/questd/internal/model"
	"github.com/sidequests/questd/internal/storage/memory"
)

func newTestService(t *testing.T) (*taskcreate.Service, *memory.Repository) {
	t.Helper()
	require := require.New(t)

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(err)
	require.NoError(repo.AddGrant(context.Background(), model.Grant{
		Principal:  "questd",
		Capability: model.CapabilityMinter,
	}))

	svc, err := taskcreate.NewService(taskcreate.ServiceConfig{
		Repository:   repo,
		Notifier:     event.NewNotifier(event.NotifierConfig{}),
		MintIdentity: "questd",
	})
	require.NoError(err)

	return svc, repo
}

func TestServiceRun(t *testing.T) {
	validReq := taskcreate.Request{
		Creator:     "carol",
		MetadataURI: "ipfs://task",
		Reward:      []model.RewardEntry{{AssetID: 0, Amount: 50}},
	}

	t.Run("creating a task assigns increasing ids and records creation stats", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		svc, repo := newTestService(t)
		ctx := context.Background()

		first, err := svc.Run(ctx, validReq)
		require.NoError(err)
		second, err := svc.Run(ctx, validReq)
		require.NoError(err)

		assert.Equal(uint64(1), first.ID)
		assert.Equal(uint64(2), second.ID)
		assert.Equal(model.TaskStatusCreated, first.Status)

		stats, err := repo.GetUserStats(ctx, "carol")
		require.NoError(err)
		assert.Equal(uint64(2), stats.TasksCreated)

		count, err := repo.TaskCount(ctx)
		require.NoError(err)
		assert.Equal(uint64(2), count)
	})

	t.Run("committed events are appended to the log with the published ids", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		ctx := context.Background()

		repo, err := memory.NewRepository(memory.RepositoryConfig{})
		require.NoError(err)
		require.NoError(repo.AddGrant(ctx, model.Grant{
			Principal:  "questd",
			Capability: model.CapabilityMinter,
		}))

		notifier := event.NewNotifier(event.NotifierConfig{})
		sub, unsubscribe := notifier.Subscribe()
		defer unsubscribe()

		svc, err := taskcreate.NewService(taskcreate.ServiceConfig{
			Repository:   repo,
			Notifier:     notifier,
			MintIdentity: "questd",
		})
		require.NoError(err)

		task, err := svc.Run(ctx, validReq)
		require.NoError(err)

		logged, err := repo.ListEventsAfter(ctx, 0, 100)
		require.NoError(err)
		require.NotEmpty(logged)

		assert.Equal(model.EventTaskCreated, logged[0].Type)
		assert.Equal(task.ID, logged[0].TaskID)
		assert.Equal("carol", logged[0].User)

		// The live feed and the log carry the same stamped events.
		for _, want := range logged {
			got := <-sub
			assert.Equal(want.ID, got.ID)
			assert.Equal(want.Type, got.Type)
			assert.NotEmpty(got.ID)
		}
	})

	t.Run("rejected requests append nothing to the event log", func(t *testing.T) {
		require := require.New(t)
		ctx := context.Background()
		svc, repo := newTestService(t)

		_, err := svc.Run(ctx, taskcreate.Request{Creator: "carol", MetadataURI: "ipfs://task"})
		require.ErrorIs(err, model.ErrNotValid)

		logged, err := repo.ListEventsAfter(ctx, 0, 100)
		require.NoError(err)
		require.Empty(logged)
	})

	t.Run("invalid requests should fail", func(t *testing.T) {
		tests := map[string]taskcreate.Request{
			"missing creator": {
				MetadataURI: "ipfs://task",
				Reward:      []model.RewardEntry{{AssetID: 0, Amount: 50}},
			},
			"missing metadata URI": {
				Creator: "carol",
				Reward:  []model.RewardEntry{{AssetID: 0, Amount: 50}},
			},
			"empty reward": {
				Creator:     "carol",
				MetadataURI: "ipfs://task",
			},
			"zero reward amount": {
				Creator:     "carol",
				MetadataURI: "ipfs://task",
				Reward:      []model.RewardEntry{{AssetID: 0, Amount: 0}},
			},
		}

		for name, req := range tests {
			t.Run(name, func(t *testing.T) {
				svc, _ := newTestService(t)
				_, err := svc.Run(context.Background(), req)
				require.ErrorIs(t, err, model.ErrNotValid)
			})
		}
	})
}
