package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidequests/questd/internal/achievement"
	"github.com/sidequests/questd/internal/app/tasklist"
	"github.com/sidequests/questd/internal/app/userstats"
	"github.com/sidequests/questd/internal/event"
	"github.com/sidequests/questd/internal/model"
	"github.com/sidequests/questd/internal/storage/memory"
)

func newTestServer(t *testing.T) (*httptest.Server, *memory.Repository) {
	t.Helper()
	require := require.New(t)

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(err)

	engine, err := achievement.NewEngine(achievement.EngineConfig{Repository: repo, Identity: "questd"})
	require.NoError(err)

	tasks, err := tasklist.NewService(tasklist.ServiceConfig{Repository: repo})
	require.NoError(err)

	stats, err := userstats.NewService(userstats.ServiceConfig{Repository: repo, Engine: engine})
	require.NoError(err)

	srv, err := New(Config{
		Tasks:      tasks,
		Stats:      stats,
		Repository: repo,
		Notifier:   event.NewNotifier(event.NotifierConfig{}),
	})
	require.NoError(err)

	ts := httptest.NewServer(srv.server.Handler)
	t.Cleanup(ts.Close)

	return ts, repo
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	require := require.New(t)

	resp, err := http.Get(url)
	require.NoError(err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(json.NewDecoder(resp.Body).Decode(out))
	}

	return resp.StatusCode
}

func TestNew(t *testing.T) {
	tests := map[string]struct {
		config func(repo *memory.Repository) Config
		expErr bool
	}{
		"Missing task service should fail.": {
			config: func(repo *memory.Repository) Config {
				return Config{Repository: repo, Notifier: event.NewNotifier(event.NotifierConfig{})}
			},
			expErr: true,
		},
		"Missing repository should fail.": {
			config: func(repo *memory.Repository) Config {
				tasks, _ := tasklist.NewService(tasklist.ServiceConfig{Repository: repo})
				engine, _ := achievement.NewEngine(achievement.EngineConfig{Repository: repo, Identity: "questd"})
				stats, _ := userstats.NewService(userstats.ServiceConfig{Repository: repo, Engine: engine})
				return Config{Tasks: tasks, Stats: stats, Notifier: event.NewNotifier(event.NotifierConfig{})}
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo, err := memory.NewRepository(memory.RepositoryConfig{})
			require.NoError(t, err)

			_, err = New(test.config(repo))
			if test.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestServerHealthz(t *testing.T) {
	ts, _ := newTestServer(t)

	var body map[string]string
	status := getJSON(t, ts.URL+"/healthz", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestServerTasks(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	ts, repo := newTestServer(t)
	ctx := context.Background()

	id1, err := repo.CreateTask(ctx, model.Task{
		Creator:     "alice",
		MetadataURI: "ipfs://one",
		Reward:      []model.RewardEntry{{AssetID: model.FungibleAssetID, Amount: 100}},
		Status:      model.TaskStatusCreated,
	})
	require.NoError(err)

	id2, err := repo.CreateTask(ctx, model.Task{
		Creator:     "alice",
		Worker:      "bob",
		MetadataURI: "ipfs://two",
		Reward:      []model.RewardEntry{{AssetID: model.FungibleAssetID, Amount: 50}},
		Status:      model.TaskStatusInProgress,
	})
	require.NoError(err)

	t.Run("Listing all tasks should return both.", func(t *testing.T) {
		var items []taskResponse
		status := getJSON(t, ts.URL+"/v1/tasks", &items)

		assert.Equal(http.StatusOK, status)
		assert.Len(items, 2)
	})

	t.Run("Listing open tasks should filter out claimed ones.", func(t *testing.T) {
		var items []taskResponse
		status := getJSON(t, ts.URL+"/v1/tasks?open=true", &items)

		assert.Equal(http.StatusOK, status)
		require.Len(items, 1)
		assert.Equal(id1, items[0].ID)
	})

	t.Run("Filtering by worker should return the claimed task.", func(t *testing.T) {
		var items []taskResponse
		status := getJSON(t, ts.URL+"/v1/tasks?worker=bob", &items)

		assert.Equal(http.StatusOK, status)
		require.Len(items, 1)
		assert.Equal(id2, items[0].ID)
		assert.Equal("bob", items[0].Worker)
	})

	t.Run("The task count should cover all tasks ever created.", func(t *testing.T) {
		var count countResponse
		status := getJSON(t, ts.URL+"/v1/tasks/count", &count)

		assert.Equal(http.StatusOK, status)
		assert.Equal(uint64(2), count.Count)
	})

	t.Run("Getting a task by id should return its details.", func(t *testing.T) {
		var item taskResponse
		status := getJSON(t, fmt.Sprintf("%s/v1/tasks/%d", ts.URL, id1), &item)

		assert.Equal(http.StatusOK, status)
		assert.Equal("alice", item.Creator)
		assert.Equal("ipfs://one", item.MetadataURI)
		require.Len(item.Reward, 1)
		assert.Equal(uint64(100), item.Reward[0].Amount)
	})

	t.Run("Getting an unknown task should return 404.", func(t *testing.T) {
		status := getJSON(t, ts.URL+"/v1/tasks/999", nil)
		assert.Equal(http.StatusNotFound, status)
	})
}

func TestServerProfileAndBalance(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	ts, repo := newTestServer(t)
	ctx := context.Background()

	require.NoError(repo.AddBalance(ctx, "bob", model.FungibleAssetID, 250))
	require.NoError(repo.UpsertUserStats(ctx, model.UserStats{
		User:           "bob",
		TasksCompleted: 3,
		TokensEarned:   250,
		CurrentStreak:  2,
		MaxStreak:      2,
	}))

	t.Run("A user profile should aggregate stats and balance.", func(t *testing.T) {
		var profile profileResponse
		status := getJSON(t, ts.URL+"/v1/users/bob/profile", &profile)

		assert.Equal(http.StatusOK, status)
		assert.Equal("bob", profile.User)
		assert.Equal(uint64(250), profile.Balance)
		assert.Equal(uint64(3), profile.TasksCompleted)
		assert.Equal(uint64(2), profile.CurrentStreak)
	})

	t.Run("An unknown user should get an empty profile.", func(t *testing.T) {
		var profile profileResponse
		status := getJSON(t, ts.URL+"/v1/users/ghost/profile", &profile)

		assert.Equal(http.StatusOK, status)
		assert.Equal(uint64(0), profile.Balance)
		assert.Empty(profile.Badges)
	})

	t.Run("A stats query should return the counters alone.", func(t *testing.T) {
		var stats statsResponse
		status := getJSON(t, ts.URL+"/v1/users/bob/stats", &stats)

		assert.Equal(http.StatusOK, status)
		assert.Equal(uint64(3), stats.TasksCompleted)
		assert.Equal(uint64(250), stats.TokensEarned)
	})

	t.Run("A badges query should return the badge list.", func(t *testing.T) {
		var badges []badgeResponse
		status := getJSON(t, ts.URL+"/v1/users/bob/badges", &badges)

		assert.Equal(http.StatusOK, status)
		assert.Empty(badges)
	})

	t.Run("A balance query should return the held amount.", func(t *testing.T) {
		var balance balanceResponse
		status := getJSON(t, ts.URL+"/v1/users/bob/balance/0", &balance)

		assert.Equal(http.StatusOK, status)
		assert.Equal("bob", balance.Holder)
		assert.Equal(uint64(250), balance.Amount)
	})
}
