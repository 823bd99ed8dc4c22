package event_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidequests/questd/internal/event"
	"github.com/sidequests/questd/internal/model"
	"github.com/sidequests/questd/internal/storage/memory"
)

func TestTailerRun(t *testing.T) {
	t.Run("Events appended to the log should reach subscribers with their stamped ids.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		repo, err := memory.NewRepository(memory.RepositoryConfig{})
		require.NoError(err)

		n := event.NewNotifier(event.NotifierConfig{})
		ch, unsubscribe := n.Subscribe()
		defer unsubscribe()

		tailer, err := event.NewTailer(event.TailerConfig{
			Repository: repo,
			Notifier:   n,
			Interval:   5 * time.Millisecond,
		})
		require.NoError(err)

		done := make(chan error, 1)
		go func() { done <- tailer.Run(ctx) }()

		created := n.Stamp(model.Event{Type: model.EventTaskCreated, TaskID: 1, User: "carol"})
		claimed := n.Stamp(model.Event{Type: model.EventTaskClaimed, TaskID: 1, User: "alice"})
		require.NoError(repo.AppendEvent(ctx, created))
		require.NoError(repo.AppendEvent(ctx, claimed))

		got1 := receiveEvent(t, ch)
		got2 := receiveEvent(t, ch)

		assert.Equal(created.ID, got1.ID)
		assert.Equal(model.EventTaskCreated, got1.Type)
		assert.Equal(claimed.ID, got2.ID)
		assert.Equal("alice", got2.User)

		cancel()
		require.NoError(<-done)
	})

	t.Run("Events committed before the tailer starts should not be replayed.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		repo, err := memory.NewRepository(memory.RepositoryConfig{})
		require.NoError(err)

		n := event.NewNotifier(event.NotifierConfig{})
		old := n.Stamp(model.Event{Type: model.EventTaskCreated, TaskID: 1, User: "carol"})
		require.NoError(repo.AppendEvent(ctx, old))

		ch, unsubscribe := n.Subscribe()
		defer unsubscribe()

		tailer, err := event.NewTailer(event.TailerConfig{
			Repository: repo,
			Notifier:   n,
			Interval:   5 * time.Millisecond,
		})
		require.NoError(err)

		done := make(chan error, 1)
		go func() { done <- tailer.Run(ctx) }()

		// Give the tailer time to take its starting position past the old
		// event before committing a new one.
		time.Sleep(50 * time.Millisecond)

		fresh := n.Stamp(model.Event{Type: model.EventTaskVerified, TaskID: 1, User: "alice"})
		require.NoError(repo.AppendEvent(ctx, fresh))

		got := receiveEvent(t, ch)
		assert.Equal(fresh.ID, got.ID)
		assert.Equal(model.EventTaskVerified, got.Type)

		cancel()
		require.NoError(<-done)
	})
}

func receiveEvent(t *testing.T, ch <-chan model.Event) model.Event {
	t.Helper()

	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return model.Event{}
	}
}
