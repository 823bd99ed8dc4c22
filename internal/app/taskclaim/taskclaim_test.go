package taskclaim_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sidequests/questd/internal/app/taskclaim"
	"github.com/sidequests/questd/internal/event"
	"github.com/sidequests/questd/internal/model"
	"github.com/sidequests/questd/internal/storage/storagemock"
)

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config taskclaim.ServiceConfig
		expErr bool
	}{
		"valid config should create service": {
			config: taskclaim.ServiceConfig{
				Repository: &storagemock.MockRepository{},
				Notifier:   event.NewNotifier(event.NotifierConfig{}),
			},
			expErr: false,
		},
		"missing repository should fail": {
			config: taskclaim.ServiceConfig{
				Notifier: event.NewNotifier(event.NotifierConfig{}),
			},
			expErr: true,
		},
		"missing notifier should fail": {
			config: taskclaim.ServiceConfig{
				Repository: &storagemock.MockRepository{},
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			svc, err := taskclaim.NewService(test.config)
			if test.expErr {
				require.Error(err)
			} else {
				require.NoError(err)
				require.NotNil(svc)
			}
		})
	}
}

func TestServiceRun(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	openTask := model.Task{
		ID:          7,
		Creator:     "carol",
		MetadataURI: "ipfs://task",
		Reward:      []model.RewardEntry{{AssetID: 0, Amount: 50}},
		Status:      model.TaskStatusCreated,
		CreatedAt:   createdAt,
	}

	tests := map[string]struct {
		mockRepo func(m *storagemock.MockRepository)
		req      taskclaim.Request
		expErr   error
	}{
		"claim an open task": {
			mockRepo: func(m *storagemock.MockRepository) {
				task := openTask
				m.On("GetTask", mock.Anything, uint64(7)).Once().Return(&task, nil)
				m.On("UpdateTask", mock.Anything, mock.MatchedBy(func(task model.Task) bool {
					return task.Status == model.TaskStatusInProgress &&
						task.Worker == "alice" && task.ClaimedAt != nil
				})).Once().Return(nil)
				m.On("AppendEvent", mock.Anything, mock.MatchedBy(func(e model.Event) bool {
					return e.Type == model.EventTaskClaimed && e.TaskID == 7 && e.User == "alice" && e.ID != ""
				})).Once().Return(nil)
			},
			req: taskclaim.Request{TaskID: 7, Worker: "alice"},
		},
		"already claimed tasks cannot be claimed": {
			mockRepo: func(m *storagemock.MockRepository) {
				task := openTask
				task.Worker = "bob"
				task.Status = model.TaskStatusInProgress
				m.On("GetTask", mock.Anything, uint64(7)).Once().Return(&task, nil)
			},
			req:    taskclaim.Request{TaskID: 7, Worker: "alice"},
			expErr: model.ErrInvalidState,
		},
		"creators cannot claim their own tasks": {
			mockRepo: func(m *storagemock.MockRepository) {
				task := openTask
				m.On("GetTask", mock.Anything, uint64(7)).Once().Return(&task, nil)
			},
			req:    taskclaim.Request{TaskID: 7, Worker: "carol"},
			expErr: model.ErrNotValid,
		},
		"unknown task should fail": {
			mockRepo: func(m *storagemock.MockRepository) {
				m.On("GetTask", mock.Anything, uint64(99)).Once().Return(nil, model.ErrNotFound)
			},
			req:    taskclaim.Request{TaskID: 99, Worker: "alice"},
			expErr: model.ErrNotFound,
		},
		"missing worker should fail": {
			mockRepo: func(m *storagemock.MockRepository) {},
			req:      taskclaim.Request{TaskID: 7},
			expErr:   model.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			repo := &storagemock.MockRepository{}
			test.mockRepo(repo)

			svc, err := taskclaim.NewService(taskclaim.ServiceConfig{
				Repository: repo,
				Notifier:   event.NewNotifier(event.NotifierConfig{}),
			})
			require.NoError(err)

			task, err := svc.Run(context.Background(), test.req)
			if test.expErr != nil {
				require.ErrorIs(err, test.expErr)
			} else {
				require.NoError(err)
				assert.Equal(model.TaskStatusInProgress, task.Status)
				assert.Equal(test.req.Worker, task.Worker)
			}

			repo.AssertExpectations(t)
		})
	}
}
