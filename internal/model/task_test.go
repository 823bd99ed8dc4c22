package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sidequests/questd/internal/model"
)

func TestValidateReward(t *testing.T) {
	tests := map[string]struct {
		reward []model.RewardEntry
		expErr error
	}{
		"single positive entry is valid": {
			reward: []model.RewardEntry{{AssetID: 0, Amount: 50}},
		},
		"multiple positive entries are valid": {
			reward: []model.RewardEntry{{AssetID: 0, Amount: 50}, {AssetID: 3, Amount: 1}},
		},
		"empty spec is invalid": {
			reward: nil,
			expErr: model.ErrNotValid,
		},
		"zero amount is invalid": {
			reward: []model.RewardEntry{{AssetID: 0, Amount: 0}},
			expErr: model.ErrNotValid,
		},
		"zero amount among valid entries is invalid": {
			reward: []model.RewardEntry{{AssetID: 0, Amount: 10}, {AssetID: 1, Amount: 0}},
			expErr: model.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := model.ValidateReward(test.reward)
			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTaskTransitions(t *testing.T) {
	base := model.Task{
		ID:      1,
		Creator: "alice",
		Status:  model.TaskStatusCreated,
	}

	inProgress := base
	inProgress.Status = model.TaskStatusInProgress
	inProgress.Worker = "bob"

	completed := inProgress
	completed.Status = model.TaskStatusCompleted

	verified := completed
	verified.Status = model.TaskStatusVerified

	tests := map[string]struct {
		check  func() error
		expErr error
	}{
		"open task can be claimed": {
			check: func() error { return base.CanClaim("bob") },
		},
		"creator cannot claim own task": {
			check:  func() error { return base.CanClaim("alice") },
			expErr: model.ErrNotValid,
		},
		"claimed task cannot be claimed again": {
			check:  func() error { return inProgress.CanClaim("carol") },
			expErr: model.ErrInvalidState,
		},
		"verified task cannot be claimed": {
			check:  func() error { return verified.CanClaim("carol") },
			expErr: model.ErrInvalidState,
		},
		"assigned worker can complete": {
			check: func() error { return inProgress.CanComplete("bob") },
		},
		"non-worker cannot complete": {
			check:  func() error { return inProgress.CanComplete("carol") },
			expErr: model.ErrUnauthorized,
		},
		"open task cannot be completed": {
			check:  func() error { return base.CanComplete("") },
			expErr: model.ErrUnauthorized,
		},
		"creator can verify completed task": {
			check: func() error { return completed.CanVerify("alice") },
		},
		"worker cannot verify": {
			check:  func() error { return completed.CanVerify("bob") },
			expErr: model.ErrUnauthorized,
		},
		"in progress task cannot be verified": {
			check:  func() error { return inProgress.CanVerify("alice") },
			expErr: model.ErrInvalidState,
		},
		"verified task cannot be verified again": {
			check:  func() error { return verified.CanVerify("alice") },
			expErr: model.ErrInvalidState,
		},
		"creator can cancel open task": {
			check: func() error { return base.CanCancel("alice") },
		},
		"non-creator cannot cancel": {
			check:  func() error { return base.CanCancel("bob") },
			expErr: model.ErrUnauthorized,
		},
		"claimed task cannot be cancelled": {
			check:  func() error { return inProgress.CanCancel("alice") },
			expErr: model.ErrInvalidState,
		},
		"completed task cannot be cancelled": {
			check:  func() error { return completed.CanCancel("alice") },
			expErr: model.ErrInvalidState,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.check()
			if test.expErr != nil {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, test.expErr), "expected %v, got %v", test.expErr, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
