// Package ledger implements the multi-asset reward ledger: one fungible
// currency (asset 0) and badge assets (ids >= 1), with capability gated
// minting and an administrative pause switch.
package ledger

import (
	"context"
	"fmt"

	"github.com/sidequests/questd/internal/access"
	"github.com/sidequests/questd/internal/log"
	"github.com/sidequests/questd/internal/model"
	"github.com/sidequests/questd/internal/storage"
)

// ServiceConfig is the configuration for the reward ledger service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "ledger.Service"})
	return nil
}

// Service is the reward ledger.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new reward ledger service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Mint increases a holder's balance of one asset. The caller must hold the
// Minter capability and the ledger must not be paused.
func (s *Service) Mint(ctx context.Context, caller, to string, assetID, amount uint64) error {
	return s.MintBatch(ctx, caller, to, []uint64{assetID}, []uint64{amount})
}

// MintBatch mints several assets to one holder atomically: either every
// entry applies or none.
func (s *Service) MintBatch(ctx context.Context, caller, to string, assetIDs, amounts []uint64) error {
	if len(assetIDs) != len(amounts) {
		return fmt.Errorf("asset and amount lengths differ (%d vs %d): %w", len(assetIDs), len(amounts), model.ErrNotValid)
	}
	if len(assetIDs) == 0 {
		return fmt.Errorf("mint batch requires at least one entry: %w", model.ErrNotValid)
	}
	if to == "" {
		return fmt.Errorf("mint recipient is required: %w", model.ErrNotValid)
	}
	for i, amount := range amounts {
		if amount == 0 {
			return fmt.Errorf("mint amount for asset %d must be positive: %w", assetIDs[i], model.ErrNotValid)
		}
	}

	return s.repo.Atomic(ctx, func(ctx context.Context, r storage.Repository) error {
		if err := access.Require(ctx, r, caller, model.CapabilityMinter); err != nil {
			return err
		}
		if err := requireNotPaused(ctx, r); err != nil {
			return err
		}

		for i := range assetIDs {
			if err := r.AddBalance(ctx, to, assetIDs[i], amounts[i]); err != nil {
				return err
			}
		}

		s.logger.Debugf("minted %d assets to %s", len(assetIDs), to)
		return nil
	})
}

// Burn destroys part of the caller's own fungible balance (asset 0).
func (s *Service) Burn(ctx context.Context, caller string, amount uint64) error {
	if amount == 0 {
		return fmt.Errorf("burn amount must be positive: %w", model.ErrNotValid)
	}

	return s.repo.Atomic(ctx, func(ctx context.Context, r storage.Repository) error {
		if err := requireNotPaused(ctx, r); err != nil {
			return err
		}
		return r.SubBalance(ctx, caller, model.FungibleAssetID, amount)
	})
}

// BalanceOf returns a holder's balance of one asset. Pure read.
func (s *Service) BalanceOf(ctx context.Context, holder string, assetID uint64) (uint64, error) {
	return s.repo.GetBalance(ctx, holder, assetID)
}

// Paused reports whether the ledger is administratively halted.
func (s *Service) Paused(ctx context.Context) (bool, error) {
	state, err := s.repo.GetLedgerState(ctx)
	if err != nil {
		return false, err
	}
	return state.Paused, nil
}

// Pause halts all mints and burns. Caller must hold the Pauser capability.
func (s *Service) Pause(ctx context.Context, caller string) error {
	return s.setPaused(ctx, caller, true)
}

// Unpause lifts an administrative halt. Caller must hold the Pauser
// capability.
func (s *Service) Unpause(ctx context.Context, caller string) error {
	return s.setPaused(ctx, caller, false)
}

func (s *Service) setPaused(ctx context.Context, caller string, paused bool) error {
	return s.repo.Atomic(ctx, func(ctx context.Context, r storage.Repository) error {
		if err := access.Require(ctx, r, caller, model.CapabilityPauser); err != nil {
			return err
		}

		state, err := r.GetLedgerState(ctx)
		if err != nil {
			return err
		}
		if state.Paused == paused {
			return fmt.Errorf("ledger already in requested pause state: %w", model.ErrInvalidState)
		}

		if err := r.SetLedgerState(ctx, model.LedgerState{Paused: paused}); err != nil {
			return err
		}

		s.logger.Infof("ledger paused=%t (by %s)", paused, caller)
		return nil
	})
}

func requireNotPaused(ctx context.Context, r storage.Repository) error {
	state, err := r.GetLedgerState(ctx)
	if err != nil {
		return err
	}
	if state.Paused {
		return fmt.Errorf("operation rejected: %w", model.ErrPaused)
	}
	return nil
}
