// Package access implements the capability based access control consumed by
// the reward ledger and the task services.
package access

import (
	"context"
	"fmt"

	"github.com/sidequests/questd/internal/log"
	"github.com/sidequests/questd/internal/model"
	"github.com/sidequests/questd/internal/storage"
	storageio "github.com/sidequests/questd/internal/storage/io"
)

// ControllerConfig is the configuration for the access controller.
type ControllerConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ControllerConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "access.Controller"})
	return nil
}

// Controller checks and administers capability grants. Minter and Pauser
// grants are managed by Admin holders; adminship itself only moves through
// an explicit transfer.
type Controller struct {
	repo   storage.Repository
	logger log.Logger
}

// NewController creates a new access controller.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Controller{repo: cfg.Repository, logger: cfg.Logger}, nil
}

// Require fails with ErrUnauthorized if the principal does not hold the
// capability in the given repository view. It is a package-level helper so
// gated components can run the check against a transactional view.
func Require(ctx context.Context, r storage.AccessRepository, principal string, capability model.Capability) error {
	ok, err := r.HasCapability(ctx, principal, capability)
	if err != nil {
		return fmt.Errorf("could not check capability: %w", err)
	}
	if !ok {
		return fmt.Errorf("%s does not hold %s: %w", principal, capability, model.ErrUnauthorized)
	}
	return nil
}

// Has reports whether a principal holds a capability.
func (c *Controller) Has(ctx context.Context, principal string, capability model.Capability) (bool, error) {
	return c.repo.HasCapability(ctx, principal, capability)
}

// Require fails with ErrUnauthorized if the principal does not hold the
// capability.
func (c *Controller) Require(ctx context.Context, principal string, capability model.Capability) error {
	return Require(ctx, c.repo, principal, capability)
}

// Grant gives a principal the Minter or Pauser capability. Caller must be an
// admin. Adminship cannot be granted, only transferred.
func (c *Controller) Grant(ctx context.Context, caller string, capability model.Capability, principal string) error {
	if err := model.ValidateCapability(capability); err != nil {
		return err
	}
	if capability == model.CapabilityAdmin {
		return fmt.Errorf("adminship can only change through an explicit transfer: %w", model.ErrNotValid)
	}
	if principal == "" {
		return fmt.Errorf("principal is required: %w", model.ErrNotValid)
	}

	return c.repo.Atomic(ctx, func(ctx context.Context, r storage.Repository) error {
		ok, err := r.HasCapability(ctx, caller, model.CapabilityAdmin)
		if err != nil {
			return fmt.Errorf("could not check capability: %w", err)
		}
		if !ok {
			return fmt.Errorf("%s is not an admin: %w", caller, model.ErrUnauthorized)
		}

		if err := r.AddGrant(ctx, model.Grant{Principal: principal, Capability: capability}); err != nil {
			return err
		}

		c.logger.Infof("granted %s to %s", capability, principal)
		return nil
	})
}

// Revoke removes a principal's Minter or Pauser capability. Caller must be
// an admin.
func (c *Controller) Revoke(ctx context.Context, caller string, capability model.Capability, principal string) error {
	if err := model.ValidateCapability(capability); err != nil {
		return err
	}
	if capability == model.CapabilityAdmin {
		return fmt.Errorf("adminship can only change through an explicit transfer: %w", model.ErrNotValid)
	}

	return c.repo.Atomic(ctx, func(ctx context.Context, r storage.Repository) error {
		ok, err := r.HasCapability(ctx, caller, model.CapabilityAdmin)
		if err != nil {
			return fmt.Errorf("could not check capability: %w", err)
		}
		if !ok {
			return fmt.Errorf("%s is not an admin: %w", caller, model.ErrUnauthorized)
		}

		if err := r.RemoveGrant(ctx, model.Grant{Principal: principal, Capability: capability}); err != nil {
			return err
		}

		c.logger.Infof("revoked %s from %s", capability, principal)
		return nil
	})
}

// TransferAdmin moves adminship from the caller to another principal in one
// atomic step. The ledger always keeps at least one admin.
func (c *Controller) TransferAdmin(ctx context.Context, caller, newAdmin string) error {
	if newAdmin == "" {
		return fmt.Errorf("new admin is required: %w", model.ErrNotValid)
	}
	if newAdmin == caller {
		return fmt.Errorf("cannot transfer adminship to self: %w", model.ErrNotValid)
	}

	return c.repo.Atomic(ctx, func(ctx context.Context, r storage.Repository) error {
		ok, err := r.HasCapability(ctx, caller, model.CapabilityAdmin)
		if err != nil {
			return fmt.Errorf("could not check capability: %w", err)
		}
		if !ok {
			return fmt.Errorf("%s is not an admin: %w", caller, model.ErrUnauthorized)
		}

		if err := r.AddGrant(ctx, model.Grant{Principal: newAdmin, Capability: model.CapabilityAdmin}); err != nil {
			return err
		}
		if err := r.RemoveGrant(ctx, model.Grant{Principal: caller, Capability: model.CapabilityAdmin}); err != nil {
			return err
		}

		c.logger.Infof("transferred adminship from %s to %s", caller, newAdmin)
		return nil
	})
}

// Seed applies genesis bindings to an empty access control set: the initial
// admin plus any out-of-band Minter/Pauser grants. It fails if an admin is
// already configured.
func (c *Controller) Seed(ctx context.Context, genesis storageio.Genesis) error {
	if genesis.Admin == "" {
		return fmt.Errorf("genesis admin is required: %w", model.ErrNotValid)
	}

	return c.repo.Atomic(ctx, func(ctx context.Context, r storage.Repository) error {
		admins, err := r.ListGrants(ctx, model.CapabilityAdmin)
		if err != nil {
			return fmt.Errorf("could not list admins: %w", err)
		}
		if len(admins) > 0 {
			return fmt.Errorf("ledger already has an admin: %w", model.ErrAlreadyExists)
		}

		if err := r.AddGrant(ctx, model.Grant{Principal: genesis.Admin, Capability: model.CapabilityAdmin}); err != nil {
			return err
		}
		for _, m := range genesis.Minters {
			if err := r.AddGrant(ctx, model.Grant{Principal: m, Capability: model.CapabilityMinter}); err != nil {
				return err
			}
		}
		for _, p := range genesis.Pausers {
			if err := r.AddGrant(ctx, model.Grant{Principal: p, Capability: model.CapabilityPauser}); err != nil {
				return err
			}
		}

		c.logger.Infof("seeded access control: admin=%s minters=%d pausers=%d", genesis.Admin, len(genesis.Minters), len(genesis.Pausers))
		return nil
	})
}
