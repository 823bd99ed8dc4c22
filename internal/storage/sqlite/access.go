package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sidequests/questd/internal/model"
)

// HasCapability reports whether a principal holds a capability.
func (r *Repository) HasCapability(ctx context.Context, principal string, c model.Capability) (bool, error) {
	var one int
	err := r.q.QueryRowContext(ctx,
		`SELECT 1 FROM capability_grants WHERE principal = ? AND capability = ?`, principal, c).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("could not query capability: %w", err)
	}
	return true, nil
}

// AddGrant stores a capability grant.
func (r *Repository) AddGrant(ctx context.Context, g model.Grant) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO capability_grants (principal, capability) VALUES (?, ?)`, g.Principal, g.Capability)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("grant %s for %s: %w", g.Capability, g.Principal, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert grant: %w", err)
	}

	r.logger.Debugf("Granted %s to %s", g.Capability, g.Principal)
	return nil
}

// RemoveGrant deletes a capability grant.
func (r *Repository) RemoveGrant(ctx context.Context, g model.Grant) error {
	result, err := r.q.ExecContext(ctx,
		`DELETE FROM capability_grants WHERE principal = ? AND capability = ?`, g.Principal, g.Capability)
	if err != nil {
		return fmt.Errorf("could not delete grant: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("grant %s for %s: %w", g.Capability, g.Principal, model.ErrNotFound)
	}

	r.logger.Debugf("Revoked %s from %s", g.Capability, g.Principal)
	return nil
}

// ListGrants returns all grants of one capability, ordered by principal.
func (r *Repository) ListGrants(ctx context.Context, c model.Capability) ([]model.Grant, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT principal, capability FROM capability_grants WHERE capability = ? ORDER BY principal ASC`, c)
	if err != nil {
		return nil, fmt.Errorf("could not query grants: %w", err)
	}
	defer rows.Close()

	var grants []model.Grant
	for rows.Next() {
		var g model.Grant
		if err := rows.Scan(&g.Principal, &g.Capability); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		grants = append(grants, g)
	}

	return grants, rows.Err()
}
