package sqlite

import (
	"context"
	"fmt"

	"github.com/sidequests/questd/internal/model"
)

// GetBalance returns the balance of one asset for a holder, zero if the
// holder never held the asset.
func (r *Repository) GetBalance(ctx context.Context, holder string, assetID uint64) (uint64, error) {
	var amount uint64
	err := r.q.QueryRowContext(ctx,
		`SELECT COALESCE((SELECT amount FROM balances WHERE holder = ? AND asset_id = ?), 0)`,
		holder, assetID).Scan(&amount)
	if err != nil {
		return 0, fmt.Errorf("could not query balance: %w", err)
	}
	return amount, nil
}

// AddBalance increases a holder's balance of an asset.
func (r *Repository) AddBalance(ctx context.Context, holder string, assetID uint64, amount uint64) error {
	query := `
		INSERT INTO balances (holder, asset_id, amount) VALUES (?, ?, ?)
		ON CONFLICT (holder, asset_id) DO UPDATE SET amount = amount + excluded.amount
	`
	if _, err := r.q.ExecContext(ctx, query, holder, assetID, amount); err != nil {
		return fmt.Errorf("could not add balance: %w", err)
	}

	r.logger.Debugf("Added %d of asset %d to %s", amount, assetID, holder)
	return nil
}

// SubBalance decreases a holder's balance of an asset. Fails if the holder
// does not have enough.
func (r *Repository) SubBalance(ctx context.Context, holder string, assetID uint64, amount uint64) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE balances SET amount = amount - ? WHERE holder = ? AND asset_id = ? AND amount >= ?`,
		amount, holder, assetID, amount)
	if err != nil {
		return fmt.Errorf("could not subtract balance: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("insufficient balance of asset %d for %s: %w", assetID, holder, model.ErrNotValid)
	}

	return nil
}

// ListBadgeAssets returns the badge asset ids the holder has a positive
// balance of, ordered by asset id.
func (r *Repository) ListBadgeAssets(ctx context.Context, holder string) ([]uint64, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT asset_id FROM balances WHERE holder = ? AND asset_id >= ? AND amount > 0 ORDER BY asset_id ASC`,
		holder, model.BadgeAssetIDBase)
	if err != nil {
		return nil, fmt.Errorf("could not query badge assets: %w", err)
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// GetLedgerState returns the administrative state of the reward ledger.
func (r *Repository) GetLedgerState(ctx context.Context) (model.LedgerState, error) {
	var paused int
	err := r.q.QueryRowContext(ctx, `SELECT paused FROM ledger_state WHERE id = 1`).Scan(&paused)
	if err != nil {
		return model.LedgerState{}, fmt.Errorf("could not query ledger state: %w", err)
	}
	return model.LedgerState{Paused: paused != 0}, nil
}

// SetLedgerState stores the administrative state of the reward ledger.
func (r *Repository) SetLedgerState(ctx context.Context, s model.LedgerState) error {
	paused := 0
	if s.Paused {
		paused = 1
	}
	if _, err := r.q.ExecContext(ctx, `UPDATE ledger_state SET paused = ? WHERE id = 1`, paused); err != nil {
		return fmt.Errorf("could not update ledger state: %w", err)
	}

	r.logger.Debugf("Updated ledger state: paused=%t", s.Paused)
	return nil
}
