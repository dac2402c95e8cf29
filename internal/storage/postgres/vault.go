package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jmcrae/delve/internal/game/storage"
)

// ErrVaultIndexOutOfRange is returned when a removal addresses a position
// beyond the persisted list.
var ErrVaultIndexOutOfRange = errors.New("vault index out of range")

// VaultRepository is the authoritative store for one save file's persistent
// vault item list. It satisfies storage.SaveStore.
type VaultRepository struct {
	db     *pgxpool.Pool
	saveID string
}

// NewVaultRepository creates a VaultRepository for the given save file.
//
// Precondition: db must be a valid, open connection pool; saveID non-empty.
func NewVaultRepository(db *pgxpool.Pool, saveID string) *VaultRepository {
	return &VaultRepository{db: db, saveID: saveID}
}

// GetVaultItems returns the persisted item list in position order.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *VaultRepository) GetVaultItems(ctx context.Context) ([]storage.SavedItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT item_id, stack_count
		FROM vault_items WHERE save_id = $1 ORDER BY position ASC`,
		r.saveID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing vault items: %w", err)
	}
	defer rows.Close()

	items := make([]storage.SavedItem, 0)
	for rows.Next() {
		var it storage.SavedItem
		if err := rows.Scan(&it.ItemID, &it.Count); err != nil {
			return nil, fmt.Errorf("scanning vault item row: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SetVaultItems replaces the persisted item list with items in one
// transaction; this is the write-through path for every vault mutation.
//
// Postcondition: positions are assigned 0..len(items)-1 in slice order.
func (r *VaultRepository) SetVaultItems(ctx context.Context, items []storage.SavedItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning vault transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM vault_items WHERE save_id = $1`, r.saveID); err != nil {
		return fmt.Errorf("clearing vault items: %w", err)
	}
	for i, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO vault_items (save_id, position, item_id, stack_count)
			VALUES ($1, $2, $3, $4)`,
			r.saveID, i, it.ItemID, it.Count,
		); err != nil {
			return fmt.Errorf("inserting vault item at %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing vault transaction: %w", err)
	}
	return nil
}

// AddItemToVault appends a stack to the end of the persisted list.
//
// Precondition: count >= 1.
func (r *VaultRepository) AddItemToVault(ctx context.Context, itemID string, count int) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO vault_items (save_id, position, item_id, stack_count)
		SELECT $1, COALESCE(MAX(position) + 1, 0), $2, $3
		FROM vault_items WHERE save_id = $1`,
		r.saveID, itemID, count,
	)
	if err != nil {
		return fmt.Errorf("appending vault item: %w", err)
	}
	return nil
}

// RemoveItemFromVault decrements the stack at list index by count, deleting
// the row (and compacting later positions) when the stack is exhausted. A
// negative count removes the whole stack.
//
// Postcondition: Returns ErrVaultIndexOutOfRange when index does not address
// a persisted row.
func (r *VaultRepository) RemoveItemFromVault(ctx context.Context, index, count int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning vault transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var position, stack int
	err = tx.QueryRow(ctx, `
		SELECT position, stack_count
		FROM vault_items WHERE save_id = $1
		ORDER BY position ASC OFFSET $2 LIMIT 1`,
		r.saveID, index,
	).Scan(&position, &stack)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrVaultIndexOutOfRange
	}
	if err != nil {
		return fmt.Errorf("locating vault item %d: %w", index, err)
	}

	if count < 0 || count >= stack {
		if _, err := tx.Exec(ctx, `
			DELETE FROM vault_items WHERE save_id = $1 AND position = $2`,
			r.saveID, position,
		); err != nil {
			return fmt.Errorf("deleting vault item: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE vault_items SET position = position - 1
			WHERE save_id = $1 AND position > $2`,
			r.saveID, position,
		); err != nil {
			return fmt.Errorf("compacting vault positions: %w", err)
		}
	} else {
		if _, err := tx.Exec(ctx, `
			UPDATE vault_items SET stack_count = stack_count - $3
			WHERE save_id = $1 AND position = $2`,
			r.saveID, position, count,
		); err != nil {
			return fmt.Errorf("decrementing vault item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing vault transaction: %w", err)
	}
	return nil
}
