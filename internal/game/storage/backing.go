package storage

import (
	"context"

	"github.com/google/uuid"
)

// Backing is the authoritative storage behind an open vault: the save-file
// item list for the player vault, or one container entity's own list for
// everything else. Exactly one backing is active per open session; the two
// are never merged. Save is a write-through call and may block on I/O.
type Backing interface {
	// Load returns the ordered persisted item list.
	Load(ctx context.Context) ([]SavedItem, error)
	// Save replaces the persisted item list with items.
	Save(ctx context.Context, items []SavedItem) error
}

// LocalBacking is the item list owned by one specific container entity. It
// lives and dies with that entity and is never shared with the save file.
type LocalBacking struct {
	// ContainerID identifies the owning container entity.
	ContainerID uuid.UUID

	items []SavedItem
}

// NewLocalBacking creates an empty backing for a fresh container entity.
func NewLocalBacking() *LocalBacking {
	return &LocalBacking{ContainerID: uuid.New()}
}

// NewLocalBackingWithItems creates a backing seeded with a container's
// existing item list.
//
// Postcondition: the backing owns a copy of items.
func NewLocalBackingWithItems(containerID uuid.UUID, items []SavedItem) *LocalBacking {
	out := make([]SavedItem, len(items))
	copy(out, items)
	return &LocalBacking{ContainerID: containerID, items: out}
}

// Load returns a copy of the container's item list.
func (b *LocalBacking) Load(_ context.Context) ([]SavedItem, error) {
	out := make([]SavedItem, len(b.items))
	copy(out, b.items)
	return out, nil
}

// Save replaces the container's item list with a copy of items.
func (b *LocalBacking) Save(_ context.Context, items []SavedItem) error {
	b.items = make([]SavedItem, len(items))
	copy(b.items, items)
	return nil
}

// SaveStore is the narrow persistence contract the save-file vault is read
// and written through; the postgres repository implements it.
type SaveStore interface {
	GetVaultItems(ctx context.Context) ([]SavedItem, error)
	SetVaultItems(ctx context.Context, items []SavedItem) error
}

// SaveBacking adapts a SaveStore to the Backing interface for the persistent
// player vault.
type SaveBacking struct {
	store SaveStore
}

// NewSaveBacking wraps store as a vault backing.
//
// Precondition: store must not be nil.
func NewSaveBacking(store SaveStore) *SaveBacking {
	return &SaveBacking{store: store}
}

// Load reads the save-file item list.
func (b *SaveBacking) Load(ctx context.Context) ([]SavedItem, error) {
	return b.store.GetVaultItems(ctx)
}

// Save writes items back to the save file.
func (b *SaveBacking) Save(ctx context.Context, items []SavedItem) error {
	return b.store.SetVaultItems(ctx, items)
}
