// Package transfer implements the interaction protocol that moves item
// stacks between storage pools and the world: pointer drag-and-drop, click
// equip, and the keyboard/controller cursor. The protocol is stateless
// beyond the in-flight drag and cursor payload; it is parameterized by
// whichever stores are active, never by process-wide lookups.
package transfer

import (
	"context"
	"errors"

	"github.com/jmcrae/delve/internal/game/storage"
)

// Store is the slot-level contract both the player inventory and an open
// vault satisfy. TryAccept is the explicit accept/reject half of a
// cross-store transfer: it must answer without mutating anything, so a
// rejected transfer leaves the source untouched.
type Store interface {
	Len() int
	At(index int) storage.Slot
	AddItem(ctx context.Context, itemID string, count int) (int, error)
	AddItemToSlot(ctx context.Context, itemID string, count, index int) (bool, error)
	RemoveAtSlot(ctx context.Context, index, count int) (int, error)
	Swap(ctx context.Context, i, j int) (bool, error)
	TryAccept(itemID string, count int) bool
}

// Scroller is implemented by stores with a row-granular scroll window; the
// cursor navigator uses it to keep the highlight visible.
type Scroller interface {
	Scroll(deltaRows int)
	EnsureVisible(row int)
}

// DropTarget names the slot under the pointer at release time. A nil
// *DropTarget means the pointer is outside every store.
type DropTarget struct {
	Store Store
	Index int
}

var (
	// ErrDragActive is returned when an operation is excluded by an in-flight drag.
	ErrDragActive = errors.New("transfer: a drag is already active")
	// ErrCursorHolding is returned when an operation is excluded by a cursor-held payload.
	ErrCursorHolding = errors.New("transfer: cursor is holding a payload")
	// ErrNoDrag is returned when a drag operation is requested with no drag in flight.
	ErrNoDrag = errors.New("transfer: no drag in progress")
	// ErrEmptySlot is returned when a drag is started on an empty slot.
	ErrEmptySlot = errors.New("transfer: slot is empty")
	// ErrInvalidSlot is returned for out-of-bounds slot indices.
	ErrInvalidSlot = errors.New("transfer: slot index out of bounds")
	// ErrVaultAlreadyOpen is returned when opening a vault while one is open.
	ErrVaultAlreadyOpen = errors.New("transfer: a vault is already open")
	// ErrUIAlreadyOpen is returned when opening the cursor UI twice.
	ErrUIAlreadyOpen = errors.New("transfer: cursor UI is already open")
	// ErrUINotOpen is returned when cursor input arrives with no UI open.
	ErrUINotOpen = errors.New("transfer: cursor UI is not open")
	// ErrCannotReturn is returned when a held payload cannot be fully returned on close.
	ErrCannotReturn = errors.New("transfer: cannot return held payload")
)
