package storage

import (
	"context"
	"strings"

	"github.com/jmcrae/delve/internal/game/item"
)

const (
	// InventorySize is the fixed slot count of the player inventory.
	InventorySize = 32
	// HotbarSize is the number of leading grid slots exposed as the hotbar.
	HotbarSize = 5
)

// PlayerInventory is the player's 32-slot grid plus the hotbar selection.
// The hotbar is a view over grid indices [0, HotbarSize), never a second
// array: the held item is exactly grid[selected]. One PlayerInventory exists
// per play session and is exclusively owned by the active player entity.
//
// The mutating methods accept a context and return an error to satisfy the
// shared store contract with VaultStore; the inventory itself is purely
// in-memory and its operations are synchronous and infallible.
type PlayerInventory struct {
	grid     *SlotGrid
	selected int
}

// NewPlayerInventory creates an empty inventory with hotbar slot 0 selected.
func NewPlayerInventory(catalog *item.Catalog) *PlayerInventory {
	return &PlayerInventory{
		grid: NewSlotGrid(catalog, InventorySize),
	}
}

// Grid exposes the underlying slot grid for read-mostly collaborators.
func (p *PlayerInventory) Grid() *SlotGrid {
	return p.grid
}

// Len returns the fixed slot count.
func (p *PlayerInventory) Len() int {
	return p.grid.Len()
}

// At returns a copy of the slot at index.
func (p *PlayerInventory) At(index int) Slot {
	return p.grid.At(index)
}

// AddItem places count units of itemID per the grid stacking rules and
// returns the unplaced overflow.
func (p *PlayerInventory) AddItem(_ context.Context, itemID string, count int) (int, error) {
	return p.grid.AddItem(itemID, count), nil
}

// AddItemToSlot places count units preferentially at index; see
// SlotGrid.AddItemToSlot.
func (p *PlayerInventory) AddItemToSlot(_ context.Context, itemID string, count, index int) (bool, error) {
	return p.grid.AddItemToSlot(itemID, count, index), nil
}

// RemoveAtSlot removes up to count units (negative count = whole stack) from
// the slot at index and returns the number removed.
func (p *PlayerInventory) RemoveAtSlot(_ context.Context, index, count int) (int, error) {
	return p.grid.RemoveAtSlot(index, count), nil
}

// Swap exchanges the contents of two slots.
func (p *PlayerInventory) Swap(_ context.Context, i, j int) (bool, error) {
	return p.grid.Swap(i, j), nil
}

// TryAccept reports whether count units of itemID would fit.
func (p *PlayerInventory) TryAccept(itemID string, count int) bool {
	return p.grid.CanAccept(itemID, count)
}

// SelectedSlot returns the hotbar selection index in [0, HotbarSize).
func (p *PlayerInventory) SelectedSlot() int {
	return p.selected
}

// SelectSlot sets the hotbar selection.
//
// Postcondition: returns false, leaving the selection unchanged, when index
// is outside [0, HotbarSize).
func (p *PlayerInventory) SelectSlot(index int) bool {
	if index < 0 || index >= HotbarSize {
		return false
	}
	p.selected = index
	return true
}

// CycleSelected moves the hotbar selection by delta, wrapping within
// [0, HotbarSize).
func (p *PlayerInventory) CycleSelected(delta int) {
	sel := (p.selected + delta) % HotbarSize
	if sel < 0 {
		sel += HotbarSize
	}
	p.selected = sel
}

// HeldItem returns a copy of the currently selected hotbar slot. Because the
// hotbar is a view, writes to the underlying grid index are reflected here
// immediately.
func (p *PlayerInventory) HeldItem() Slot {
	return p.grid.At(p.selected)
}

// ConsumeAmmo removes one unit of the first stack whose item id or display
// name contains name (case-insensitive substring, ascending slot index) and
// returns the removed unit for damage calculation.
//
// Two ammo families with overlapping names ("arrow", "fire arrow") are not
// distinguished; callers must pass sufficiently specific identifiers.
//
// Postcondition: on a match, the stack is decremented by one and the result
// is (removed unit, true); otherwise (zero Slot, false) with nothing changed.
func (p *PlayerInventory) ConsumeAmmo(name string) (Slot, bool) {
	index := p.findAmmo(name)
	if index < 0 {
		return Slot{}, false
	}
	s := p.grid.At(index)
	p.grid.RemoveAtSlot(index, 1)
	return occupied(s.ItemID, 1, s.tmpl), true
}

// HasAmmo reports whether any occupied slot matches name under the
// ConsumeAmmo match rule.
func (p *PlayerInventory) HasAmmo(name string) bool {
	return p.findAmmo(name) >= 0
}

// CountAmmo returns the total units across all slots matching name under the
// ConsumeAmmo match rule.
func (p *PlayerInventory) CountAmmo(name string) int {
	needle := strings.ToLower(name)
	total := 0
	for i := 0; i < p.grid.Len(); i++ {
		if p.matchesAmmo(i, needle) {
			total += p.grid.At(i).Count
		}
	}
	return total
}

// Clear empties every slot; used by vault transfer-all and explicit resets.
func (p *PlayerInventory) Clear() {
	p.grid.Clear()
}

func (p *PlayerInventory) findAmmo(name string) int {
	needle := strings.ToLower(name)
	for i := 0; i < p.grid.Len(); i++ {
		if p.matchesAmmo(i, needle) {
			return i
		}
	}
	return -1
}

func (p *PlayerInventory) matchesAmmo(index int, needle string) bool {
	s := p.grid.At(index)
	if s.Empty() {
		return false
	}
	if strings.Contains(strings.ToLower(s.ItemID), needle) {
		return true
	}
	return strings.Contains(strings.ToLower(s.Template().Name), needle)
}
