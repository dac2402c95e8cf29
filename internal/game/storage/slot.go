// Package storage implements the item storage pools of the game: the
// player inventory, vault containers, and the fixed slot grids both are
// built on. Every operation preserves conservation: item units are never
// created or destroyed, only moved between slots, return values, and the
// world.
package storage

import "github.com/jmcrae/delve/internal/game/item"

// SavedItem is the externally visible wire shape for one persisted stack.
type SavedItem struct {
	ItemID string
	Count  int
}

// Slot is the atomic storage cell: empty, or one stack of a single item
// identity. Invariant: Count == 0 iff ItemID == ""; when occupied,
// 1 <= Count <= Template().MaxStack.
type Slot struct {
	ItemID string
	Count  int

	tmpl *item.Template
}

// Empty reports whether the slot holds no stack.
func (s Slot) Empty() bool {
	return s.Count == 0
}

// Template returns the cached item template for the occupying stack, or nil
// when the slot is empty.
func (s Slot) Template() *item.Template {
	if s.Empty() {
		return nil
	}
	return s.tmpl
}

// occupied builds a non-empty Slot. Callers guarantee 1 <= count <= tmpl.MaxStack.
func occupied(itemID string, count int, tmpl *item.Template) Slot {
	return Slot{ItemID: itemID, Count: count, tmpl: tmpl}
}
