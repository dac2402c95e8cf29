package storage

import (
	"fmt"

	"github.com/jmcrae/delve/internal/game/item"
)

// SlotGrid is a fixed-length ordered array of Slots. Indices are stable
// addresses for the lifetime of the grid; slots are only ever mutated in
// place between empty and occupied.
type SlotGrid struct {
	catalog *item.Catalog
	slots   []Slot
}

// NewSlotGrid creates a grid of size empty slots resolving templates
// against catalog.
//
// Precondition:  size > 0 and catalog non-nil (panics otherwise).
// Postcondition: Len() == size and every slot is empty.
func NewSlotGrid(catalog *item.Catalog, size int) *SlotGrid {
	if size <= 0 {
		panic(fmt.Sprintf("storage: NewSlotGrid: size must be > 0, got %d", size))
	}
	if catalog == nil {
		panic("storage: NewSlotGrid: catalog must not be nil")
	}
	return &SlotGrid{
		catalog: catalog,
		slots:   make([]Slot, size),
	}
}

// Len returns the fixed number of slots.
func (g *SlotGrid) Len() int {
	return len(g.slots)
}

// InBounds reports whether index addresses a slot.
func (g *SlotGrid) InBounds(index int) bool {
	return index >= 0 && index < len(g.slots)
}

// At returns a copy of the slot at index, or an empty Slot when index is out
// of bounds.
func (g *SlotGrid) At(index int) Slot {
	if !g.InBounds(index) {
		return Slot{}
	}
	return g.slots[index]
}

// AddItem places count units of itemID into the grid: a first pass tops up
// existing stacks of the same item left to right, then the remainder fills
// empty slots. The unplaced remainder is returned as overflow; the caller
// decides its fate.
//
// Precondition:  none; count <= 0 or an empty itemID is a no-op returning 0.
// Postcondition: returned overflow == count - units placed; no slot exceeds
// its template's MaxStack.
func (g *SlotGrid) AddItem(itemID string, count int) int {
	if itemID == "" || count <= 0 {
		return 0
	}
	tmpl := g.catalog.Resolve(itemID)
	remaining := count

	for i := range g.slots {
		if remaining == 0 {
			break
		}
		s := &g.slots[i]
		if s.Empty() || s.ItemID != itemID || s.Count >= tmpl.MaxStack {
			continue
		}
		take := tmpl.MaxStack - s.Count
		if take > remaining {
			take = remaining
		}
		s.Count += take
		remaining -= take
	}

	for i := range g.slots {
		if remaining == 0 {
			break
		}
		if !g.slots[i].Empty() {
			continue
		}
		take := tmpl.MaxStack
		if take > remaining {
			take = remaining
		}
		g.slots[i] = occupied(itemID, take, tmpl)
		remaining -= take
	}

	return remaining
}

// AddItemToSlot places count units of itemID preferentially at index: an
// empty slot takes the stack directly, a slot holding the same item merges
// up to capacity, and any remainder (or a slot holding a different item)
// falls back to AddItem. Returns whether the entire quantity was absorbed.
//
// Postcondition: out-of-bounds indices place nothing and return false;
// otherwise result == (no units were left over).
func (g *SlotGrid) AddItemToSlot(itemID string, count, index int) bool {
	if itemID == "" || count <= 0 {
		return true
	}
	if !g.InBounds(index) {
		return false
	}
	tmpl := g.catalog.Resolve(itemID)
	s := &g.slots[index]
	remaining := count

	switch {
	case s.Empty():
		take := tmpl.MaxStack
		if take > remaining {
			take = remaining
		}
		*s = occupied(itemID, take, tmpl)
		remaining -= take
	case s.ItemID == itemID:
		take := tmpl.MaxStack - s.Count
		if take > remaining {
			take = remaining
		}
		s.Count += take
		remaining -= take
	}

	if remaining > 0 {
		remaining = g.AddItem(itemID, remaining)
	}
	return remaining == 0
}

// RemoveAtSlot removes up to count units from the slot at index and returns
// the number removed. A negative count removes the whole stack. The slot
// becomes empty when its count reaches zero.
//
// Postcondition: returns -1 for an out-of-bounds index, 0 for an empty slot,
// otherwise min(count, stack size) with the slot decremented accordingly.
func (g *SlotGrid) RemoveAtSlot(index, count int) int {
	if !g.InBounds(index) {
		return -1
	}
	s := &g.slots[index]
	if s.Empty() || count == 0 {
		return 0
	}
	removed := s.Count
	if count > 0 && count < removed {
		removed = count
	}
	s.Count -= removed
	if s.Count == 0 {
		*s = Slot{}
	}
	return removed
}

// Swap exchanges the full contents of two slots regardless of item identity.
//
// Postcondition: returns false (leaving the grid unchanged) when either
// index is out of bounds; a swap with i == j is a successful no-op.
func (g *SlotGrid) Swap(i, j int) bool {
	if !g.InBounds(i) || !g.InBounds(j) {
		return false
	}
	g.slots[i], g.slots[j] = g.slots[j], g.slots[i]
	return true
}

// CanAccept reports whether count units of itemID fit into the grid's spare
// capacity (same-item headroom plus empty slots) without mutating anything.
func (g *SlotGrid) CanAccept(itemID string, count int) bool {
	if itemID == "" || count <= 0 {
		return true
	}
	tmpl := g.catalog.Resolve(itemID)
	spare := 0
	for i := range g.slots {
		s := &g.slots[i]
		switch {
		case s.Empty():
			spare += tmpl.MaxStack
		case s.ItemID == itemID && s.Count < tmpl.MaxStack:
			spare += tmpl.MaxStack - s.Count
		}
		if spare >= count {
			return true
		}
	}
	return false
}

// Clear empties every slot.
func (g *SlotGrid) Clear() {
	for i := range g.slots {
		g.slots[i] = Slot{}
	}
}

// TotalOf returns the summed count of itemID across all slots.
func (g *SlotGrid) TotalOf(itemID string) int {
	total := 0
	for i := range g.slots {
		if g.slots[i].ItemID == itemID {
			total += g.slots[i].Count
		}
	}
	return total
}

// TotalUnits returns the summed count of all stacks; the conservation
// accounting term for this grid.
func (g *SlotGrid) TotalUnits() int {
	total := 0
	for i := range g.slots {
		total += g.slots[i].Count
	}
	return total
}

// OccupiedSlots returns the number of non-empty slots.
func (g *SlotGrid) OccupiedSlots() int {
	n := 0
	for i := range g.slots {
		if !g.slots[i].Empty() {
			n++
		}
	}
	return n
}

// Items serializes the occupied slots, in ascending index order, to the
// persisted wire shape.
//
// Postcondition: returned slice is a copy with one entry per occupied slot.
func (g *SlotGrid) Items() []SavedItem {
	out := make([]SavedItem, 0, len(g.slots))
	for i := range g.slots {
		if g.slots[i].Empty() {
			continue
		}
		out = append(out, SavedItem{ItemID: g.slots[i].ItemID, Count: g.slots[i].Count})
	}
	return out
}

// LoadItems clears the grid and places each entry in order starting at slot
// zero, splitting entries that exceed their template's MaxStack across
// consecutive slots. Entries are not merged, so a persisted slot order
// survives a round trip. Units that do not fit are returned as overflow.
//
// Postcondition: overflow == total entry units - units placed.
func (g *SlotGrid) LoadItems(items []SavedItem) int {
	g.Clear()
	overflow := 0
	next := 0
	for _, it := range items {
		if it.ItemID == "" || it.Count <= 0 {
			continue
		}
		tmpl := g.catalog.Resolve(it.ItemID)
		remaining := it.Count
		for remaining > 0 && next < len(g.slots) {
			take := tmpl.MaxStack
			if take > remaining {
				take = remaining
			}
			g.slots[next] = occupied(it.ItemID, take, tmpl)
			remaining -= take
			next++
		}
		overflow += remaining
	}
	return overflow
}
