package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jmcrae/delve/internal/config"
	"github.com/jmcrae/delve/internal/game/item"
)

// Kind identifies the container behind an open vault and fixes its capacity.
type Kind int

const (
	KindAncientPottery Kind = iota
	KindMediumChest
	KindLargeChest
	KindStorageChest
	KindPlayerVault
)

// kindCapacities maps each container kind to its slot count.
var kindCapacities = map[Kind]int{
	KindAncientPottery: 5,
	KindMediumChest:    16,
	KindLargeChest:     32,
	KindStorageChest:   48,
	KindPlayerVault:    10000,
}

// Capacity returns the slot count for the kind, or 0 for an unknown kind.
func (k Kind) Capacity() int {
	return kindCapacities[k]
}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAncientPottery:
		return "ancient_pottery"
	case KindMediumChest:
		return "medium_chest"
	case KindLargeChest:
		return "large_chest"
	case KindStorageChest:
		return "storage_chest"
	case KindPlayerVault:
		return "player_vault"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// SortMode is the persisted ordering of a vault grid.
type SortMode int

const (
	SortNone SortMode = iota
	SortRarityAsc
	SortRarityDesc
	SortAlphabetical
)

// VaultStore is one open vault: a slot grid sized by container kind, a
// write-through backing, and a row-granular scroll window. At most one
// VaultStore is open at a time; transfer.Session enforces this by holding a
// single optional reference.
type VaultStore struct {
	kind    Kind
	grid    *SlotGrid
	backing Backing
	catalog *item.Catalog
	logger  *zap.Logger

	columns      int
	visibleRows  int
	scrollOffset int
	sortMode     SortMode
}

// OpenVault constructs the grid for kind, loads the backing's item list into
// it, and returns the store plus any units that did not fit the container
// (the caller must reroute them, e.g. back to the previous container).
//
// Precondition: backing and catalog must not be nil; layout must be valid.
// Postcondition: the returned store is ready for use; overflow >= 0.
func OpenVault(ctx context.Context, kind Kind, backing Backing, catalog *item.Catalog, layout config.StorageConfig, logger *zap.Logger) (*VaultStore, int, error) {
	capacity := kind.Capacity()
	if capacity == 0 {
		return nil, 0, fmt.Errorf("storage: OpenVault: unknown container kind %d", int(kind))
	}
	if backing == nil {
		return nil, 0, fmt.Errorf("storage: OpenVault: backing must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	items, err := backing.Load(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("storage: OpenVault: loading %s backing: %w", kind, err)
	}

	v := &VaultStore{
		kind:        kind,
		grid:        NewSlotGrid(catalog, capacity),
		backing:     backing,
		catalog:     catalog,
		logger:      logger,
		columns:     layout.Columns,
		visibleRows: layout.VisibleRows,
	}
	overflow := v.grid.LoadItems(items)
	if overflow > 0 {
		logger.Warn("vault backing exceeds container capacity",
			zap.String("kind", kind.String()),
			zap.Int("capacity", capacity),
			zap.Int("overflow", overflow),
		)
	}
	return v, overflow, nil
}

// Kind returns the container kind this vault was opened as.
func (v *VaultStore) Kind() Kind {
	return v.kind
}

// Grid exposes the underlying slot grid for read-mostly collaborators.
func (v *VaultStore) Grid() *SlotGrid {
	return v.grid
}

// Len returns the fixed slot count.
func (v *VaultStore) Len() int {
	return v.grid.Len()
}

// At returns a copy of the slot at index.
func (v *VaultStore) At(index int) Slot {
	return v.grid.At(index)
}

// SortModeActive returns the currently persisted sort mode.
func (v *VaultStore) SortModeActive() SortMode {
	return v.sortMode
}

// AddItem places count units per the grid stacking rules, writes the new
// list through to the backing, and returns the unplaced overflow.
//
// Postcondition: the in-memory grid reflects the add even when persistence
// fails; a persist failure is logged and returned.
func (v *VaultStore) AddItem(ctx context.Context, itemID string, count int) (int, error) {
	overflow := v.grid.AddItem(itemID, count)
	if overflow == count {
		return overflow, nil
	}
	return overflow, v.persist(ctx)
}

// AddItemToSlot places count units preferentially at index and writes
// through; see SlotGrid.AddItemToSlot. No-op calls skip the write.
func (v *VaultStore) AddItemToSlot(ctx context.Context, itemID string, count, index int) (bool, error) {
	if itemID == "" || count <= 0 {
		return true, nil
	}
	if !v.grid.InBounds(index) {
		return false, nil
	}
	absorbed := v.grid.AddItemToSlot(itemID, count, index)
	return absorbed, v.persist(ctx)
}

// RemoveAtSlot removes up to count units (negative count = whole stack) from
// index, writes through, and returns the number removed.
func (v *VaultStore) RemoveAtSlot(ctx context.Context, index, count int) (int, error) {
	removed := v.grid.RemoveAtSlot(index, count)
	if removed <= 0 {
		return removed, nil
	}
	return removed, v.persist(ctx)
}

// Swap exchanges the contents of two slots and writes through.
func (v *VaultStore) Swap(ctx context.Context, i, j int) (bool, error) {
	if !v.grid.Swap(i, j) {
		return false, nil
	}
	return true, v.persist(ctx)
}

// TryAccept reports whether count units of itemID would fit.
func (v *VaultStore) TryAccept(itemID string, count int) bool {
	return v.grid.CanAccept(itemID, count)
}

// SortByRarity orders occupied slots by rarity, toggling between ascending
// and descending on repeated calls, compacts them to the front of the grid,
// and persists the new order.
func (v *VaultStore) SortByRarity(ctx context.Context) error {
	mode := SortRarityAsc
	if v.sortMode == SortRarityAsc {
		mode = SortRarityDesc
	}
	v.applySort(mode)
	return v.persist(ctx)
}

// SortAlphabetically orders occupied slots by display name (one direction
// only), compacts them to the front of the grid, and persists the new order.
func (v *VaultStore) SortAlphabetically(ctx context.Context) error {
	v.applySort(SortAlphabetical)
	return v.persist(ctx)
}

// applySort compacts occupied slots to the front in the order given by mode.
// The sort is stable, so equal keys keep their relative grid order.
func (v *VaultStore) applySort(mode SortMode) {
	stacks := make([]Slot, 0, v.grid.Len())
	for i := 0; i < v.grid.Len(); i++ {
		if s := v.grid.At(i); !s.Empty() {
			stacks = append(stacks, s)
		}
	}

	sort.SliceStable(stacks, func(a, b int) bool {
		sa, sb := stacks[a], stacks[b]
		switch mode {
		case SortRarityAsc:
			return sa.Template().RarityValue() < sb.Template().RarityValue()
		case SortRarityDesc:
			return sa.Template().RarityValue() > sb.Template().RarityValue()
		case SortAlphabetical:
			return strings.ToLower(sa.Template().Name) < strings.ToLower(sb.Template().Name)
		default:
			return false
		}
	})

	v.grid.Clear()
	for i, s := range stacks {
		v.grid.slots[i] = s
	}
	v.sortMode = mode
}

// Scroll moves the visible window by deltaRows, clamped to the scrollable
// range.
//
// Postcondition: ScrollOffset() is within [0, max(0, totalRows-visibleRows)].
func (v *VaultStore) Scroll(deltaRows int) {
	v.setScroll(v.scrollOffset + deltaRows)
}

// ScrollOffset returns the current window offset, in rows.
func (v *VaultStore) ScrollOffset() int {
	return v.scrollOffset
}

// EnsureVisible scrolls the window the minimum distance needed to include
// row; used by the cursor navigator's auto-scroll.
func (v *VaultStore) EnsureVisible(row int) {
	if row < v.scrollOffset {
		v.setScroll(row)
	} else if row >= v.scrollOffset+v.visibleRows {
		v.setScroll(row - v.visibleRows + 1)
	}
}

// VisibleWindow returns copies of the slots in the current scroll window, at
// most visibleRows*columns of them.
func (v *VaultStore) VisibleWindow() []Slot {
	start := v.scrollOffset * v.columns
	end := start + v.visibleRows*v.columns
	if end > v.grid.Len() {
		end = v.grid.Len()
	}
	out := make([]Slot, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, v.grid.At(i))
	}
	return out
}

// Columns returns the grid width, in slots.
func (v *VaultStore) Columns() int {
	return v.columns
}

// totalRows returns the row count of the full grid.
func (v *VaultStore) totalRows() int {
	return (v.grid.Len() + v.columns - 1) / v.columns
}

func (v *VaultStore) setScroll(offset int) {
	max := v.totalRows() - v.visibleRows
	if max < 0 {
		max = 0
	}
	if offset > max {
		offset = max
	}
	if offset < 0 {
		offset = 0
	}
	v.scrollOffset = offset
}

// persist writes the grid's current item list through to the backing.
func (v *VaultStore) persist(ctx context.Context) error {
	if err := v.backing.Save(ctx, v.grid.Items()); err != nil {
		v.logger.Error("persisting vault items",
			zap.String("kind", v.kind.String()),
			zap.Error(err),
		)
		return fmt.Errorf("storage: VaultStore.persist: %w", err)
	}
	return nil
}
