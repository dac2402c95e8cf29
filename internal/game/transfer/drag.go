package transfer

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// DragState records an in-flight pointer drag. The source slot is NOT
// cleared while the drag is live — it stays logically occupied (stack merges
// still land on it) and only the renderer is expected to skip drawing it.
type DragState struct {
	store  Store
	index  int
	itemID string
	count  int
	x, y   float64
}

// Source returns the store and slot index the drag started on.
func (d *DragState) Source() (Store, int) {
	return d.store, d.index
}

// Payload returns the stack identity and quantity recorded at press time.
func (d *DragState) Payload() (string, int) {
	return d.itemID, d.count
}

// Position returns the last reported pointer position.
func (d *DragState) Position() (x, y float64) {
	return d.x, d.y
}

// BeginDrag starts a pointer drag on the occupied slot at index.
//
// Postcondition: fails with ErrDragActive or ErrCursorHolding when another
// interaction mode is live, ErrInvalidSlot / ErrEmptySlot for a bad source;
// on success the source slot is unchanged and Dragging() reports true.
func (s *Session) BeginDrag(store Store, index int) error {
	if s.drag != nil {
		return ErrDragActive
	}
	if s.cursor != nil && s.cursor.Holding() {
		return ErrCursorHolding
	}
	if index < 0 || index >= store.Len() {
		return ErrInvalidSlot
	}
	slot := store.At(index)
	if slot.Empty() {
		return ErrEmptySlot
	}
	s.drag = &DragState{
		store:  store,
		index:  index,
		itemID: slot.ItemID,
		count:  slot.Count,
	}
	return nil
}

// UpdateDrag records the pointer position while a drag is live.
func (s *Session) UpdateDrag(x, y float64) {
	if s.drag == nil {
		return
	}
	s.drag.x, s.drag.y = x, y
}

// Dragging reports whether a drag is in flight.
func (s *Session) Dragging() bool {
	return s.drag != nil
}

// Drag returns the in-flight drag state, or nil.
func (s *Session) Drag() *DragState {
	return s.drag
}

// ReleaseDrag resolves the drag against target:
//
//   - nil target (outside all stores): the source slot is cleared and the
//     stack spawns as a world entity at the pointer position;
//   - the source slot itself, or an out-of-bounds index: no-op;
//   - an occupied slot: swap, within one store or across two;
//   - an empty slot: move, asking the destination store TryAccept first for
//     cross-store drops so a rejection leaves the source unchanged.
//
// The drag state is consumed in every branch.
//
// Postcondition: every unit of the dragged stack is in exactly one of the
// source slot, the target slot, or a spawned world entity.
func (s *Session) ReleaseDrag(ctx context.Context, target *DropTarget) error {
	if s.drag == nil {
		return ErrNoDrag
	}
	drag := s.drag
	s.drag = nil

	if target == nil {
		// A persist failure leaves the grid mutated (the grid stays
		// authoritative), so spawn before surfacing the error or the
		// removed units would exist nowhere.
		removed, err := drag.store.RemoveAtSlot(ctx, drag.index, -1)
		if removed > 0 {
			s.spawner.Spawn(drag.itemID, removed, drag.x, drag.y)
			s.logger.Debug("drag released to world",
				zap.String("item", drag.itemID),
				zap.Int("count", removed),
			)
		}
		return err
	}

	if target.Index < 0 || target.Index >= target.Store.Len() {
		return nil
	}
	if target.Store == drag.store && target.Index == drag.index {
		return nil
	}

	if target.Store == drag.store {
		// A swap with an empty slot is the move case.
		_, err := drag.store.Swap(ctx, drag.index, target.Index)
		return err
	}

	return s.crossExchange(ctx, drag.store, drag.index, target.Store, target.Index)
}

// crossExchange moves or swaps the stacks at a[i] and b[j] across two
// stores. Slot-for-slot exchanges always fit because each stack already
// respects its own template's MaxStack; one-directional moves ask the
// destination first. A write-through failure never interrupts the exchange:
// each store's grid stays authoritative, so every stack is placed before
// collected persist errors surface.
func (s *Session) crossExchange(ctx context.Context, a Store, i int, b Store, j int) error {
	sa, sb := a.At(i), b.At(j)
	if sa.Empty() && sb.Empty() {
		return nil
	}
	var errs []error

	if sa.Empty() || sb.Empty() {
		src, srcIdx, dst, dstIdx := a, i, b, j
		stack := sa
		if sa.Empty() {
			src, srcIdx, dst, dstIdx = b, j, a, i
			stack = sb
		}
		if !dst.TryAccept(stack.ItemID, stack.Count) {
			return nil
		}
		removed, err := src.RemoveAtSlot(ctx, srcIdx, -1)
		if err != nil {
			errs = append(errs, err)
		}
		if removed > 0 {
			if _, err := dst.AddItemToSlot(ctx, stack.ItemID, removed, dstIdx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	if _, err := a.RemoveAtSlot(ctx, i, -1); err != nil {
		errs = append(errs, err)
	}
	if _, err := b.RemoveAtSlot(ctx, j, -1); err != nil {
		errs = append(errs, err)
	}
	if _, err := b.AddItemToSlot(ctx, sa.ItemID, sa.Count, j); err != nil {
		errs = append(errs, err)
	}
	if _, err := a.AddItemToSlot(ctx, sb.ItemID, sb.Count, i); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
