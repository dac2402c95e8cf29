package transfer

import (
	"context"
	"errors"
	"fmt"
)

// CursorNavigator is the keyboard/controller pick-up-and-place state machine
// layered on one store's grid. It is Idle (a highlight only) or Holding (a
// lifted stack). It exists only while the inventory UI is open; Close must
// be called before discarding a Holding navigator, or the lifted stack would
// leak.
type CursorNavigator struct {
	store   Store
	columns int

	highlighted int
	heldID      string
	heldCount   int
	origin      int
}

// NewCursorNavigator creates an Idle navigator over store with the given
// grid width.
//
// Precondition: columns > 0 (panics otherwise) and store non-nil.
func NewCursorNavigator(store Store, columns int) *CursorNavigator {
	if columns <= 0 {
		panic(fmt.Sprintf("transfer: NewCursorNavigator: columns must be > 0, got %d", columns))
	}
	return &CursorNavigator{store: store, columns: columns}
}

// Highlighted returns the current cursor index.
func (c *CursorNavigator) Highlighted() int {
	return c.highlighted
}

// Holding reports whether a stack is lifted.
func (c *CursorNavigator) Holding() bool {
	return c.heldCount > 0
}

// HeldPayload returns the lifted stack and its origin index, or ok == false
// when Idle.
func (c *CursorNavigator) HeldPayload() (itemID string, count, origin int, ok bool) {
	if !c.Holding() {
		return "", 0, 0, false
	}
	return c.heldID, c.heldCount, c.origin, true
}

// Move shifts the highlight by one column (dx) and/or one row (dy).
// Horizontal movement wraps within the row; vertical movement clamps at the
// first and last rows and auto-scrolls a Scroller store to keep the
// highlight visible.
func (c *CursorNavigator) Move(dx, dy int) {
	n := c.store.Len()
	if n == 0 {
		return
	}
	row := c.highlighted / c.columns
	col := c.highlighted % c.columns

	if dx != 0 {
		width := c.rowWidth(row, n)
		col = ((col+dx)%width + width) % width
	}
	if dy != 0 {
		lastRow := (n - 1) / c.columns
		row += dy
		if row < 0 {
			row = 0
		}
		if row > lastRow {
			row = lastRow
		}
		// The last row may be partial; clamp the column into it.
		if width := c.rowWidth(row, n); col >= width {
			col = width - 1
		}
	}

	c.highlighted = row*c.columns + col
	if sc, ok := c.store.(Scroller); ok {
		sc.EnsureVisible(row)
	}
}

// rowWidth returns the number of slots in row for a grid of n slots.
func (c *CursorNavigator) rowWidth(row, n int) int {
	width := n - row*c.columns
	if width > c.columns {
		width = c.columns
	}
	return width
}

// Select is the pick-up/place action at the highlighted slot.
//
// Idle over an occupied slot lifts its entire stack and remembers the origin.
// Holding over an empty slot places the payload and returns to Idle. Holding
// over an occupied slot completes the placement as a swap: the payload lands
// in the slot and the displaced stack goes back to the origin, returning to
// Idle. If the origin has been refilled in the meantime the displaced stack
// becomes the new payload instead, staying Holding.
//
// Postcondition: no units are created or destroyed in any branch, even when
// a write-through fails; persist errors surface after the exchange completes.
func (c *CursorNavigator) Select(ctx context.Context) error {
	target := c.store.At(c.highlighted)

	if !c.Holding() {
		if target.Empty() {
			return nil
		}
		removed, err := c.store.RemoveAtSlot(ctx, c.highlighted, -1)
		if removed > 0 {
			c.heldID = target.ItemID
			c.heldCount = removed
			c.origin = c.highlighted
		}
		return err
	}

	if target.Empty() {
		_, err := c.store.AddItemToSlot(ctx, c.heldID, c.heldCount, c.highlighted)
		c.dropHeld()
		return err
	}

	// Swap: payload into the slot, displaced stack back to the origin. The
	// grid stays authoritative on a persist failure, so the exchange runs
	// to completion and the collected errors surface afterwards.
	var errs []error
	if _, err := c.store.RemoveAtSlot(ctx, c.highlighted, -1); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.store.AddItemToSlot(ctx, c.heldID, c.heldCount, c.highlighted); err != nil {
		errs = append(errs, err)
	}
	if c.store.At(c.origin).Empty() {
		if _, err := c.store.AddItemToSlot(ctx, target.ItemID, target.Count, c.origin); err != nil {
			errs = append(errs, err)
		}
		c.dropHeld()
		return errors.Join(errs...)
	}
	c.heldID = target.ItemID
	c.heldCount = target.Count
	return errors.Join(errs...)
}

// Close cancels the navigator when the container UI closes: a held payload
// is returned to its origin slot unconditionally so no item is lost.
//
// Postcondition: the navigator is Idle; ErrCannotReturn is returned only in
// the pathological case of a grid refilled so completely that not even the
// fallback placement can absorb the payload.
func (c *CursorNavigator) Close(ctx context.Context) error {
	if !c.Holding() {
		return nil
	}
	if c.store.At(c.origin).Empty() {
		_, err := c.store.AddItemToSlot(ctx, c.heldID, c.heldCount, c.origin)
		c.dropHeld()
		return err
	}
	overflow, err := c.store.AddItem(ctx, c.heldID, c.heldCount)
	if overflow > 0 {
		c.heldCount = overflow
		if err != nil {
			return err
		}
		return ErrCannotReturn
	}
	c.dropHeld()
	return err
}

func (c *CursorNavigator) dropHeld() {
	c.heldID = ""
	c.heldCount = 0
	c.origin = 0
}
