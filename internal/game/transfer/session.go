package transfer

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/jmcrae/delve/internal/game/storage"
	"github.com/jmcrae/delve/internal/game/worlditem"
)

// Session owns the interaction state for one player: the inventory handle,
// the single optional open vault, at most one in-flight drag, and the cursor
// navigator while the UI is open. Holding the vault as one optional field
// makes the "exactly one vault open" rule a structural invariant rather than
// a convention.
type Session struct {
	logger  *zap.Logger
	spawner worlditem.Spawner
	inv     *storage.PlayerInventory
	columns int

	vault  *storage.VaultStore
	cursor *CursorNavigator
	drag   *DragState
}

// NewSession creates a session for inv.
//
// Precondition: inv and spawner must not be nil; columns > 0.
func NewSession(inv *storage.PlayerInventory, spawner worlditem.Spawner, columns int, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		logger:  logger,
		spawner: spawner,
		inv:     inv,
		columns: columns,
	}
}

// Inventory returns the player inventory handle.
func (s *Session) Inventory() *storage.PlayerInventory {
	return s.inv
}

// Vault returns the open vault, or nil.
func (s *Session) Vault() *storage.VaultStore {
	return s.vault
}

// OpenVault attaches an opened vault store to the session.
//
// Postcondition: returns ErrVaultAlreadyOpen (leaving the session unchanged)
// when a vault is attached.
func (s *Session) OpenVault(v *storage.VaultStore) error {
	if s.vault != nil {
		return ErrVaultAlreadyOpen
	}
	s.vault = v
	s.logger.Debug("vault opened", zap.String("kind", v.Kind().String()))
	return nil
}

// CloseVault detaches the open vault. A cursor over the vault is closed
// first (returning any held payload to its origin), and a drag sourced from
// the vault is cancelled; cancelling a drag never touches the source slot
// because drags do not clear it.
func (s *Session) CloseVault(ctx context.Context) error {
	if s.vault == nil {
		return nil
	}
	var errs []error
	if s.cursor != nil && s.cursor.store == Store(s.vault) {
		if err := s.CloseUI(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if s.drag != nil && s.drag.store == Store(s.vault) {
		s.drag = nil
	}
	s.logger.Debug("vault closed", zap.String("kind", s.vault.Kind().String()))
	s.vault = nil
	return errors.Join(errs...)
}

// OpenUI attaches a cursor navigator over store for keyboard/controller
// interaction.
func (s *Session) OpenUI(store Store) error {
	if s.cursor != nil {
		return ErrUIAlreadyOpen
	}
	s.cursor = NewCursorNavigator(store, s.columns)
	return nil
}

// CloseUI closes the cursor UI, returning a held payload to its origin.
func (s *Session) CloseUI(ctx context.Context) error {
	if s.cursor == nil {
		return nil
	}
	err := s.cursor.Close(ctx)
	s.cursor = nil
	return err
}

// Cursor returns the active navigator, or nil when the UI is closed.
func (s *Session) Cursor() *CursorNavigator {
	return s.cursor
}

// CursorMove forwards a directional press to the navigator.
func (s *Session) CursorMove(dx, dy int) error {
	if s.cursor == nil {
		return ErrUINotOpen
	}
	s.cursor.Move(dx, dy)
	return nil
}

// CursorSelect forwards a select press to the navigator. It is excluded
// while a drag is in flight; a pointer drag and a cursor-held payload never
// coexist on the same session.
func (s *Session) CursorSelect(ctx context.Context) error {
	if s.cursor == nil {
		return ErrUINotOpen
	}
	if s.drag != nil {
		return ErrDragActive
	}
	return s.cursor.Select(ctx)
}

// EquipClick swaps the hovered slot's contents with the currently selected
// hotbar slot; when the hotbar slot is empty this degenerates to a move. The
// dedicated equip action is distinct from the click that begins a drag and
// is excluded while a drag is in flight.
func (s *Session) EquipClick(ctx context.Context, store Store, index int) error {
	if s.drag != nil {
		return ErrDragActive
	}
	if index < 0 || index >= store.Len() {
		return ErrInvalidSlot
	}
	sel := s.inv.SelectedSlot()

	if store == Store(s.inv) {
		if index == sel {
			return nil
		}
		_, err := s.inv.Swap(ctx, sel, index)
		return err
	}
	return s.crossExchange(ctx, store, index, s.inv, sel)
}

// InputFrame is the per-frame snapshot delivered by the input collaborator:
// discrete directional and select presses, pointer state with the slot under
// the pointer already hit-tested, and a scroll delta in rows.
type InputFrame struct {
	MoveX, MoveY int
	Select       bool

	PointerPressed  bool
	PointerReleased bool
	PointerX        float64
	PointerY        float64
	// PointerOver is the slot under the pointer, nil when outside all stores.
	PointerOver *DropTarget

	ScrollRows int
}

// Frame applies one frame of input in the fixed order: cursor input first,
// then pointer drag resolution. World-triggered calls (ammo consumption,
// loot pickup, transfer-all) are made by their collaborators after Frame
// returns, so a single frame never interleaves two interaction modes on the
// same slot.
func (s *Session) Frame(ctx context.Context, in InputFrame) error {
	var errs []error

	if s.vault != nil && in.ScrollRows != 0 {
		s.vault.Scroll(in.ScrollRows)
	}

	if s.cursor != nil {
		if in.MoveX != 0 || in.MoveY != 0 {
			s.cursor.Move(in.MoveX, in.MoveY)
		}
		if in.Select {
			if err := s.CursorSelect(ctx); err != nil && !errors.Is(err, ErrDragActive) {
				errs = append(errs, err)
			}
		}
	}

	if in.PointerPressed && in.PointerOver != nil {
		err := s.BeginDrag(in.PointerOver.Store, in.PointerOver.Index)
		// Pressing an empty slot or pressing during an exclusion is not a
		// frame-level failure.
		if err != nil && !errors.Is(err, ErrEmptySlot) && !errors.Is(err, ErrCursorHolding) && !errors.Is(err, ErrDragActive) {
			errs = append(errs, err)
		}
	}
	s.UpdateDrag(in.PointerX, in.PointerY)
	if in.PointerReleased && s.drag != nil {
		if err := s.ReleaseDrag(ctx, in.PointerOver); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
