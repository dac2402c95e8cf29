package transfer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmcrae/delve/internal/game/storage"
	"github.com/jmcrae/delve/internal/game/transfer"
	"github.com/jmcrae/delve/internal/game/worlditem"
)

type spawnedStack struct {
	itemID string
	count  int
	x, y   float64
}

// fakeSpawner records world spawns so tests can assert on drop-to-world.
type fakeSpawner struct {
	spawned []spawnedStack
}

func (f *fakeSpawner) Spawn(itemID string, count int, x, y float64) {
	f.spawned = append(f.spawned, spawnedStack{itemID: itemID, count: count, x: x, y: y})
}

func newSession(t *testing.T) (*transfer.Session, *storage.PlayerInventory, *fakeSpawner) {
	t.Helper()
	inv := storage.NewPlayerInventory(defaultCatalog(t))
	spawner := &fakeSpawner{}
	return transfer.NewSession(inv, spawner, 8, nil), inv, spawner
}

func TestSession_OpenVault_SecondOpenFails(t *testing.T) {
	s, _, _ := newSession(t)
	first := openVault(t, storage.KindMediumChest, nil)
	second := openVault(t, storage.KindLargeChest, nil)

	if err := s.OpenVault(first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.OpenVault(second); !errors.Is(err, transfer.ErrVaultAlreadyOpen) {
		t.Fatalf("got err=%v, want ErrVaultAlreadyOpen", err)
	}
	if s.Vault() != first {
		t.Error("a rejected open must leave the attached vault unchanged")
	}
}

func TestSession_CloseVault_ReturnsCursorPayloadAndCancelsDrag(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newSession(t)
	v := openVault(t, storage.KindMediumChest, []storage.SavedItem{{ItemID: "torch", Count: 4}})
	s.OpenVault(v)

	if err := s.OpenUI(v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.CursorSelect(ctx); err != nil { // lift torch from vault slot 0
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.CloseVault(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Vault() != nil || s.Cursor() != nil {
		t.Error("closing the vault must detach it and close the cursor UI")
	}
	if sl := v.At(0); sl.ItemID != "torch" || sl.Count != 4 {
		t.Errorf("vault slot 0 = (%q,%d), want (torch,4) restored on close", sl.ItemID, sl.Count)
	}
}

func TestSession_CloseVault_CancelledDragLeavesSourceIntact(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newSession(t)
	v := openVault(t, storage.KindMediumChest, []storage.SavedItem{{ItemID: "torch", Count: 4}})
	s.OpenVault(v)

	if err := s.BeginDrag(v, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.CloseVault(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Dragging() {
		t.Error("closing the vault must cancel a vault-sourced drag")
	}
	if sl := v.At(0); sl.ItemID != "torch" || sl.Count != 4 {
		t.Errorf("vault slot 0 = (%q,%d), want (torch,4); drags never clear the source", sl.ItemID, sl.Count)
	}
}

func TestSession_BeginDrag_Validation(t *testing.T) {
	ctx := context.Background()
	s, inv, _ := newSession(t)
	inv.AddItemToSlot(ctx, "torch", 5, 7)

	if err := s.BeginDrag(inv, 99); !errors.Is(err, transfer.ErrInvalidSlot) {
		t.Errorf("got err=%v, want ErrInvalidSlot", err)
	}
	if err := s.BeginDrag(inv, 0); !errors.Is(err, transfer.ErrEmptySlot) {
		t.Errorf("got err=%v, want ErrEmptySlot", err)
	}
	if err := s.BeginDrag(inv, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.BeginDrag(inv, 7); !errors.Is(err, transfer.ErrDragActive) {
		t.Errorf("got err=%v, want ErrDragActive for a second drag", err)
	}
}

func TestSession_BeginDrag_SourceSlotStaysOccupied(t *testing.T) {
	ctx := context.Background()
	s, inv, _ := newSession(t)
	inv.AddItemToSlot(ctx, "torch", 5, 7)

	if err := s.BeginDrag(inv, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.At(7).Empty() {
		t.Fatal("the source slot must stay occupied while the drag is live")
	}

	// A pickup arriving mid-drag still merges onto the dragged slot.
	inv.AddItem(ctx, "torch", 6)
	if got := inv.At(7).Count; got != 11 {
		t.Errorf("slot 7 count = %d, want 11 (merge landed on the dragged slot)", got)
	}
}

func TestSession_ReleaseDrag_OutsideStoresSpawnsWorldEntity(t *testing.T) {
	ctx := context.Background()
	s, inv, spawner := newSession(t)
	inv.AddItemToSlot(ctx, "torch", 5, 7)

	s.BeginDrag(inv, 7)
	s.UpdateDrag(120.5, 64.0)
	if err := s.ReleaseDrag(ctx, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inv.At(7).Empty() {
		t.Error("the source slot must be cleared on a world drop")
	}
	if len(spawner.spawned) != 1 {
		t.Fatalf("got %d spawns, want 1", len(spawner.spawned))
	}
	got := spawner.spawned[0]
	if got.itemID != "torch" || got.count != 5 || got.x != 120.5 || got.y != 64.0 {
		t.Errorf("spawn = %+v, want torch x5 at (120.5, 64.0)", got)
	}
}

func TestSession_ReleaseDrag_ToGround_ConservesUnits(t *testing.T) {
	ctx := context.Background()
	inv := storage.NewPlayerInventory(defaultCatalog(t))
	ground := worlditem.NewGround()
	s := transfer.NewSession(inv, worlditem.RegionSpawner{Ground: ground, Region: "crypt"}, 8, nil)
	inv.AddItemToSlot(ctx, "arrow", 12, 0)

	before := totalUnits(inv) + ground.TotalUnits()
	s.BeginDrag(inv, 0)
	if err := s.ReleaseDrag(ctx, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := totalUnits(inv) + ground.TotalUnits()
	if before != after {
		t.Errorf("conservation violated: %d units before, %d after", before, after)
	}
	if entities := ground.Entities("crypt"); len(entities) != 1 || entities[0].Count != 12 {
		t.Errorf("ground entities = %v, want one arrow x12", entities)
	}
}

func TestSession_ReleaseDrag_SameSlotIsNoOp(t *testing.T) {
	ctx := context.Background()
	s, inv, _ := newSession(t)
	inv.AddItemToSlot(ctx, "torch", 5, 7)

	s.BeginDrag(inv, 7)
	if err := s.ReleaseDrag(ctx, &transfer.DropTarget{Store: inv, Index: 7}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Dragging() {
		t.Error("the drag must be consumed")
	}
	if sl := inv.At(7); sl.ItemID != "torch" || sl.Count != 5 {
		t.Errorf("slot 7 = (%q,%d), want (torch,5) unchanged", sl.ItemID, sl.Count)
	}
}

func TestSession_ReleaseDrag_SameStore_MoveAndSwap(t *testing.T) {
	ctx := context.Background()
	s, inv, _ := newSession(t)
	inv.AddItemToSlot(ctx, "torch", 5, 0)
	inv.AddItemToSlot(ctx, "arrow", 9, 2)

	// Occupied onto empty is a move.
	s.BeginDrag(inv, 0)
	if err := s.ReleaseDrag(ctx, &transfer.DropTarget{Store: inv, Index: 6}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inv.At(0).Empty() || inv.At(6).ItemID != "torch" {
		t.Error("drop on an empty slot must move the stack")
	}

	// Occupied onto occupied is a swap.
	s.BeginDrag(inv, 6)
	if err := s.ReleaseDrag(ctx, &transfer.DropTarget{Store: inv, Index: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.At(2).ItemID != "torch" || inv.At(6).ItemID != "arrow" {
		t.Error("drop on an occupied slot must swap the stacks")
	}
	if totalUnits(inv) != 14 {
		t.Errorf("total units = %d, want 14", totalUnits(inv))
	}
}

func TestSession_ReleaseDrag_CrossStore_MoveAndSwap(t *testing.T) {
	ctx := context.Background()
	s, inv, _ := newSession(t)
	v := openVault(t, storage.KindMediumChest, []storage.SavedItem{{ItemID: "draught", Count: 2}})
	s.OpenVault(v)
	inv.AddItemToSlot(ctx, "torch", 5, 0)

	// Inventory onto an empty vault slot.
	s.BeginDrag(inv, 0)
	if err := s.ReleaseDrag(ctx, &transfer.DropTarget{Store: v, Index: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inv.At(0).Empty() {
		t.Error("the inventory slot must be cleared after the cross-store move")
	}
	if sl := v.At(3); sl.ItemID != "torch" || sl.Count != 5 {
		t.Errorf("vault slot 3 = (%q,%d), want (torch,5)", sl.ItemID, sl.Count)
	}

	// Vault onto an occupied inventory slot swaps across the stores.
	inv.AddItemToSlot(ctx, "arrow", 9, 4)
	s.BeginDrag(v, 0)
	if err := s.ReleaseDrag(ctx, &transfer.DropTarget{Store: inv, Index: 4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sl := inv.At(4); sl.ItemID != "draught" || sl.Count != 2 {
		t.Errorf("inventory slot 4 = (%q,%d), want (draught,2)", sl.ItemID, sl.Count)
	}
	if sl := v.At(0); sl.ItemID != "arrow" || sl.Count != 9 {
		t.Errorf("vault slot 0 = (%q,%d), want (arrow,9)", sl.ItemID, sl.Count)
	}
	if got := totalUnits(inv) + totalUnits(v); got != 16 {
		t.Errorf("total units = %d, want 16", got)
	}
}

func TestSession_ReleaseDrag_CrossStore_SwapOnFullVault(t *testing.T) {
	ctx := context.Background()
	s, inv, _ := newSession(t)
	// A completely full pottery still accepts a slot-for-slot swap.
	seed := make([]storage.SavedItem, 5)
	for i := range seed {
		seed[i] = storage.SavedItem{ItemID: "rune", Count: 1}
	}
	v := openVault(t, storage.KindAncientPottery, seed)
	s.OpenVault(v)
	inv.AddItemToSlot(ctx, "torch", 5, 0)

	before := totalUnits(inv) + totalUnits(v)
	s.BeginDrag(inv, 0)
	if err := s.ReleaseDrag(ctx, &transfer.DropTarget{Store: v, Index: 4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sl := inv.At(0); sl.ItemID != "rune" || sl.Count != 1 {
		t.Errorf("inventory slot 0 = (%q,%d), want (rune,1) from the swap", sl.ItemID, sl.Count)
	}
	if sl := v.At(4); sl.ItemID != "torch" || sl.Count != 5 {
		t.Errorf("vault slot 4 = (%q,%d), want (torch,5)", sl.ItemID, sl.Count)
	}
	after := totalUnits(inv) + totalUnits(v)
	if before != after {
		t.Errorf("conservation violated: %d units before, %d after", before, after)
	}
}

func TestSession_ReleaseDrag_ToWorld_PersistFailureStillSpawns(t *testing.T) {
	ctx := context.Background()
	s, _, spawner := newSession(t)
	v := openFailingVault(t, storage.KindMediumChest, []storage.SavedItem{{ItemID: "torch", Count: 4}})
	s.OpenVault(v)

	s.BeginDrag(v, 0)
	s.UpdateDrag(3.0, 4.0)
	if err := s.ReleaseDrag(ctx, nil); err == nil {
		t.Fatal("expected a persist error from the write-through")
	}
	if !v.At(0).Empty() {
		t.Error("the source slot must be cleared; the grid stays authoritative")
	}
	if len(spawner.spawned) != 1 || spawner.spawned[0].count != 4 {
		t.Fatalf("spawns = %v, want one torch x4; units must not vanish on a persist failure", spawner.spawned)
	}
	if got := totalUnits(v) + spawner.spawned[0].count; got != 4 {
		t.Errorf("units in vault + world = %d, want 4", got)
	}
}

func TestSession_ReleaseDrag_CrossStoreMove_PersistFailureStillPlaces(t *testing.T) {
	ctx := context.Background()
	s, inv, _ := newSession(t)
	v := openFailingVault(t, storage.KindMediumChest, []storage.SavedItem{{ItemID: "torch", Count: 4}})
	s.OpenVault(v)

	s.BeginDrag(v, 0)
	if err := s.ReleaseDrag(ctx, &transfer.DropTarget{Store: inv, Index: 2}); err == nil {
		t.Fatal("expected a persist error from the write-through")
	}
	if sl := inv.At(2); sl.ItemID != "torch" || sl.Count != 4 {
		t.Errorf("inventory slot 2 = (%q,%d), want (torch,4) placed despite the persist failure", sl.ItemID, sl.Count)
	}
	if got := totalUnits(inv) + totalUnits(v); got != 4 {
		t.Errorf("total units = %d, want 4", got)
	}
}

func TestSession_ReleaseDrag_CrossStoreSwap_PersistFailureStillExchanges(t *testing.T) {
	ctx := context.Background()
	s, inv, _ := newSession(t)
	v := openFailingVault(t, storage.KindMediumChest, []storage.SavedItem{{ItemID: "torch", Count: 4}})
	s.OpenVault(v)
	inv.AddItemToSlot(ctx, "arrow", 9, 1)

	s.BeginDrag(inv, 1)
	if err := s.ReleaseDrag(ctx, &transfer.DropTarget{Store: v, Index: 0}); err == nil {
		t.Fatal("expected a persist error from the write-through")
	}
	if sl := v.At(0); sl.ItemID != "arrow" || sl.Count != 9 {
		t.Errorf("vault slot 0 = (%q,%d), want (arrow,9)", sl.ItemID, sl.Count)
	}
	if sl := inv.At(1); sl.ItemID != "torch" || sl.Count != 4 {
		t.Errorf("inventory slot 1 = (%q,%d), want (torch,4)", sl.ItemID, sl.Count)
	}
	if got := totalUnits(inv) + totalUnits(v); got != 13 {
		t.Errorf("total units = %d, want 13; persist failures must not destroy units", got)
	}
}

func TestSession_EquipClick_SwapsWithSelectedHotbarSlot(t *testing.T) {
	ctx := context.Background()
	s, inv, _ := newSession(t)
	inv.AddItemToSlot(ctx, "torch", 5, 20)
	inv.SelectSlot(2)

	if err := s.EquipClick(ctx, inv, 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sl := inv.At(2); sl.ItemID != "torch" || sl.Count != 5 {
		t.Errorf("hotbar slot 2 = (%q,%d), want (torch,5)", sl.ItemID, sl.Count)
	}
	if !inv.At(20).Empty() {
		t.Error("equipping from an empty hotbar slot degenerates to a move")
	}
	if sl := inv.HeldItem(); sl.ItemID != "torch" {
		t.Errorf("held item = %q, want torch visible through the hotbar view", sl.ItemID)
	}
}

func TestSession_EquipClick_CrossStore(t *testing.T) {
	ctx := context.Background()
	s, inv, _ := newSession(t)
	v := openVault(t, storage.KindMediumChest, []storage.SavedItem{{ItemID: "draught", Count: 2}})
	s.OpenVault(v)
	inv.AddItemToSlot(ctx, "torch", 5, 0)
	inv.SelectSlot(0)

	if err := s.EquipClick(ctx, v, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sl := inv.At(0); sl.ItemID != "draught" || sl.Count != 2 {
		t.Errorf("hotbar slot 0 = (%q,%d), want (draught,2)", sl.ItemID, sl.Count)
	}
	if sl := v.At(0); sl.ItemID != "torch" || sl.Count != 5 {
		t.Errorf("vault slot 0 = (%q,%d), want (torch,5)", sl.ItemID, sl.Count)
	}
}

func TestSession_EquipClick_ExcludedDuringDrag(t *testing.T) {
	ctx := context.Background()
	s, inv, _ := newSession(t)
	inv.AddItemToSlot(ctx, "torch", 5, 7)

	s.BeginDrag(inv, 7)
	if err := s.EquipClick(ctx, inv, 7); !errors.Is(err, transfer.ErrDragActive) {
		t.Errorf("got err=%v, want ErrDragActive", err)
	}
}

func TestSession_CursorSelect_ExcludedDuringDrag(t *testing.T) {
	ctx := context.Background()
	s, inv, _ := newSession(t)
	inv.AddItemToSlot(ctx, "torch", 5, 0)
	s.OpenUI(inv)

	s.BeginDrag(inv, 0)
	if err := s.CursorSelect(ctx); !errors.Is(err, transfer.ErrDragActive) {
		t.Errorf("got err=%v, want ErrDragActive", err)
	}
}

func TestSession_BeginDrag_ExcludedWhileCursorHolds(t *testing.T) {
	ctx := context.Background()
	s, inv, _ := newSession(t)
	inv.AddItemToSlot(ctx, "torch", 5, 0)
	inv.AddItemToSlot(ctx, "arrow", 9, 1)
	s.OpenUI(inv)
	s.CursorSelect(ctx) // lift from slot 0

	if err := s.BeginDrag(inv, 1); !errors.Is(err, transfer.ErrCursorHolding) {
		t.Errorf("got err=%v, want ErrCursorHolding", err)
	}
}

func TestSession_CursorMove_RequiresOpenUI(t *testing.T) {
	s, _, _ := newSession(t)
	if err := s.CursorMove(1, 0); !errors.Is(err, transfer.ErrUINotOpen) {
		t.Errorf("got err=%v, want ErrUINotOpen", err)
	}
}

func TestSession_Frame_PointerDragAcrossFrames(t *testing.T) {
	ctx := context.Background()
	s, inv, _ := newSession(t)
	inv.AddItemToSlot(ctx, "torch", 5, 7)

	press := transfer.InputFrame{
		PointerPressed: true,
		PointerOver:    &transfer.DropTarget{Store: inv, Index: 7},
		PointerX:       10, PointerY: 10,
	}
	if err := s.Frame(ctx, press); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Dragging() {
		t.Fatal("the press frame must begin a drag")
	}

	release := transfer.InputFrame{
		PointerReleased: true,
		PointerOver:     &transfer.DropTarget{Store: inv, Index: 12},
		PointerX:        99, PointerY: 42,
	}
	if err := s.Frame(ctx, release); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Dragging() {
		t.Error("the release frame must consume the drag")
	}
	if sl := inv.At(12); sl.ItemID != "torch" || sl.Count != 5 {
		t.Errorf("slot 12 = (%q,%d), want (torch,5)", sl.ItemID, sl.Count)
	}
}

func TestSession_Frame_PressOnEmptySlotIsNotAnError(t *testing.T) {
	ctx := context.Background()
	s, inv, _ := newSession(t)

	frame := transfer.InputFrame{
		PointerPressed: true,
		PointerOver:    &transfer.DropTarget{Store: inv, Index: 0},
	}
	if err := s.Frame(ctx, frame); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Dragging() {
		t.Error("pressing an empty slot must not begin a drag")
	}
}

func TestSession_Frame_ScrollAppliesToOpenVault(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newSession(t)
	v := openVault(t, storage.KindStorageChest, nil)
	s.OpenVault(v)

	if err := s.Frame(ctx, transfer.InputFrame{ScrollRows: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := v.ScrollOffset(); got != 2 {
		t.Errorf("scroll offset = %d, want 2 (clamped)", got)
	}
}

func TestSession_Frame_CursorMoveAndSelect(t *testing.T) {
	ctx := context.Background()
	s, inv, _ := newSession(t)
	inv.AddItemToSlot(ctx, "torch", 5, 1)
	s.OpenUI(inv)

	if err := s.Frame(ctx, transfer.InputFrame{MoveX: 1, Select: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Cursor().Holding() {
		t.Error("the frame must move the cursor to slot 1 and lift its stack")
	}
}
