package storage

import "context"

// TransferAll moves every stack from the player inventory into the vault,
// the level-exit overflow path. Stacks the vault cannot absorb stay in the
// inventory; the count of such units is returned so the caller can report
// or reroute them. The inventory ends empty only when overflow is zero.
//
// Postcondition: total units across inventory and vault are unchanged.
func TransferAll(ctx context.Context, inv *PlayerInventory, vault *VaultStore) (int, error) {
	overflow := 0
	for i := 0; i < inv.Len(); i++ {
		s := inv.At(i)
		if s.Empty() {
			continue
		}
		left, err := vault.AddItem(ctx, s.ItemID, s.Count)
		accepted := s.Count - left
		if accepted > 0 {
			inv.Grid().RemoveAtSlot(i, accepted)
		}
		overflow += left
		if err != nil {
			return overflow, err
		}
	}
	return overflow, nil
}
