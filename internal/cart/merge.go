package cart

// MergeStrategy resolves the quantity for a product present in both carts.
type MergeStrategy func(local, remote int) int

// LargerWins keeps the larger of the two quantities. This is the default
// conflict policy: a dealer re-adding on a second device should never shrink
// what the first device already holds.
func LargerWins(local, remote int) int {
	if local > remote {
		return local
	}
	return remote
}

// Sum adds the two quantities.
func Sum(local, remote int) int { return local + remote }

// TheirsWins takes the remote quantity unconditionally.
func TheirsWins(local, remote int) int { return remote }

// Merge combines two carts line by line using the given strategy. Lines
// present on only one side are carried over as-is; merged quantities are
// clamped to the line cap.
func Merge(local, remote Cart, strategy MergeStrategy) Cart {
	out := Cart{
		ID:      local.ID,
		OwnerID: local.OwnerID,
		Saved:   local.Saved,
		Name:    local.Name,
	}

	for _, it := range local.Items {
		merged := it
		if j := remote.find(it.ProductID); j >= 0 {
			merged.Quantity = clamp(strategy(it.Quantity, remote.Items[j].Quantity), it.MaxQuantity)
		}
		out.Items = append(out.Items, merged)
	}
	for _, it := range remote.Items {
		if out.find(it.ProductID) < 0 {
			it.Quantity = clamp(it.Quantity, it.MaxQuantity)
			out.Items = append(out.Items, it)
		}
	}
	return out
}
