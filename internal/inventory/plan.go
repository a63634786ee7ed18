package inventory

import "sort"

// Policy names an allocation behavior when stock cannot cover a request.
type Policy string

const (
	// PolicyReject fails the whole allocation if any remainder is left.
	// Default for the standard order path.
	PolicyReject Policy = "reject_if_insufficient"
	// PolicyBackorder reserves what exists and reports the remainder as
	// backordered. Opt-in, used by the supply-order workflow.
	PolicyBackorder Policy = "allow_backorder"
)

// ParsePolicy maps the config value to a Policy, defaulting to reject.
func ParsePolicy(s string) Policy {
	if s == "backorder" || s == string(PolicyBackorder) {
		return PolicyBackorder
	}
	return PolicyReject
}

// Split is one location's share of a planned allocation.
type Split struct {
	LocationID string
	Units      int
}

// Plan distributes qty across the product's rows: locations sorted by
// available descending, location id ascending on ties (so allocation is
// deterministic and reproducible), then greedily take min(available,
// remaining) from each. Under PolicyReject any remainder fails the plan;
// under PolicyBackorder the remainder comes back as backordered.
func Plan(productID string, rows []Row, qty int, policy Policy) (splits []Split, backordered int, err error) {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Available() != sorted[j].Available() {
			return sorted[i].Available() > sorted[j].Available()
		}
		return sorted[i].LocationID < sorted[j].LocationID
	})

	remaining := qty
	for _, r := range sorted {
		if remaining == 0 {
			break
		}
		take := r.Available()
		if take <= 0 {
			continue
		}
		if take > remaining {
			take = remaining
		}
		splits = append(splits, Split{LocationID: r.LocationID, Units: take})
		remaining -= take
	}

	if remaining > 0 && policy != PolicyBackorder {
		return nil, 0, &InsufficientStockError{
			ProductID: productID,
			Requested: qty,
			Available: qty - remaining,
		}
	}
	return splits, remaining, nil
}
