package loyalty

import (
	"sort"

	ierr "github.com/shopfront/shopfront/internal/errors"
)

// Tier is one step of the bonus-points redemption table. Redeeming at
// least MinPoints unlocks a flat DiscountCents off the order.
type Tier struct {
	MinPoints     int64 `json:"min_points"`
	DiscountCents int64 `json:"discount_cents"`
}

// TierTable maps redeemed points to a discount. It is a step function:
// the discount is that of the highest tier reached, never proportional
// to the points. The same table prices the cart and prorates refunds.
type TierTable struct {
	// sorted by MinPoints descending
	tiers []Tier
}

// DefaultTable is the storefront's redemption table
func DefaultTable() *TierTable {
	t, _ := NewTierTable([]Tier{
		{MinPoints: 1000, DiscountCents: 500},
		{MinPoints: 2000, DiscountCents: 1000},
		{MinPoints: 3000, DiscountCents: 2000},
		{MinPoints: 4000, DiscountCents: 3500},
		{MinPoints: 5000, DiscountCents: 5000},
	})
	return t
}

// NewTierTable validates and sorts the given tiers
func NewTierTable(tiers []Tier) (*TierTable, error) {
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinPoints > sorted[j].MinPoints
	})

	for i, t := range sorted {
		if t.MinPoints <= 0 || t.DiscountCents < 0 {
			return nil, ierr.NewError("invalid loyalty tier").
				WithHintf("Tier at %d points must have positive points and a non-negative discount", t.MinPoints).
				Mark(ierr.ErrValidation)
		}
		if i > 0 && sorted[i-1].MinPoints == t.MinPoints {
			return nil, ierr.NewError("duplicate loyalty tier").
				WithHintf("More than one tier starts at %d points", t.MinPoints).
				Mark(ierr.ErrValidation)
		}
	}

	return &TierTable{tiers: sorted}, nil
}

// Reached returns the highest tier unlocked by points
func (t *TierTable) Reached(points int64) (Tier, bool) {
	for _, tier := range t.tiers {
		if points >= tier.MinPoints {
			return tier, true
		}
	}
	return Tier{}, false
}

// DiscountCents returns the discount unlocked by points, 0 below the first tier
func (t *TierTable) DiscountCents(points int64) int64 {
	tier, ok := t.Reached(points)
	if !ok {
		return 0
	}
	return tier.DiscountCents
}

// NextTier returns the lowest tier above points, if any
func (t *TierTable) NextTier(points int64) (Tier, bool) {
	for i := len(t.tiers) - 1; i >= 0; i-- {
		if t.tiers[i].MinPoints > points {
			return t.tiers[i], true
		}
	}
	return Tier{}, false
}
