package refund

import (
	"testing"

	"github.com/shopfront/shopfront/internal/domain/loyalty"
	ierr "github.com/shopfront/shopfront/internal/errors"
	"github.com/shopfront/shopfront/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCalculator() Calculator {
	return NewCalculator(loyalty.DefaultTable())
}

// twoLineOrder is A 3000x2 + B 4000x1 with a 1000 discount and 495 shipping
func twoLineOrder() Order {
	return Order{
		LineItems: []LineItem{
			{Name: "A", UnitPriceCents: 3000, Quantity: 2},
			{Name: "B", UnitPriceCents: 4000, Quantity: 1},
		},
		DiscountCents:     1000,
		ShippingCostCents: 495,
		TotalCents:        9495,
	}
}

func mustSelection(t *testing.T, line LineItem, accepted, notReturned bool, pct types.RefundPercentage) Selection {
	t.Helper()
	s, err := NewSelection(line, accepted, notReturned, pct)
	require.NoError(t, err)
	return s
}

func TestCalculator_EffectiveUnitRefund(t *testing.T) {
	tests := []struct {
		name     string
		order    Order
		line     LineItem
		expected int64
	}{
		{
			name: "no discount passes unit price through",
			order: Order{
				LineItems: []LineItem{
					{Name: "A", UnitPriceCents: 3000, Quantity: 2},
					{Name: "B", UnitPriceCents: 4000, Quantity: 1},
				},
				TotalCents: 10000,
			},
			line:     LineItem{Name: "B", Quantity: 1},
			expected: 4000,
		},
		{
			name: "single line absorbs the whole discount",
			order: Order{
				LineItems:     []LineItem{{Name: "A", UnitPriceCents: 2500, Quantity: 4}},
				DiscountCents: 1000,
				TotalCents:    9000,
			},
			line:     LineItem{Name: "A", Quantity: 1},
			expected: 2250,
		},
		{
			name:     "discount prorated by subtotal share",
			order:    twoLineOrder(),
			line:     LineItem{Name: "A", Quantity: 2},
			expected: 2700,
		},
		{
			name:     "discount prorated on the smaller share",
			order:    twoLineOrder(),
			line:     LineItem{Name: "B", Quantity: 1},
			expected: 3600,
		},
		{
			name: "points tier discount prorated alongside the order discount",
			order: Order{
				LineItems: []LineItem{
					{Name: "A", UnitPriceCents: 3000, Quantity: 2},
					{Name: "B", UnitPriceCents: 4000, Quantity: 1},
				},
				DiscountCents:       1000,
				BonusPointsRedeemed: 2500,
				TotalCents:          8000,
			},
			line:     LineItem{Name: "B", Quantity: 1},
			expected: 3200,
		},
		{
			name: "points below the first tier deduct nothing",
			order: Order{
				LineItems:           []LineItem{{Name: "A", UnitPriceCents: 1000, Quantity: 1}},
				BonusPointsRedeemed: 999,
				TotalCents:          1000,
			},
			line:     LineItem{Name: "A", Quantity: 1},
			expected: 1000,
		},
		{
			name: "each division rounds independently",
			order: Order{
				LineItems:           []LineItem{{Name: "A", UnitPriceCents: 1000, Quantity: 3}},
				DiscountCents:       50,
				BonusPointsRedeemed: 1000,
				TotalCents:          2450,
			},
			line: LineItem{Name: "A", Quantity: 1},
			// round(50/3)=17 + round(500/3)=167
			expected: 816,
		},
		{
			name: "half cent rounds away from zero",
			order: Order{
				LineItems:     []LineItem{{Name: "A", UnitPriceCents: 100, Quantity: 2}},
				DiscountCents: 5,
				TotalCents:    195,
			},
			line: LineItem{Name: "A", Quantity: 1},
			// round(5/2) = 3
			expected: 97,
		},
		{
			name: "variations match regardless of order",
			order: Order{
				LineItems: []LineItem{
					{Name: "Shirt", Variations: map[string]string{"size": "M", "color": "red"}, UnitPriceCents: 2000, Quantity: 1},
					{Name: "Shirt", Variations: map[string]string{"size": "L", "color": "red"}, UnitPriceCents: 6000, Quantity: 1},
				},
				DiscountCents: 800,
				TotalCents:    7200,
			},
			line:     LineItem{Name: "Shirt", Variations: map[string]string{"color": "red", "size": "M"}, Quantity: 1},
			expected: 1800,
		},
		{
			name:     "unknown line falls back to its own unit price",
			order:    twoLineOrder(),
			line:     LineItem{Name: "Z", UnitPriceCents: 1234, Quantity: 1},
			expected: 1234,
		},
		{
			name:     "unknown variation falls back to its own unit price",
			order:    twoLineOrder(),
			line:     LineItem{Name: "A", Variations: map[string]string{"size": "XL"}, UnitPriceCents: 2999, Quantity: 1},
			expected: 2999,
		},
		{
			name: "zero subtotal short-circuits to unit price",
			order: Order{
				LineItems:     []LineItem{{Name: "Gift", UnitPriceCents: 0, Quantity: 2}},
				DiscountCents: 100,
			},
			line:     LineItem{Name: "Gift", Quantity: 1},
			expected: 0,
		},
		{
			name: "zero ordered quantity short-circuits to unit price",
			order: Order{
				LineItems: []LineItem{
					{Name: "A", UnitPriceCents: 500, Quantity: 0},
					{Name: "B", UnitPriceCents: 1000, Quantity: 1},
				},
				DiscountCents: 100,
				TotalCents:    900,
			},
			line:     LineItem{Name: "A", Quantity: 1},
			expected: 500,
		},
		{
			name: "negative discount treated as zero",
			order: Order{
				LineItems:     []LineItem{{Name: "A", UnitPriceCents: 1000, Quantity: 1}},
				DiscountCents: -300,
				TotalCents:    1000,
			},
			line:     LineItem{Name: "A", Quantity: 1},
			expected: 1000,
		},
		{
			name: "deduction larger than price floors at zero",
			order: Order{
				LineItems:           []LineItem{{Name: "A", UnitPriceCents: 300, Quantity: 1}},
				BonusPointsRedeemed: 5000,
				TotalCents:          0,
			},
			line:     LineItem{Name: "A", Quantity: 1},
			expected: 0,
		},
	}

	calc := newTestCalculator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, calc.EffectiveUnitRefund(tt.order, tt.line))
		})
	}
}

func TestProrate_SplitsDiscount(t *testing.T) {
	// the whole subtotal receives the whole discount
	assert.Equal(t, int64(1000), prorate(1000, 10000, 10000))

	// two equal-value lines split it evenly
	order := Order{
		LineItems: []LineItem{
			{Name: "A", UnitPriceCents: 2000, Quantity: 2},
			{Name: "B", UnitPriceCents: 4000, Quantity: 1},
		},
		DiscountCents: 1000,
	}
	subtotal := order.SubtotalCents()
	for _, l := range order.LineItems {
		assert.InDelta(t, 500, prorate(order.DiscountCents, l.UnitPriceCents*l.Quantity, subtotal), 1)
	}

	assert.Equal(t, int64(5), prorate(5, 999, 1000))
	assert.Equal(t, int64(0), prorate(5, 1, 1000))
}

func TestCalculator_ReturnRefundTotal(t *testing.T) {
	singleLine := Order{
		LineItems:         []LineItem{{Name: "A", UnitPriceCents: 1000, Quantity: 2}},
		ShippingCostCents: 495,
		TotalCents:        2495,
	}
	lineA := LineItem{Name: "A", UnitPriceCents: 1000}
	withQty := func(l LineItem, q int64) LineItem {
		l.Quantity = q
		return l
	}

	tests := []struct {
		name       string
		order      Order
		selections func(t *testing.T) []Selection
		prior      int64
		refund     int64
		shipping   int64
		fullReturn bool
		capped     bool
	}{
		{
			name:  "both units of line A, no shipping",
			order: twoLineOrder(),
			selections: func(t *testing.T) []Selection {
				return []Selection{mustSelection(t, LineItem{Name: "A", UnitPriceCents: 3000, Quantity: 2}, true, false, types.RefundPercentageFull)}
			},
			refund: 5400,
		},
		{
			name:  "returning every unit in one request refunds shipping",
			order: singleLine,
			selections: func(t *testing.T) []Selection {
				return []Selection{mustSelection(t, withQty(lineA, 2), true, false, types.RefundPercentageFull)}
			},
			refund:     2495,
			shipping:   495,
			fullReturn: true,
		},
		{
			name:  "returning one of two units keeps shipping",
			order: singleLine,
			selections: func(t *testing.T) []Selection {
				return []Selection{mustSelection(t, withQty(lineA, 1), true, false, types.RefundPercentageFull)}
			},
			refund: 1000,
		},
		{
			name:  "second partial return completes the order and refunds shipping",
			order: singleLine,
			selections: func(t *testing.T) []Selection {
				return []Selection{mustSelection(t, withQty(lineA, 1), true, false, types.RefundPercentageFull)}
			},
			prior:      1,
			refund:     1495,
			shipping:   495,
			fullReturn: true,
		},
		{
			name:  "prior quantity beyond the order still counts as full",
			order: singleLine,
			selections: func(t *testing.T) []Selection {
				return []Selection{mustSelection(t, withQty(lineA, 1), true, false, types.RefundPercentageFull)}
			},
			prior:      3,
			refund:     1495,
			shipping:   495,
			fullReturn: true,
		},
		{
			name:  "overlapping prorations are capped at the order total",
			order: singleLine,
			selections: func(t *testing.T) []Selection {
				return []Selection{
					mustSelection(t, withQty(lineA, 2), true, false, types.RefundPercentageFull),
					mustSelection(t, withQty(lineA, 2), true, false, types.RefundPercentageFull),
				}
			},
			refund:     2495,
			shipping:   495,
			fullReturn: true,
			capped:     true,
		},
		{
			name:  "not returned overrides accepted",
			order: singleLine,
			selections: func(t *testing.T) []Selection {
				return []Selection{mustSelection(t, withQty(lineA, 1), true, true, types.RefundPercentageFull)}
			},
			refund: 0,
		},
		{
			name:  "rejected lines neither refund nor count as returned",
			order: singleLine,
			selections: func(t *testing.T) []Selection {
				return []Selection{
					mustSelection(t, withQty(lineA, 1), true, false, types.RefundPercentageFull),
					mustSelection(t, withQty(lineA, 1), false, false, types.RefundPercentageFull),
				}
			},
			refund: 1000,
		},
		{
			name:  "accepted at zero percent counts as returned",
			order: singleLine,
			selections: func(t *testing.T) []Selection {
				return []Selection{mustSelection(t, withQty(lineA, 2), true, false, types.RefundPercentageNone)}
			},
			refund:     495,
			shipping:   495,
			fullReturn: true,
		},
		{
			name: "damaged goods at sixty percent of one unit",
			order: Order{
				LineItems:  []LineItem{{Name: "Mug", UnitPriceCents: 3333, Quantity: 3}},
				TotalCents: 9999,
			},
			selections: func(t *testing.T) []Selection {
				return []Selection{mustSelection(t, LineItem{Name: "Mug", Quantity: 1}, true, false, types.RefundPercentageDamaged)}
			},
			// round(3333 * 0.6) = round(1999.8)
			refund: 2000,
		},
		{
			name: "damaged goods at sixty percent of every unit",
			order: Order{
				LineItems:         []LineItem{{Name: "Mug", UnitPriceCents: 3333, Quantity: 3}},
				ShippingCostCents: 0,
				TotalCents:        9999,
			},
			selections: func(t *testing.T) []Selection {
				return []Selection{mustSelection(t, LineItem{Name: "Mug", Quantity: 3}, true, false, types.RefundPercentageDamaged)}
			},
			// round(9999 * 0.6) = round(5999.4)
			refund:     5999,
			fullReturn: true,
		},
		{
			name:  "no accepted selections refunds nothing",
			order: twoLineOrder(),
			selections: func(t *testing.T) []Selection {
				return nil
			},
			refund: 0,
		},
	}

	calc := newTestCalculator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := calc.ReturnRefundTotal(tt.order, tt.selections(t), tt.prior)
			assert.Equal(t, tt.refund, result.RefundCents)
			assert.Equal(t, tt.shipping, result.ShippingRefundCents)
			assert.Equal(t, tt.fullReturn, result.FullReturn)
			assert.Equal(t, tt.capped, result.Capped)
			assert.LessOrEqual(t, result.RefundCents, tt.order.TotalCents)
		})
	}
}

func TestCalculator_ReturnRefundTotal_Breakdown(t *testing.T) {
	calc := newTestCalculator()
	order := twoLineOrder()

	selections := []Selection{
		mustSelection(t, LineItem{Name: "A", Quantity: 1}, true, false, types.RefundPercentageFull),
		mustSelection(t, LineItem{Name: "B", Quantity: 1}, true, false, types.RefundPercentageDamaged),
	}

	result := calc.ReturnRefundTotal(order, selections, 0)
	require.Len(t, result.Lines, 2)
	assert.Equal(t, int64(2700), result.Lines[0].UnitRefundCents)
	assert.Equal(t, int64(2700), result.Lines[0].RefundCents)
	assert.Equal(t, int64(3600), result.Lines[1].UnitRefundCents)
	assert.Equal(t, int64(2160), result.Lines[1].RefundCents)
	assert.Equal(t, int64(4860), result.ItemsRefundCents)
	assert.Equal(t, int64(2), result.SelectedQuantity)
	assert.Equal(t, int64(3), result.TotalOrderQuantity)
	assert.False(t, result.FullReturn)
	assert.Equal(t, int64(4860), result.RefundCents)
}

func TestCalculator_DoesNotMutateInputs(t *testing.T) {
	calc := newTestCalculator()
	order := twoLineOrder()
	before := twoLineOrder()
	selections := []Selection{
		mustSelection(t, LineItem{Name: "A", Quantity: 2}, true, false, types.RefundPercentageFull),
	}

	calc.ReturnRefundTotal(order, selections, 0)
	calc.ReturnRefundTotal(order, selections, 0)
	assert.Equal(t, before, order)
	assert.True(t, selections[0].Accepted())
}

func TestCalculator_WithoutPointsTable(t *testing.T) {
	calc := NewCalculator(nil)
	order := Order{
		LineItems:           []LineItem{{Name: "A", UnitPriceCents: 1000, Quantity: 1}},
		BonusPointsRedeemed: 5000,
		TotalCents:          1000,
	}
	assert.Equal(t, int64(1000), calc.EffectiveUnitRefund(order, LineItem{Name: "A", Quantity: 1}))
}

func TestNewSelection(t *testing.T) {
	line := LineItem{Name: "A", UnitPriceCents: 1000, Quantity: 1}

	t.Run("not returned forces rejection and zero percent", func(t *testing.T) {
		s, err := NewSelection(line, true, true, types.RefundPercentageFull)
		require.NoError(t, err)
		assert.False(t, s.Accepted())
		assert.True(t, s.NotReturned())
		assert.Equal(t, types.RefundPercentageNone, s.RefundPercentage())
	})

	t.Run("percentage outside the tiers is rejected", func(t *testing.T) {
		for _, pct := range []types.RefundPercentage{-1, 1, 50, 59, 61, 99, 101} {
			_, err := NewSelection(line, true, false, pct)
			require.Error(t, err, "pct=%d", pct)
			assert.True(t, ierr.IsValidation(err))
		}
	})

	t.Run("negative quantity degrades to zero", func(t *testing.T) {
		s, err := NewSelection(LineItem{Name: "A", Quantity: -2, UnitPriceCents: -5}, true, false, types.RefundPercentageFull)
		require.NoError(t, err)
		assert.Equal(t, int64(0), s.Quantity())
		assert.Equal(t, int64(0), s.Line().UnitPriceCents)
	})
}

func TestMatchKey(t *testing.T) {
	a := NewMatchKey("Shirt", map[string]string{"size": "M", "color": "red"})
	b := NewMatchKey("Shirt", map[string]string{"color": "red", "size": "M"})
	assert.Equal(t, a, b)

	assert.Equal(t, NewMatchKey("Shirt", nil), NewMatchKey("Shirt", map[string]string{}))
	assert.NotEqual(t, a, NewMatchKey("Shirt", map[string]string{"size": "M"}))
	assert.NotEqual(t, a, NewMatchKey("Dress", map[string]string{"size": "M", "color": "red"}))

	// separators inside values must not collide with a different set
	assert.NotEqual(t,
		NewMatchKey("X", map[string]string{"a": "1,b=2"}),
		NewMatchKey("X", map[string]string{"a": "1", "b": "2"}),
	)
	assert.Equal(t, "Shirt", NewMatchKey("Shirt", nil).String())
}
