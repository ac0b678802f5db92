package refund

import (
	"github.com/shopspring/decimal"
)

// PointsDiscounter converts redeemed bonus points to the discount they
// bought. loyalty.TierTable implements it.
type PointsDiscounter interface {
	DiscountCents(points int64) int64
}

// Calculator is the return refund proration engine. It is pure: it holds
// no state beyond the points table and never mutates its inputs.
type Calculator interface {
	// EffectiveUnitRefund returns what one unit of line is worth after its
	// share of the order discount and the points discount is deducted.
	EffectiveUnitRefund(order Order, line LineItem) int64

	// ReturnRefundTotal computes the refund owed for the accepted selections.
	// priorReturnedQuantity is the accepted quantity of earlier completed
	// returns of the same order and decides whether shipping is refunded.
	ReturnRefundTotal(order Order, selections []Selection, priorReturnedQuantity int64) Result
}

type calculator struct {
	points PointsDiscounter
}

func NewCalculator(points PointsDiscounter) Calculator {
	return &calculator{points: points}
}

func (c *calculator) EffectiveUnitRefund(order Order, line LineItem) int64 {
	original, ok := order.findLine(line.Key())
	if !ok {
		return nonNegative(line.UnitPriceCents)
	}

	unitPrice := nonNegative(original.UnitPriceCents)
	quantity := nonNegative(original.Quantity)
	subtotal := order.SubtotalCents()
	if subtotal == 0 || quantity == 0 {
		return unitPrice
	}

	// share = lineTotal / subtotal, clamped to [0, 1]
	lineTotal := min(unitPrice*quantity, subtotal)

	proratedDiscount := prorate(nonNegative(order.DiscountCents), lineTotal, subtotal)
	proratedPoints := prorate(c.pointsDiscount(order.BonusPointsRedeemed), lineTotal, subtotal)

	// each division rounds on its own, remainders are not carried
	perUnitDeduction := divRound(proratedDiscount, quantity) + divRound(proratedPoints, quantity)

	return max(0, unitPrice-perUnitDeduction)
}

func (c *calculator) ReturnRefundTotal(order Order, selections []Selection, priorReturnedQuantity int64) Result {
	result := Result{
		TotalOrderQuantity: order.TotalQuantity(),
		Lines:              make([]LineRefund, 0, len(selections)),
	}

	for _, s := range selections {
		if !s.Accepted() {
			continue
		}

		unitRefund := c.EffectiveUnitRefund(order, s.Line())
		lineRefund := divRound(unitRefund*s.Quantity()*s.RefundPercentage().Int64(), 100)

		result.ItemsRefundCents += lineRefund
		result.SelectedQuantity += s.Quantity()
		result.Lines = append(result.Lines, LineRefund{
			Key:              s.Key(),
			Quantity:         s.Quantity(),
			RefundPercentage: s.RefundPercentage(),
			UnitRefundCents:  unitRefund,
			RefundCents:      lineRefund,
		})
	}

	result.TotalReturnedQuantity = nonNegative(priorReturnedQuantity) + result.SelectedQuantity
	result.FullReturn = result.TotalReturnedQuantity >= result.TotalOrderQuantity
	if result.FullReturn {
		result.ShippingRefundCents = nonNegative(order.ShippingCostCents)
	}

	result.RawTotalCents = result.ItemsRefundCents + result.ShippingRefundCents
	result.RefundCents = result.RawTotalCents

	ceiling := nonNegative(order.TotalCents)
	if result.RawTotalCents > ceiling {
		result.RefundCents = ceiling
		result.Capped = true
	}

	return result
}

func (c *calculator) pointsDiscount(points int64) int64 {
	if c.points == nil {
		return 0
	}
	return nonNegative(c.points.DiscountCents(nonNegative(points)))
}

// prorate returns round(amount * part / whole) without overflowing on large orders
func prorate(amount, part, whole int64) int64 {
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(part)).
		DivRound(decimal.NewFromInt(whole), 0).
		IntPart()
}

// divRound divides rounding half away from zero
func divRound(n, d int64) int64 {
	return decimal.NewFromInt(n).DivRound(decimal.NewFromInt(d), 0).IntPart()
}
