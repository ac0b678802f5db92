package refund

import (
	"github.com/shopfront/shopfront/internal/types"
)

// Selection is the adjudication of one returned line. Its fields are only
// settable through NewSelection, so a not-returned line that is accepted or
// carries a refund percentage cannot reach the calculator.
type Selection struct {
	line        LineItem
	accepted    bool
	notReturned bool
	percentage  types.RefundPercentage
}

// NewSelection validates the refund percentage and normalises the flags.
// A percentage outside the sanctioned tiers is rejected rather than clamped.
// notReturned forces accepted to false and the percentage to 0.
func NewSelection(line LineItem, accepted, notReturned bool, percentage types.RefundPercentage) (Selection, error) {
	if err := percentage.Validate(); err != nil {
		return Selection{}, err
	}

	if notReturned {
		accepted = false
		percentage = types.RefundPercentageNone
	}

	line.Quantity = nonNegative(line.Quantity)
	line.UnitPriceCents = nonNegative(line.UnitPriceCents)

	return Selection{
		line:        line,
		accepted:    accepted,
		notReturned: notReturned,
		percentage:  percentage,
	}, nil
}

func (s Selection) Line() LineItem {
	return s.line
}

func (s Selection) Key() MatchKey {
	return s.line.Key()
}

func (s Selection) Quantity() int64 {
	return s.line.Quantity
}

func (s Selection) Accepted() bool {
	return s.accepted
}

func (s Selection) NotReturned() bool {
	return s.notReturned
}

func (s Selection) RefundPercentage() types.RefundPercentage {
	return s.percentage
}
