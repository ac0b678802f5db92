package refund

import (
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/shopfront/shopfront/internal/types"
)

// MatchKey identifies an order line by product name and variation set.
// Variations compare as an unordered key/value set; nil and empty are equal.
type MatchKey struct {
	Name       string
	variations string
}

func NewMatchKey(name string, variations map[string]string) MatchKey {
	return MatchKey{Name: name, variations: canonicalVariations(variations)}
}

func (k MatchKey) String() string {
	if k.variations == "" {
		return k.Name
	}
	return k.Name + " {" + k.variations + "}"
}

func canonicalVariations(variations map[string]string) string {
	if len(variations) == 0 {
		return ""
	}
	keys := lo.Keys(variations)
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(k))
		b.WriteByte('=')
		b.WriteString(strconv.Quote(variations[k]))
	}
	return b.String()
}

// LineItem is an order line as the engine sees it. On a selection the
// quantity is the returned quantity and the unit price is the price the
// return line states for itself.
type LineItem struct {
	Name           string
	Variations     map[string]string
	UnitPriceCents int64
	Quantity       int64
}

func (l LineItem) Key() MatchKey {
	return NewMatchKey(l.Name, l.Variations)
}

// Order is the read-only original order. TotalCents is the ceiling no
// refund computed against it may exceed.
type Order struct {
	LineItems           []LineItem
	DiscountCents       int64
	BonusPointsRedeemed int64
	ShippingCostCents   int64
	TotalCents          int64
}

// SubtotalCents sums unit price times quantity over all lines
func (o Order) SubtotalCents() int64 {
	return lo.SumBy(o.LineItems, func(l LineItem) int64 {
		return nonNegative(l.UnitPriceCents) * nonNegative(l.Quantity)
	})
}

// TotalQuantity sums the ordered quantity over all lines
func (o Order) TotalQuantity() int64 {
	return lo.SumBy(o.LineItems, func(l LineItem) int64 {
		return nonNegative(l.Quantity)
	})
}

func (o Order) findLine(key MatchKey) (LineItem, bool) {
	return lo.Find(o.LineItems, func(l LineItem) bool {
		return l.Key() == key
	})
}

// LineRefund is the breakdown for one accepted selection
type LineRefund struct {
	Key              MatchKey
	Quantity         int64
	RefundPercentage types.RefundPercentage
	UnitRefundCents  int64
	RefundCents      int64
}

// Result is the outcome of a refund computation. RefundCents is the amount owed.
type Result struct {
	ItemsRefundCents      int64
	ShippingRefundCents   int64
	RawTotalCents         int64
	RefundCents           int64
	Capped                bool
	FullReturn            bool
	SelectedQuantity      int64
	TotalReturnedQuantity int64
	TotalOrderQuantity    int64
	Lines                 []LineRefund
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
