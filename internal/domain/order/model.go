package order

import (
	"github.com/samber/lo"
	"github.com/shopfront/shopfront/internal/domain/refund"
	"github.com/shopfront/shopfront/internal/types"
)

// Order is a placed order. Amounts are integer cents and are fixed at
// checkout: refunds are always computed against these recorded values.
// ReturnsVersion is bumped by every return completion so that two
// completions against the same order cannot both see the same prior
// returned quantity.
type Order struct {
	ID                  string            `db:"id" json:"id"`
	OrderNumber         string            `db:"order_number" json:"order_number"`
	CustomerID          string            `db:"customer_id" json:"customer_id"`
	CustomerEmail       string            `db:"customer_email" json:"customer_email"`
	Currency            string            `db:"currency" json:"currency"`
	OrderStatus         types.OrderStatus `db:"order_status" json:"order_status"`
	SubtotalCents       int64             `db:"subtotal_cents" json:"subtotal_cents"`
	DiscountCents       int64             `db:"discount_cents" json:"discount_cents"`
	BonusPointsRedeemed int64             `db:"bonus_points_redeemed" json:"bonus_points_redeemed"`
	PointsDiscountCents int64             `db:"points_discount_cents" json:"points_discount_cents"`
	ShippingCostCents   int64             `db:"shipping_cost_cents" json:"shipping_cost_cents"`
	TotalCents          int64             `db:"total_cents" json:"total_cents"`
	ReturnsVersion      int64             `db:"returns_version" json:"-"`
	Metadata            types.Metadata    `db:"metadata" json:"metadata"`
	LineItems           []*OrderLineItem  `db:"-" json:"line_items"`

	types.BaseModel
}

// OrderLineItem is one product line of an order
type OrderLineItem struct {
	ID             string           `db:"id" json:"id"`
	OrderID        string           `db:"order_id" json:"order_id"`
	ProductID      string           `db:"product_id" json:"product_id"`
	Name           string           `db:"name" json:"name"`
	Variations     types.Variations `db:"variations" json:"variations,omitempty"`
	UnitPriceCents int64            `db:"unit_price_cents" json:"unit_price_cents"`
	Quantity       int64            `db:"quantity" json:"quantity"`

	types.BaseModel
}

// TotalQuantity sums the ordered quantity over all lines
func (o *Order) TotalQuantity() int64 {
	return lo.SumBy(o.LineItems, func(l *OrderLineItem) int64 {
		return l.Quantity
	})
}

func (o *Order) GetLineItem(id string) (*OrderLineItem, bool) {
	return lo.Find(o.LineItems, func(l *OrderLineItem) bool {
		return l.ID == id
	})
}

// ToRefundOrder converts the stored order into the engine's input
func (o *Order) ToRefundOrder() refund.Order {
	return refund.Order{
		LineItems: lo.Map(o.LineItems, func(l *OrderLineItem, _ int) refund.LineItem {
			return l.ToRefundLine(l.Quantity)
		}),
		DiscountCents:       o.DiscountCents,
		BonusPointsRedeemed: o.BonusPointsRedeemed,
		ShippingCostCents:   o.ShippingCostCents,
		TotalCents:          o.TotalCents,
	}
}

// ToRefundLine converts the line with the given quantity
func (l *OrderLineItem) ToRefundLine(quantity int64) refund.LineItem {
	return refund.LineItem{
		Name:           l.Name,
		Variations:     l.Variations,
		UnitPriceCents: l.UnitPriceCents,
		Quantity:       quantity,
	}
}

// MatchKey identifies the line the way returned items are matched back to it
func (l *OrderLineItem) MatchKey() refund.MatchKey {
	return refund.NewMatchKey(l.Name, l.Variations)
}
