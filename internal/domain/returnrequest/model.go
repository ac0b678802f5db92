package returnrequest

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopfront/shopfront/internal/domain/refund"
	"github.com/shopfront/shopfront/internal/types"
)

// ReturnRequest is a customer's request to send back part of an order.
// Version guards the completion write against concurrent adjudication.
type ReturnRequest struct {
	ID               string              `db:"id" json:"id"`
	ReturnNumber     string              `db:"return_number" json:"return_number"`
	OrderID          string              `db:"order_id" json:"order_id"`
	CustomerID       string              `db:"customer_id" json:"customer_id"`
	ReturnStatus     types.ReturnStatus  `db:"return_status" json:"return_status"`
	Reason           string              `db:"reason" json:"reason"`
	RefundCents      int64               `db:"refund_cents" json:"refund_cents"`
	ShippingRefunded bool                `db:"shipping_refunded" json:"shipping_refunded"`
	RefundMethod     *types.RefundMethod `db:"refund_method" json:"refund_method,omitempty"`
	RefundReference  *string             `db:"refund_reference" json:"refund_reference,omitempty"`
	AdminNote        *string             `db:"admin_note" json:"admin_note,omitempty"`
	CompletedAt      *time.Time          `db:"completed_at" json:"completed_at,omitempty"`
	Version          int64               `db:"version" json:"version"`
	LineItems        []*ReturnLineItem   `db:"-" json:"line_items"`

	types.BaseModel
}

// ReturnLineItem is one returned order line and its adjudication
type ReturnLineItem struct {
	ID               string                 `db:"id" json:"id"`
	ReturnID         string                 `db:"return_id" json:"return_id"`
	OrderLineItemID  string                 `db:"order_line_item_id" json:"order_line_item_id"`
	ProductID        string                 `db:"product_id" json:"product_id"`
	Name             string                 `db:"name" json:"name"`
	Variations       types.Variations       `db:"variations" json:"variations,omitempty"`
	UnitPriceCents   int64                  `db:"unit_price_cents" json:"unit_price_cents"`
	Quantity         int64                  `db:"quantity" json:"quantity"`
	Accepted         bool                   `db:"accepted" json:"accepted"`
	NotReturned      bool                   `db:"not_returned" json:"not_returned"`
	RefundPercentage types.RefundPercentage `db:"refund_percentage" json:"refund_percentage"`
	UnitRefundCents  int64                  `db:"unit_refund_cents" json:"unit_refund_cents"`
	RefundCents      int64                  `db:"refund_cents" json:"refund_cents"`

	types.BaseModel
}

func (r *ReturnRequest) IsOpen() bool {
	return r.ReturnStatus == types.ReturnStatusRequested
}

func (r *ReturnRequest) GetLineItem(id string) (*ReturnLineItem, bool) {
	return lo.Find(r.LineItems, func(l *ReturnLineItem) bool {
		return l.ID == id
	})
}

// RequestedQuantity sums the requested quantity per order line item id
func (r *ReturnRequest) RequestedQuantity() map[string]int64 {
	return r.quantityByOrderLine(func(*ReturnLineItem) bool { return true })
}

// AcceptedQuantity sums the accepted quantity per order line item id
func (r *ReturnRequest) AcceptedQuantity() map[string]int64 {
	return r.quantityByOrderLine(func(l *ReturnLineItem) bool { return l.Accepted })
}

func (r *ReturnRequest) quantityByOrderLine(include func(*ReturnLineItem) bool) map[string]int64 {
	out := make(map[string]int64, len(r.LineItems))
	for _, l := range r.LineItems {
		if include(l) {
			out[l.OrderLineItemID] += l.Quantity
		}
	}
	return out
}

// ToRefundLine converts the returned line into the engine's line input
func (l *ReturnLineItem) ToRefundLine() refund.LineItem {
	return refund.LineItem{
		Name:           l.Name,
		Variations:     l.Variations,
		UnitPriceCents: l.UnitPriceCents,
		Quantity:       l.Quantity,
	}
}
