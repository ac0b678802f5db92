package dto

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"github.com/shopfront/shopfront/internal/domain/order"
	"github.com/shopfront/shopfront/internal/domain/refund"
	ierr "github.com/shopfront/shopfront/internal/errors"
	"github.com/shopfront/shopfront/internal/types"
	"github.com/shopfront/shopfront/internal/validator"
)

type CreateOrderRequest struct {
	CustomerID           string                       `json:"customer_id" validate:"required"`
	CustomerEmail        string                       `json:"customer_email" validate:"omitempty,email"`
	Currency             string                       `json:"currency" validate:"omitempty,len=3"`
	LineItems            []CreateOrderLineItemRequest `json:"line_items" validate:"required,min=1,dive"`
	Discount             *DiscountRequest             `json:"discount,omitempty"`
	BonusPointsToRedeem  int64                        `json:"bonus_points_to_redeem" validate:"min=0"`
	AvailableBonusPoints int64                        `json:"available_bonus_points" validate:"min=0"`
	Metadata             types.Metadata               `json:"metadata,omitempty"`
}

type CreateOrderLineItemRequest struct {
	ProductID      string           `json:"product_id"`
	Name           string           `json:"name" validate:"required"`
	Variations     types.Variations `json:"variations,omitempty"`
	UnitPriceCents int64            `json:"unit_price_cents" validate:"min=0"`
	Quantity       int64            `json:"quantity" validate:"min=1"`
}

func (r *CreateOrderRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	// a line is identified by product name and variations
	keys := lo.Map(r.LineItems, func(l CreateOrderLineItemRequest, _ int) refund.MatchKey {
		return refund.NewMatchKey(l.Name, l.Variations)
	})
	if dup := lo.FindDuplicates(keys); len(dup) > 0 {
		return ierr.NewError("duplicate order line").
			WithHintf("Product %q with the same variations appears more than once, merge the lines", dup[0].Name).
			WithReportableDetails(map[string]any{
				"name": dup[0].Name,
			}).
			Mark(ierr.ErrValidation)
	}

	// checkout and estimate share the same pricing rules
	return r.ToCartEstimateRequest().Validate()
}

// ToCartEstimateRequest is the cart the order is priced from
func (r *CreateOrderRequest) ToCartEstimateRequest() *CartEstimateRequest {
	return &CartEstimateRequest{
		Items: lo.Map(r.LineItems, func(l CreateOrderLineItemRequest, _ int) CartItemRequest {
			return CartItemRequest{
				UnitPriceCents: l.UnitPriceCents,
				Quantity:       l.Quantity,
			}
		}),
		Discount:             r.Discount,
		BonusPointsToRedeem:  r.BonusPointsToRedeem,
		AvailableBonusPoints: r.AvailableBonusPoints,
	}
}

// ToOrder builds the order priced by quote
func (r *CreateOrderRequest) ToOrder(ctx context.Context, quote *CartEstimateResponse) *order.Order {
	currency := r.Currency
	if currency == "" {
		currency = quote.Currency
	}

	o := &order.Order{
		ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ORDER),
		OrderNumber:         types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_ORDER),
		CustomerID:          r.CustomerID,
		CustomerEmail:       r.CustomerEmail,
		Currency:            strings.ToUpper(currency),
		OrderStatus:         types.OrderStatusPlaced,
		SubtotalCents:       quote.SubtotalCents,
		DiscountCents:       quote.DiscountCents,
		BonusPointsRedeemed: quote.BonusPointsRedeemed,
		PointsDiscountCents: quote.PointsDiscountCents,
		ShippingCostCents:   quote.ShippingCents,
		TotalCents:          quote.TotalCents,
		Metadata:            r.Metadata,
		BaseModel:           types.GetDefaultBaseModel(ctx),
	}

	o.LineItems = lo.Map(r.LineItems, func(l CreateOrderLineItemRequest, _ int) *order.OrderLineItem {
		return &order.OrderLineItem{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ORDER_LINE_ITEM),
			OrderID:        o.ID,
			ProductID:      l.ProductID,
			Name:           l.Name,
			Variations:     l.Variations,
			UnitPriceCents: l.UnitPriceCents,
			Quantity:       l.Quantity,
			BaseModel:      types.GetDefaultBaseModel(ctx),
		}
	})

	return o
}

type OrderResponse struct {
	*order.Order
}

// ListOrdersResponse represents the response for listing orders
type ListOrdersResponse = types.ListResponse[*OrderResponse]
