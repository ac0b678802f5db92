package service

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"github.com/shopfront/shopfront/internal/api/dto"
	"github.com/shopfront/shopfront/internal/types"
	"github.com/shopspring/decimal"
)

// CartService prices a cart the same way checkout prices the order
type CartService interface {
	Estimate(ctx context.Context, req *dto.CartEstimateRequest) (*dto.CartEstimateResponse, error)
}

type cartService struct {
	ServiceParams
}

func NewCartService(params ServiceParams) CartService {
	return &cartService{
		ServiceParams: params,
	}
}

func (s *cartService) Estimate(ctx context.Context, req *dto.CartEstimateRequest) (*dto.CartEstimateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return priceCart(s.ServiceParams, req), nil
}

// priceCart computes the checkout breakdown. The request must be valid.
//
// total = subtotal - discount - points discount + shipping, floored at 0.
// A fixed discount value is in cents, a percentage discount is rounded half
// away from zero and neither may exceed the subtotal. Shipping is waived
// when the subtotal reaches the free-shipping threshold (0 disables it).
func priceCart(params ServiceParams, req *dto.CartEstimateRequest) *dto.CartEstimateResponse {
	checkout := params.Config.Checkout

	subtotal := lo.SumBy(req.Items, func(item dto.CartItemRequest) int64 {
		return item.UnitPriceCents * item.Quantity
	})

	var discount int64
	if req.Discount != nil {
		switch req.Discount.Type {
		case types.DiscountTypePercentage:
			discount = decimal.NewFromInt(subtotal).
				Mul(req.Discount.Value).
				DivRound(decimal.NewFromInt(100), 0).
				IntPart()
		case types.DiscountTypeFixed:
			discount = req.Discount.Value.Round(0).IntPart()
		}
		discount = min(max(discount, 0), subtotal)
	}

	resp := &dto.CartEstimateResponse{
		SubtotalCents:       subtotal,
		DiscountCents:       discount,
		BonusPointsRedeemed: req.BonusPointsToRedeem,
		Currency:            strings.ToUpper(checkout.Currency),
	}

	if tier, ok := params.PointsTable.Reached(req.BonusPointsToRedeem); ok {
		resp.PointsDiscountCents = tier.DiscountCents
		resp.PointsRedeemedTier = lo.ToPtr(tier)
	}
	if next, ok := params.PointsTable.NextTier(req.BonusPointsToRedeem); ok && next.MinPoints <= req.AvailableBonusPoints {
		resp.NextTier = lo.ToPtr(next)
	}

	resp.ShippingCents = checkout.ShippingCostCents
	if checkout.FreeShippingThresholdCents > 0 && subtotal >= checkout.FreeShippingThresholdCents {
		resp.ShippingCents = 0
	}

	resp.TotalCents = max(0, subtotal-resp.DiscountCents-resp.PointsDiscountCents+resp.ShippingCents)

	return resp
}
