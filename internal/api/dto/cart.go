package dto

import (
	"github.com/shopfront/shopfront/internal/domain/loyalty"
	ierr "github.com/shopfront/shopfront/internal/errors"
	"github.com/shopfront/shopfront/internal/types"
	"github.com/shopfront/shopfront/internal/validator"
	"github.com/shopspring/decimal"
)

// DiscountRequest is an order-level discount code resolved by the storefront
type DiscountRequest struct {
	Type  types.DiscountType `json:"type" validate:"required"`
	Value decimal.Decimal    `json:"value"`
}

func (r *DiscountRequest) Validate() error {
	if err := r.Type.Validate(); err != nil {
		return err
	}

	if r.Value.IsNegative() {
		return ierr.NewError("discount value must not be negative").
			WithHint("Discount value must be zero or greater").
			Mark(ierr.ErrValidation)
	}

	if r.Type == types.DiscountTypePercentage && r.Value.GreaterThan(decimal.NewFromInt(100)) {
		return ierr.NewError("discount percentage exceeds 100").
			WithHint("A percentage discount must be between 0 and 100").
			WithReportableDetails(map[string]any{
				"value": r.Value.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

type CartItemRequest struct {
	UnitPriceCents int64 `json:"unit_price_cents" validate:"min=0"`
	Quantity       int64 `json:"quantity" validate:"min=1"`
}

// CartEstimateRequest prices a cart before checkout
type CartEstimateRequest struct {
	Items                []CartItemRequest `json:"items" validate:"required,min=1,dive"`
	Discount             *DiscountRequest  `json:"discount,omitempty"`
	BonusPointsToRedeem  int64             `json:"bonus_points_to_redeem" validate:"min=0"`
	AvailableBonusPoints int64             `json:"available_bonus_points" validate:"min=0"`
}

func (r *CartEstimateRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if r.Discount != nil {
		if err := r.Discount.Validate(); err != nil {
			return err
		}
	}

	if r.BonusPointsToRedeem > r.AvailableBonusPoints {
		return ierr.NewError("not enough bonus points").
			WithHintf("Cannot redeem %d points, only %d available", r.BonusPointsToRedeem, r.AvailableBonusPoints).
			WithReportableDetails(map[string]any{
				"bonus_points_to_redeem": r.BonusPointsToRedeem,
				"available_bonus_points": r.AvailableBonusPoints,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// CartEstimateResponse is the checkout price breakdown
type CartEstimateResponse struct {
	SubtotalCents       int64         `json:"subtotal_cents"`
	DiscountCents       int64         `json:"discount_cents"`
	BonusPointsRedeemed int64         `json:"bonus_points_redeemed"`
	PointsDiscountCents int64         `json:"points_discount_cents"`
	PointsRedeemedTier  *loyalty.Tier `json:"points_redeemed_tier,omitempty"`
	ShippingCents       int64         `json:"shipping_cents"`
	TotalCents          int64         `json:"total_cents"`
	NextTier            *loyalty.Tier `json:"next_tier,omitempty"`
	Currency            string        `json:"currency"`
}
