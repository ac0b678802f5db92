package types

import (
	"github.com/samber/lo"
	ierr "github.com/shopfront/shopfront/internal/errors"
)

// DiscountType represents the type of an order-level discount
type DiscountType string

const (
	// DiscountTypeFixed is a flat amount in cents
	DiscountTypeFixed DiscountType = "fixed"
	// DiscountTypePercentage is a percentage of the subtotal
	DiscountTypePercentage DiscountType = "percentage"
)

func (t DiscountType) Validate() error {
	allowed := []DiscountType{DiscountTypeFixed, DiscountTypePercentage}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid discount type").
			WithHintf("Discount type must be one of %v", allowed).
			Mark(ierr.ErrValidation)
	}
	return nil
}
