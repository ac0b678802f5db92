package dto

import (
	"context"

	"github.com/samber/lo"
	"github.com/shopfront/shopfront/internal/domain/order"
	"github.com/shopfront/shopfront/internal/domain/returnrequest"
	ierr "github.com/shopfront/shopfront/internal/errors"
	"github.com/shopfront/shopfront/internal/types"
	"github.com/shopfront/shopfront/internal/validator"
)

// CreateReturnRequest is submitted by the customer. Each item names the
// order line either by id or by product name and variations.
type CreateReturnRequest struct {
	OrderID    string                        `json:"order_id" validate:"required"`
	CustomerID string                        `json:"customer_id" validate:"required"`
	Reason     string                        `json:"reason" validate:"omitempty,max=1000"`
	LineItems  []CreateReturnLineItemRequest `json:"line_items" validate:"required,min=1,dive"`
}

type CreateReturnLineItemRequest struct {
	OrderLineItemID string           `json:"order_line_item_id,omitempty"`
	Name            string           `json:"name,omitempty"`
	Variations      types.Variations `json:"variations,omitempty"`
	Quantity        int64            `json:"quantity" validate:"min=1"`
}

func (r *CreateReturnRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	for i, item := range r.LineItems {
		if item.OrderLineItemID == "" && item.Name == "" {
			return ierr.NewError("return item does not identify an order line").
				WithHint("Each returned item needs an order_line_item_id or a name").
				WithReportableDetails(map[string]any{
					"index": i,
				}).
				Mark(ierr.ErrValidation)
		}
	}

	return nil
}

// ToReturnRequest builds the return for the resolved order lines. lines is
// parallel to r.LineItems.
func (r *CreateReturnRequest) ToReturnRequest(ctx context.Context, o *order.Order, lines []*order.OrderLineItem) *returnrequest.ReturnRequest {
	ret := &returnrequest.ReturnRequest{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RETURN),
		ReturnNumber: types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_RETURN),
		OrderID:      o.ID,
		CustomerID:   o.CustomerID,
		ReturnStatus: types.ReturnStatusRequested,
		Reason:       r.Reason,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}

	ret.LineItems = lo.Map(r.LineItems, func(item CreateReturnLineItemRequest, i int) *returnrequest.ReturnLineItem {
		line := lines[i]
		return &returnrequest.ReturnLineItem{
			ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RETURN_LINE_ITEM),
			ReturnID:         ret.ID,
			OrderLineItemID:  line.ID,
			ProductID:        line.ProductID,
			Name:             line.Name,
			Variations:       line.Variations,
			UnitPriceCents:   line.UnitPriceCents,
			Quantity:         item.Quantity,
			RefundPercentage: types.RefundPercentageNone,
			BaseModel:        types.GetDefaultBaseModel(ctx),
		}
	})

	return ret
}

// ReturnLineAdjudication is the operator's decision for one returned line
type ReturnLineAdjudication struct {
	LineItemID       string                 `json:"line_item_id" validate:"required"`
	Accepted         bool                   `json:"accepted"`
	NotReturned      bool                   `json:"not_returned"`
	RefundPercentage types.RefundPercentage `json:"refund_percentage" validate:"refund_percentage"`
}

// PreviewRefundRequest runs the refund computation without persisting it.
// Lines of the return left out of Items are treated as not accepted.
type PreviewRefundRequest struct {
	LineItems []ReturnLineAdjudication `json:"line_items" validate:"required,min=1,dive"`
}

func (r *PreviewRefundRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return validateAdjudications(r.LineItems)
}

type CompleteReturnRequest struct {
	LineItems       []ReturnLineAdjudication `json:"line_items" validate:"required,min=1,dive"`
	RefundMethod    types.RefundMethod       `json:"refund_method" validate:"required"`
	RefundReference *string                  `json:"refund_reference,omitempty" validate:"omitempty,max=255"`
	AdminNote       *string                  `json:"admin_note,omitempty" validate:"omitempty,max=1000"`
}

func (r *CompleteReturnRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if err := r.RefundMethod.Validate(); err != nil {
		return err
	}

	return validateAdjudications(r.LineItems)
}

func validateAdjudications(items []ReturnLineAdjudication) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.LineItemID]; ok {
			return ierr.NewError("return line adjudicated twice").
				WithHintf("Line item %s appears more than once", item.LineItemID).
				Mark(ierr.ErrValidation)
		}
		seen[item.LineItemID] = struct{}{}

		if err := item.RefundPercentage.Validate(); err != nil {
			return err
		}
	}
	return nil
}

type RejectReturnRequest struct {
	AdminNote string `json:"admin_note" validate:"omitempty,max=1000"`
}

func (r *RejectReturnRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type ReturnResponse struct {
	*returnrequest.ReturnRequest
}

// ListReturnsResponse represents the response for listing returns
type ListReturnsResponse = types.ListResponse[*ReturnResponse]

// RefundLineResponse is the computed refund of one accepted line
type RefundLineResponse struct {
	LineItemID       string                 `json:"line_item_id"`
	Name             string                 `json:"name"`
	Variations       types.Variations       `json:"variations,omitempty"`
	Quantity         int64                  `json:"quantity"`
	RefundPercentage types.RefundPercentage `json:"refund_percentage"`
	UnitRefundCents  int64                  `json:"unit_refund_cents"`
	RefundCents      int64                  `json:"refund_cents"`
}

// RefundPreviewResponse is the refund breakdown shown to the operator
type RefundPreviewResponse struct {
	ReturnID              string               `json:"return_id"`
	OrderID               string               `json:"order_id"`
	Currency              string               `json:"currency"`
	ItemsRefundCents      int64                `json:"items_refund_cents"`
	ShippingRefundCents   int64                `json:"shipping_refund_cents"`
	RefundCents           int64                `json:"refund_cents"`
	Capped                bool                 `json:"capped"`
	ShippingRefunded      bool                 `json:"shipping_refunded"`
	PriorReturnedQuantity int64                `json:"prior_returned_quantity"`
	SelectedQuantity      int64                `json:"selected_quantity"`
	TotalOrderQuantity    int64                `json:"total_order_quantity"`
	LineItems             []RefundLineResponse `json:"line_items"`
}
