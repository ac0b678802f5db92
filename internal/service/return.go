package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/samber/lo"
	"github.com/shopfront/shopfront/internal/api/dto"
	"github.com/shopfront/shopfront/internal/domain/order"
	"github.com/shopfront/shopfront/internal/domain/refund"
	"github.com/shopfront/shopfront/internal/domain/returnrequest"
	ierr "github.com/shopfront/shopfront/internal/errors"
	"github.com/shopfront/shopfront/internal/types"
)

type ReturnService interface {
	// CreateReturn opens a return for part of an order. Each item must match
	// an order line and may not exceed what is still returnable on it.
	CreateReturn(ctx context.Context, req *dto.CreateReturnRequest) (*dto.ReturnResponse, error)
	GetReturn(ctx context.Context, id string) (*dto.ReturnResponse, error)
	ListReturns(ctx context.Context, filter *types.ReturnFilter) (*dto.ListReturnsResponse, error)

	// PreviewRefund computes the refund for a proposed adjudication without
	// persisting anything
	PreviewRefund(ctx context.Context, id string, req *dto.PreviewRefundRequest) (*dto.RefundPreviewResponse, error)

	// CompleteReturn adjudicates the return, stores the refund owed and
	// closes it. Completions of returns of the same order are serialised
	// through the order's returns version, so every completion sees the
	// accepted quantity of all completions before it. No order line can be
	// accepted more often than it was ordered across all returns.
	CompleteReturn(ctx context.Context, id string, req *dto.CompleteReturnRequest) (*dto.ReturnResponse, error)

	RejectReturn(ctx context.Context, id string, req *dto.RejectReturnRequest) (*dto.ReturnResponse, error)
}

type returnService struct {
	ServiceParams
}

func NewReturnService(params ServiceParams) ReturnService {
	return &returnService{
		ServiceParams: params,
	}
}

func (s *returnService) CreateReturn(ctx context.Context, req *dto.CreateReturnRequest) (*dto.ReturnResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var ret *returnrequest.ReturnRequest
	err := s.DB.WithTx(ctx, func(tx context.Context) error {
		o, err := s.OrderRepo.Get(tx, req.OrderID)
		if err != nil {
			return err
		}

		if o.CustomerID != req.CustomerID {
			return ierr.NewError("order belongs to another customer").
				WithHint("You can only return items from your own orders").
				Mark(ierr.ErrPermissionDenied)
		}

		if o.OrderStatus == types.OrderStatusCancelled {
			return ierr.NewError("order is cancelled").
				WithHint("Items of a cancelled order cannot be returned").
				WithReportableDetails(map[string]any{
					"order_id": o.ID,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		lines, err := resolveReturnLines(o, req.LineItems)
		if err != nil {
			return err
		}

		reserved, err := s.reservedQuantityByLine(tx, o.ID)
		if err != nil {
			return err
		}

		if err := validateReturnableQuantity(lines, req.LineItems, reserved); err != nil {
			return err
		}

		ret = req.ToReturnRequest(tx, o, lines)
		return s.ReturnRepo.Create(tx, ret)
	})
	if err != nil {
		s.Logger.Errorw("failed to create return",
			"error", err,
			"order_id", req.OrderID,
		)
		return nil, err
	}

	s.Logger.Infow("return requested",
		"return_id", ret.ID,
		"return_number", ret.ReturnNumber,
		"order_id", ret.OrderID,
		"line_items_count", len(ret.LineItems),
	)

	s.publishReturnEvent(ctx, types.EventReturnRequested, ret, "")

	return &dto.ReturnResponse{ReturnRequest: ret}, nil
}

// resolveReturnLines finds the order line of every requested item, by id
// when given and otherwise by product name and variations
func resolveReturnLines(o *order.Order, items []dto.CreateReturnLineItemRequest) ([]*order.OrderLineItem, error) {
	lines := make([]*order.OrderLineItem, len(items))
	for i, item := range items {
		var (
			line *order.OrderLineItem
			ok   bool
		)
		if item.OrderLineItemID != "" {
			line, ok = o.GetLineItem(item.OrderLineItemID)
		} else {
			key := refund.NewMatchKey(item.Name, item.Variations)
			line, ok = lo.Find(o.LineItems, func(l *order.OrderLineItem) bool {
				return l.MatchKey() == key
			})
		}

		if !ok {
			ref := item.Name
			if item.OrderLineItemID != "" {
				ref = item.OrderLineItemID
			}
			return nil, ierr.NewError("returned item is not part of the order").
				WithHintf("Item %q does not match any line of the order", ref).
				WithReportableDetails(map[string]any{
					"order_id":           o.ID,
					"order_line_item_id": item.OrderLineItemID,
					"name":               item.Name,
				}).
				Mark(ierr.ErrValidation)
		}
		lines[i] = line
	}
	return lines, nil
}

// reservedQuantityByLine sums per order line what completed returns accepted
// and what open returns still claim
func (s *returnService) reservedQuantityByLine(ctx context.Context, orderID string) (map[string]int64, error) {
	reserved, err := s.ReturnRepo.AcceptedQuantityByLine(ctx, orderID, "")
	if err != nil {
		return nil, err
	}

	filter := types.NewNoLimitReturnFilter()
	filter.OrderID = orderID
	filter.ReturnStatus = []types.ReturnStatus{types.ReturnStatusRequested}
	open, err := s.ReturnRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	for _, ret := range open {
		for lineID, qty := range ret.RequestedQuantity() {
			reserved[lineID] += qty
		}
	}
	return reserved, nil
}

// validateReturnableQuantity checks that no order line is returned more
// often than it was ordered, counting completed and open returns
func validateReturnableQuantity(lines []*order.OrderLineItem, items []dto.CreateReturnLineItemRequest, reserved map[string]int64) error {
	requested := make(map[string]int64, len(lines))
	for i, line := range lines {
		requested[line.ID] += items[i].Quantity
	}

	for _, line := range lo.UniqBy(lines, func(l *order.OrderLineItem) string { return l.ID }) {
		returnable := max(0, line.Quantity-reserved[line.ID])
		if requested[line.ID] > returnable {
			return ierr.NewError("return quantity exceeds returnable quantity").
				WithHintf("Only %d of %q can still be returned", returnable, line.Name).
				WithReportableDetails(map[string]any{
					"order_line_item_id": line.ID,
					"ordered":            line.Quantity,
					"already_returned":   reserved[line.ID],
					"requested":          requested[line.ID],
				}).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

func (s *returnService) GetReturn(ctx context.Context, id string) (*dto.ReturnResponse, error) {
	ret, err := s.ReturnRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.ReturnResponse{ReturnRequest: ret}, nil
}

func (s *returnService) ListReturns(ctx context.Context, filter *types.ReturnFilter) (*dto.ListReturnsResponse, error) {
	if filter == nil {
		filter = types.NewReturnFilter()
	}

	if err := filter.Validate(); err != nil {
		return nil, err
	}

	returns, err := s.ReturnRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.ReturnRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	response := &dto.ListReturnsResponse{
		Items: make([]*dto.ReturnResponse, len(returns)),
	}
	for i, ret := range returns {
		response.Items[i] = &dto.ReturnResponse{ReturnRequest: ret}
	}
	response.Pagination = types.NewPaginationResponse(total, filter.GetLimit(), filter.GetOffset())

	return response, nil
}

func (s *returnService) PreviewRefund(ctx context.Context, id string, req *dto.PreviewRefundRequest) (*dto.RefundPreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ret, err := s.ReturnRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !ret.IsOpen() {
		return nil, returnNotOpenError(ret)
	}

	o, err := s.OrderRepo.Get(ctx, ret.OrderID)
	if err != nil {
		return nil, err
	}

	prior, err := s.ReturnRepo.SumAcceptedQuantity(ctx, o.ID, ret.ID)
	if err != nil {
		return nil, err
	}

	adj, err := s.adjudicate(o, ret, req.LineItems, prior)
	if err != nil {
		return nil, err
	}

	return adj.toPreviewResponse(), nil
}

func (s *returnService) CompleteReturn(ctx context.Context, id string, req *dto.CompleteReturnRequest) (*dto.ReturnResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		completed *returnrequest.ReturnRequest
		currency  string
		attempt   int
	)

	operation := func() error {
		attempt++
		err := s.DB.WithTx(ctx, func(tx context.Context) error {
			ret, err := s.ReturnRepo.Get(tx, id)
			if err != nil {
				return err
			}

			if !ret.IsOpen() {
				return returnNotOpenError(ret)
			}

			o, err := s.OrderRepo.Get(tx, ret.OrderID)
			if err != nil {
				return err
			}

			prior, err := s.ReturnRepo.SumAcceptedQuantity(tx, o.ID, ret.ID)
			if err != nil {
				return err
			}

			adj, err := s.adjudicate(o, ret, req.LineItems, prior)
			if err != nil {
				return err
			}

			if adj.result.SelectedQuantity == 0 {
				return ierr.NewError("no items selected").
					WithHint("Accept at least one returned item to complete the return").
					WithReportableDetails(map[string]any{
						"return_id": ret.ID,
					}).
					Mark(ierr.ErrValidation)
			}

			adj.apply(ret)
			ret.ReturnStatus = types.ReturnStatusCompleted
			ret.RefundMethod = lo.ToPtr(req.RefundMethod)
			ret.RefundReference = req.RefundReference
			ret.AdminNote = req.AdminNote
			ret.CompletedAt = lo.ToPtr(time.Now().UTC())
			ret.UpdatedAt = time.Now().UTC()
			ret.UpdatedBy = types.GetUserID(tx)

			// claim the order first: a concurrent completion of another
			// return of this order fails here before anything is written
			if err := s.OrderRepo.IncrementReturnsVersion(tx, o.ID, o.ReturnsVersion); err != nil {
				return err
			}

			// with the order claimed, completions committed since the
			// return was loaded are visible
			accepted, err := s.ReturnRepo.AcceptedQuantityByLine(tx, o.ID, ret.ID)
			if err != nil {
				return err
			}

			if err := validateAcceptedQuantity(o, ret, accepted); err != nil {
				return err
			}

			if err := s.ReturnRepo.Update(tx, ret); err != nil {
				return err
			}

			completed = ret
			currency = o.Currency
			return nil
		})

		if err != nil && !ierr.IsVersionConflict(err) {
			return backoff.Permanent(err)
		}
		if err != nil {
			s.Logger.Warnw("return completion conflicted, retrying",
				"return_id", id,
				"attempt", attempt,
				"error", err,
			)
			s.Sentry.AddBreadcrumb("returns", "completion version conflict", map[string]interface{}{
				"return_id": id,
				"attempt":   attempt,
			})
		}
		return err
	}

	if err := backoff.Retry(operation, s.completionBackOff(ctx)); err != nil {
		s.Logger.Errorw("failed to complete return",
			"error", err,
			"return_id", id,
			"attempts", attempt,
		)
		return nil, err
	}

	s.Logger.Infow("return completed",
		"return_id", completed.ID,
		"order_id", completed.OrderID,
		"refund_cents", completed.RefundCents,
		"shipping_refunded", completed.ShippingRefunded,
	)

	s.publishReturnEvent(ctx, types.EventReturnCompleted, completed, currency)

	return &dto.ReturnResponse{ReturnRequest: completed}, nil
}

// validateAcceptedQuantity checks that the lines ret accepts, added to what
// other completed returns accepted, stay within the ordered quantity
func validateAcceptedQuantity(o *order.Order, ret *returnrequest.ReturnRequest, accepted map[string]int64) error {
	for lineID, qty := range ret.AcceptedQuantity() {
		line, ok := o.GetLineItem(lineID)
		if !ok {
			return ierr.NewError("returned item is not part of the order").
				WithHintf("Order line %s no longer exists", lineID).
				WithReportableDetails(map[string]any{
					"order_id":           o.ID,
					"order_line_item_id": lineID,
				}).
				Mark(ierr.ErrValidation)
		}

		if accepted[lineID]+qty > line.Quantity {
			return ierr.NewError("accepted quantity exceeds ordered quantity").
				WithHintf("Only %d of %q can still be accepted", max(0, line.Quantity-accepted[lineID]), line.Name).
				WithReportableDetails(map[string]any{
					"return_id":          ret.ID,
					"order_line_item_id": lineID,
					"ordered":            line.Quantity,
					"already_returned":   accepted[lineID],
					"accepted":           qty,
				}).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

func (s *returnService) completionBackOff(ctx context.Context) backoff.BackOff {
	cfg := s.Config.Returns

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.CompletionRetryInterval()
	b.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(b, cfg.CompletionMaxRetries), ctx)
}

func (s *returnService) RejectReturn(ctx context.Context, id string, req *dto.RejectReturnRequest) (*dto.ReturnResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var rejected *returnrequest.ReturnRequest
	err := s.DB.WithTx(ctx, func(tx context.Context) error {
		ret, err := s.ReturnRepo.Get(tx, id)
		if err != nil {
			return err
		}

		if !ret.IsOpen() {
			return returnNotOpenError(ret)
		}

		ret.ReturnStatus = types.ReturnStatusRejected
		ret.RefundCents = 0
		ret.ShippingRefunded = false
		if req.AdminNote != "" {
			ret.AdminNote = lo.ToPtr(req.AdminNote)
		}
		for _, line := range ret.LineItems {
			line.Accepted = false
			line.UnitRefundCents = 0
			line.RefundCents = 0
		}
		ret.UpdatedAt = time.Now().UTC()
		ret.UpdatedBy = types.GetUserID(tx)

		if err := s.ReturnRepo.Update(tx, ret); err != nil {
			return err
		}

		rejected = ret
		return nil
	})
	if err != nil {
		s.Logger.Errorw("failed to reject return", "error", err, "return_id", id)
		return nil, err
	}

	s.Logger.Infow("return rejected", "return_id", rejected.ID, "order_id", rejected.OrderID)

	s.publishReturnEvent(ctx, types.EventReturnRejected, rejected, "")

	return &dto.ReturnResponse{ReturnRequest: rejected}, nil
}

func returnNotOpenError(ret *returnrequest.ReturnRequest) error {
	return ierr.NewError("return is already closed").
		WithHintf("Return %s is %s and can no longer be adjudicated", ret.ReturnNumber, ret.ReturnStatus).
		WithReportableDetails(map[string]any{
			"return_id":     ret.ID,
			"return_status": ret.ReturnStatus,
		}).
		Mark(ierr.ErrInvalidOperation)
}

// adjudication is the engine's verdict over every line of a return.
// selections is parallel to ret.LineItems.
type adjudication struct {
	order      *order.Order
	ret        *returnrequest.ReturnRequest
	selections []refund.Selection
	prior      int64
	result     refund.Result
}

// adjudicate runs the refund engine over the operator's decisions. Lines
// the operator did not mention are not accepted.
func (s *returnService) adjudicate(o *order.Order, ret *returnrequest.ReturnRequest, items []dto.ReturnLineAdjudication, prior int64) (*adjudication, error) {
	byLine := lo.KeyBy(items, func(item dto.ReturnLineAdjudication) string {
		return item.LineItemID
	})

	for _, item := range items {
		if _, ok := ret.GetLineItem(item.LineItemID); !ok {
			return nil, ierr.NewError("line item is not part of the return").
				WithHintf("Return %s has no line item %s", ret.ReturnNumber, item.LineItemID).
				WithReportableDetails(map[string]any{
					"return_id":    ret.ID,
					"line_item_id": item.LineItemID,
				}).
				Mark(ierr.ErrValidation)
		}
	}

	selections := make([]refund.Selection, len(ret.LineItems))
	for i, line := range ret.LineItems {
		item, ok := byLine[line.ID]
		if !ok {
			item = dto.ReturnLineAdjudication{LineItemID: line.ID}
		}

		selection, err := refund.NewSelection(line.ToRefundLine(), item.Accepted, item.NotReturned, item.RefundPercentage)
		if err != nil {
			return nil, err
		}
		selections[i] = selection
	}

	return &adjudication{
		order:      o,
		ret:        ret,
		selections: selections,
		prior:      prior,
		result:     s.Calculator.ReturnRefundTotal(o.ToRefundOrder(), selections, prior),
	}, nil
}

// lineRefunds pairs every accepted return line with its computed refund.
// The engine reports accepted selections in input order.
func (a *adjudication) lineRefunds() map[string]refund.LineRefund {
	out := make(map[string]refund.LineRefund, len(a.result.Lines))
	next := 0
	for i, selection := range a.selections {
		if !selection.Accepted() || next >= len(a.result.Lines) {
			continue
		}
		out[a.ret.LineItems[i].ID] = a.result.Lines[next]
		next++
	}
	return out
}

// apply writes the adjudication and the refund onto the return
func (a *adjudication) apply(ret *returnrequest.ReturnRequest) {
	refunds := a.lineRefunds()
	for i, line := range ret.LineItems {
		selection := a.selections[i]
		line.Accepted = selection.Accepted()
		line.NotReturned = selection.NotReturned()
		line.RefundPercentage = selection.RefundPercentage()
		line.UnitRefundCents = 0
		line.RefundCents = 0
		if lr, ok := refunds[line.ID]; ok {
			line.UnitRefundCents = lr.UnitRefundCents
			line.RefundCents = lr.RefundCents
		}
	}
	ret.RefundCents = a.result.RefundCents
	ret.ShippingRefunded = a.result.FullReturn
}

func (a *adjudication) toPreviewResponse() *dto.RefundPreviewResponse {
	refunds := a.lineRefunds()

	resp := &dto.RefundPreviewResponse{
		ReturnID:              a.ret.ID,
		OrderID:               a.order.ID,
		Currency:              a.order.Currency,
		ItemsRefundCents:      a.result.ItemsRefundCents,
		ShippingRefundCents:   a.result.ShippingRefundCents,
		RefundCents:           a.result.RefundCents,
		Capped:                a.result.Capped,
		ShippingRefunded:      a.result.FullReturn,
		PriorReturnedQuantity: a.prior,
		SelectedQuantity:      a.result.SelectedQuantity,
		TotalOrderQuantity:    a.result.TotalOrderQuantity,
		LineItems:             make([]dto.RefundLineResponse, 0, len(refunds)),
	}

	for _, line := range a.ret.LineItems {
		lr, ok := refunds[line.ID]
		if !ok {
			continue
		}
		resp.LineItems = append(resp.LineItems, dto.RefundLineResponse{
			LineItemID:       line.ID,
			Name:             line.Name,
			Variations:       line.Variations,
			Quantity:         lr.Quantity,
			RefundPercentage: lr.RefundPercentage,
			UnitRefundCents:  lr.UnitRefundCents,
			RefundCents:      lr.RefundCents,
		})
	}

	return resp
}

func (s *returnService) publishReturnEvent(ctx context.Context, eventName types.EventName, ret *returnrequest.ReturnRequest, currency string) {
	key := map[string]interface{}{
		"return_id": ret.ID,
		"version":   ret.Version,
	}
	s.publishEvent(ctx, eventName, key, types.ReturnEventPayload{
		ReturnID:         ret.ID,
		ReturnNumber:     ret.ReturnNumber,
		OrderID:          ret.OrderID,
		CustomerID:       ret.CustomerID,
		ReturnStatus:     ret.ReturnStatus,
		RefundCents:      ret.RefundCents,
		ShippingRefunded: ret.ShippingRefunded,
		Currency:         currency,
	})
}
