package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/samber/lo"
	"github.com/shopfront/shopfront/internal/api/dto"
	"github.com/shopfront/shopfront/internal/domain/order"
	"github.com/shopfront/shopfront/internal/domain/returnrequest"
	ierr "github.com/shopfront/shopfront/internal/errors"
	"github.com/shopfront/shopfront/internal/idempotency"
	"github.com/shopfront/shopfront/internal/testutil"
	"github.com/shopfront/shopfront/internal/types"
	"github.com/stretchr/testify/suite"
)

type ReturnServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  ReturnService
	testData struct {
		order *order.Order
		lineA *order.OrderLineItem
		lineB *order.OrderLineItem
	}
}

func TestReturnService(t *testing.T) {
	suite.Run(t, new(ReturnServiceSuite))
}

func (s *ReturnServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
	s.setupTestData()
}

func (s *ReturnServiceSuite) setupService() {
	s.service = NewReturnService(newTestServiceParams(&s.BaseServiceTestSuite))
}

func (s *ReturnServiceSuite) setupTestData() {
	orderService := NewOrderService(newTestServiceParams(&s.BaseServiceTestSuite))
	resp, err := orderService.CreateOrder(s.GetContext(), scenarioOrderRequest("cust_1"))
	s.Require().NoError(err)

	s.testData.order = resp.Order
	s.testData.lineA = resp.LineItems[0]
	s.testData.lineB = resp.LineItems[1]
	s.GetPublisher().Clear()
}

// createReturn requests qtyA of A, matched by name and variations, and qtyB
// of B, matched by line id. A zero quantity leaves the line out.
func (s *ReturnServiceSuite) createReturn(qtyA, qtyB int64) *returnrequest.ReturnRequest {
	req := &dto.CreateReturnRequest{
		OrderID:    s.testData.order.ID,
		CustomerID: "cust_1",
		Reason:     "does not fit",
	}
	if qtyA > 0 {
		req.LineItems = append(req.LineItems, dto.CreateReturnLineItemRequest{
			Name:       "A",
			Variations: types.Variations{"color": "blue", "size": "M"},
			Quantity:   qtyA,
		})
	}
	if qtyB > 0 {
		req.LineItems = append(req.LineItems, dto.CreateReturnLineItemRequest{
			OrderLineItemID: s.testData.lineB.ID,
			Quantity:        qtyB,
		})
	}

	resp, err := s.service.CreateReturn(s.GetContext(), req)
	s.Require().NoError(err)
	return resp.ReturnRequest
}

func lineFor(ret *returnrequest.ReturnRequest, orderLineID string) *returnrequest.ReturnLineItem {
	line, _ := lo.Find(ret.LineItems, func(l *returnrequest.ReturnLineItem) bool {
		return l.OrderLineItemID == orderLineID
	})
	return line
}

func acceptAll(ret *returnrequest.ReturnRequest, pct types.RefundPercentage) []dto.ReturnLineAdjudication {
	return lo.Map(ret.LineItems, func(l *returnrequest.ReturnLineItem, _ int) dto.ReturnLineAdjudication {
		return dto.ReturnLineAdjudication{
			LineItemID:       l.ID,
			Accepted:         true,
			RefundPercentage: pct,
		}
	})
}

func completeRequest(items []dto.ReturnLineAdjudication) *dto.CompleteReturnRequest {
	return &dto.CompleteReturnRequest{
		LineItems:       items,
		RefundMethod:    types.RefundMethodOriginalPayment,
		RefundReference: lo.ToPtr("PSP-123"),
	}
}

func (s *ReturnServiceSuite) TestCreateReturn() {
	ret := s.createReturn(2, 1)

	s.Equal(types.ReturnStatusRequested, ret.ReturnStatus)
	s.Contains(ret.ReturnNumber, types.SHORT_ID_PREFIX_RETURN)
	s.Equal("cust_1", ret.CustomerID)
	s.Require().Len(ret.LineItems, 2)

	lineA := lineFor(ret, s.testData.lineA.ID)
	s.Require().NotNil(lineA)
	s.Equal("A", lineA.Name)
	s.Equal(int64(3000), lineA.UnitPriceCents)
	s.Equal(int64(2), lineA.Quantity)
	s.False(lineA.Accepted)

	s.Len(s.GetPublisher().EventsNamed(types.EventReturnRequested), 1)
}

func (s *ReturnServiceSuite) TestCreateReturn_Validation() {
	tests := []struct {
		name      string
		req       *dto.CreateReturnRequest
		errorType error
	}{
		{
			name: "more than ordered",
			req: &dto.CreateReturnRequest{
				OrderID:    s.testData.order.ID,
				CustomerID: "cust_1",
				LineItems:  []dto.CreateReturnLineItemRequest{{OrderLineItemID: s.testData.lineA.ID, Quantity: 3}},
			},
			errorType: ierr.ErrValidation,
		},
		{
			name: "same line twice adds up",
			req: &dto.CreateReturnRequest{
				OrderID:    s.testData.order.ID,
				CustomerID: "cust_1",
				LineItems: []dto.CreateReturnLineItemRequest{
					{OrderLineItemID: s.testData.lineA.ID, Quantity: 2},
					{Name: "A", Variations: types.Variations{"size": "M", "color": "blue"}, Quantity: 1},
				},
			},
			errorType: ierr.ErrValidation,
		},
		{
			name: "variations must match",
			req: &dto.CreateReturnRequest{
				OrderID:    s.testData.order.ID,
				CustomerID: "cust_1",
				LineItems:  []dto.CreateReturnLineItemRequest{{Name: "A", Variations: types.Variations{"size": "L"}, Quantity: 1}},
			},
			errorType: ierr.ErrValidation,
		},
		{
			name: "unidentified item",
			req: &dto.CreateReturnRequest{
				OrderID:    s.testData.order.ID,
				CustomerID: "cust_1",
				LineItems:  []dto.CreateReturnLineItemRequest{{Quantity: 1}},
			},
			errorType: ierr.ErrValidation,
		},
		{
			name: "someone else's order",
			req: &dto.CreateReturnRequest{
				OrderID:    s.testData.order.ID,
				CustomerID: "cust_2",
				LineItems:  []dto.CreateReturnLineItemRequest{{OrderLineItemID: s.testData.lineA.ID, Quantity: 1}},
			},
			errorType: ierr.ErrPermissionDenied,
		},
		{
			name: "unknown order",
			req: &dto.CreateReturnRequest{
				OrderID:    "ord_missing",
				CustomerID: "cust_1",
				LineItems:  []dto.CreateReturnLineItemRequest{{OrderLineItemID: s.testData.lineA.ID, Quantity: 1}},
			},
			errorType: ierr.ErrNotFound,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.CreateReturn(s.GetContext(), tt.req)
			s.Error(err)
			s.True(ierr.Is(err, tt.errorType), "got %v", err)
		})
	}
}

func (s *ReturnServiceSuite) TestCreateReturn_AlreadyReturned() {
	ret := s.createReturn(2, 0)
	_, err := s.service.CompleteReturn(s.GetContext(), ret.ID, completeRequest(acceptAll(ret, types.RefundPercentageFull)))
	s.Require().NoError(err)

	_, err = s.service.CreateReturn(s.GetContext(), &dto.CreateReturnRequest{
		OrderID:    s.testData.order.ID,
		CustomerID: "cust_1",
		LineItems:  []dto.CreateReturnLineItemRequest{{OrderLineItemID: s.testData.lineA.ID, Quantity: 1}},
	})
	s.True(ierr.IsValidation(err))

	// B is still returnable
	s.createReturn(0, 1)
}

func (s *ReturnServiceSuite) TestCreateReturn_OpenReturnsReserveUnits() {
	open := s.createReturn(2, 0)

	_, err := s.service.CreateReturn(s.GetContext(), &dto.CreateReturnRequest{
		OrderID:    s.testData.order.ID,
		CustomerID: "cust_1",
		LineItems:  []dto.CreateReturnLineItemRequest{{OrderLineItemID: s.testData.lineA.ID, Quantity: 1}},
	})
	s.True(ierr.IsValidation(err))

	s.createReturn(0, 1)

	// a rejected return frees its units again
	_, err = s.service.RejectReturn(s.GetContext(), open.ID, &dto.RejectReturnRequest{})
	s.Require().NoError(err)
	s.createReturn(2, 0)
}

// duplicateReturn stores a second open return over the same order lines,
// as left behind by two requests racing past the reservation check
func (s *ReturnServiceSuite) duplicateReturn(from *returnrequest.ReturnRequest) *returnrequest.ReturnRequest {
	dup := *from
	dup.ID = from.ID + "_dup"
	dup.ReturnNumber = from.ReturnNumber + "-2"
	dup.LineItems = lo.Map(from.LineItems, func(l *returnrequest.ReturnLineItem, _ int) *returnrequest.ReturnLineItem {
		line := *l
		line.ID = l.ID + "_dup"
		line.ReturnID = dup.ID
		return &line
	})

	s.Require().NoError(s.GetStores().ReturnRepo.Create(s.GetContext(), &dup))
	return &dup
}

func (s *ReturnServiceSuite) TestCompleteReturn_CannotAcceptUnitsTwice() {
	first := s.createReturn(2, 0)
	second := s.duplicateReturn(first)

	resp, err := s.service.CompleteReturn(s.GetContext(), first.ID, completeRequest(acceptAll(first, types.RefundPercentageFull)))
	s.Require().NoError(err)
	s.Equal(int64(5400), resp.RefundCents)

	_, err = s.service.CompleteReturn(s.GetContext(), second.ID, completeRequest(acceptAll(second, types.RefundPercentageFull)))
	s.Error(err)
	s.True(ierr.IsValidation(err), "got %v", err)

	stored, err := s.GetStores().ReturnRepo.Get(s.GetContext(), second.ID)
	s.Require().NoError(err)
	s.Equal(types.ReturnStatusRequested, stored.ReturnStatus)
	s.Equal(int64(0), stored.RefundCents)
	s.False(stored.ShippingRefunded)
	s.Len(s.GetPublisher().EventsNamed(types.EventReturnCompleted), 1)

	// the duplicate can still be closed without a refund
	_, err = s.service.RejectReturn(s.GetContext(), second.ID, &dto.RejectReturnRequest{AdminNote: "already refunded"})
	s.NoError(err)
}

func (s *ReturnServiceSuite) TestCompleteReturn_PartialReturn() {
	ret := s.createReturn(2, 0)

	resp, err := s.service.CompleteReturn(s.GetContext(), ret.ID, completeRequest(acceptAll(ret, types.RefundPercentageFull)))
	s.Require().NoError(err)

	s.Equal(types.ReturnStatusCompleted, resp.ReturnStatus)
	s.Equal(int64(5400), resp.RefundCents)
	s.False(resp.ShippingRefunded)
	s.Equal(types.RefundMethodOriginalPayment, lo.FromPtr(resp.RefundMethod))
	s.Equal("PSP-123", lo.FromPtr(resp.RefundReference))
	s.NotNil(resp.CompletedAt)

	lineA := lineFor(resp.ReturnRequest, s.testData.lineA.ID)
	s.True(lineA.Accepted)
	s.Equal(int64(2700), lineA.UnitRefundCents)
	s.Equal(int64(5400), lineA.RefundCents)

	stored, err := s.GetStores().ReturnRepo.Get(s.GetContext(), ret.ID)
	s.Require().NoError(err)
	s.Equal(types.ReturnStatusCompleted, stored.ReturnStatus)
	s.Equal(int64(5400), stored.RefundCents)
	s.Equal(int64(1), stored.Version)

	o, err := s.GetStores().OrderRepo.Get(s.GetContext(), s.testData.order.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), o.ReturnsVersion)

	events := s.GetPublisher().EventsNamed(types.EventReturnCompleted)
	s.Require().Len(events, 1)
	var payload types.ReturnEventPayload
	s.NoError(json.Unmarshal(events[0].Payload, &payload))
	s.Equal(ret.ID, payload.ReturnID)
	s.Equal(int64(5400), payload.RefundCents)
	s.Equal("EUR", payload.Currency)

	// the id is derived from the completed state
	s.Equal(idempotency.NewGenerator().GenerateKey(idempotency.ScopeEvent, map[string]interface{}{
		"event_name": types.EventReturnCompleted,
		"return_id":  ret.ID,
		"version":    int64(1),
	}), events[0].ID)
}

func (s *ReturnServiceSuite) TestCompleteReturn_FullReturnRefundsShipping() {
	ret := s.createReturn(2, 1)

	resp, err := s.service.CompleteReturn(s.GetContext(), ret.ID, completeRequest(acceptAll(ret, types.RefundPercentageFull)))
	s.Require().NoError(err)

	// 2 x 2700 + 3600 + 495 shipping, exactly the order total
	s.Equal(int64(9495), resp.RefundCents)
	s.True(resp.ShippingRefunded)
	s.Equal(int64(3600), lineFor(resp.ReturnRequest, s.testData.lineB.ID).UnitRefundCents)
}

func (s *ReturnServiceSuite) TestCompleteReturn_ShippingOnLastReturn() {
	first := s.createReturn(2, 0)
	_, err := s.service.CompleteReturn(s.GetContext(), first.ID, completeRequest(acceptAll(first, types.RefundPercentageFull)))
	s.Require().NoError(err)

	second := s.createReturn(0, 1)
	resp, err := s.service.CompleteReturn(s.GetContext(), second.ID, completeRequest(acceptAll(second, types.RefundPercentageFull)))
	s.Require().NoError(err)

	s.True(resp.ShippingRefunded)
	s.Equal(int64(3600+495), resp.RefundCents)

	o, err := s.GetStores().OrderRepo.Get(s.GetContext(), s.testData.order.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), o.ReturnsVersion)
}

func (s *ReturnServiceSuite) TestCompleteReturn_RejectedReturnsDoNotCount() {
	rejected := s.createReturn(2, 0)
	_, err := s.service.RejectReturn(s.GetContext(), rejected.ID, &dto.RejectReturnRequest{AdminNote: "not received"})
	s.Require().NoError(err)

	ret := s.createReturn(0, 1)
	resp, err := s.service.CompleteReturn(s.GetContext(), ret.ID, completeRequest(acceptAll(ret, types.RefundPercentageFull)))
	s.Require().NoError(err)
	s.False(resp.ShippingRefunded)
	s.Equal(int64(3600), resp.RefundCents)
}

func (s *ReturnServiceSuite) TestCompleteReturn_DamagedTier() {
	ret := s.createReturn(2, 0)

	resp, err := s.service.CompleteReturn(s.GetContext(), ret.ID, completeRequest(acceptAll(ret, types.RefundPercentageDamaged)))
	s.Require().NoError(err)
	s.Equal(int64(3240), resp.RefundCents)
	s.Equal(types.RefundPercentageDamaged, lineFor(resp.ReturnRequest, s.testData.lineA.ID).RefundPercentage)
}

func (s *ReturnServiceSuite) TestCompleteReturn_NotReturnedItem() {
	ret := s.createReturn(2, 1)
	items := acceptAll(ret, types.RefundPercentageFull)
	for i := range items {
		if items[i].LineItemID == lineFor(ret, s.testData.lineB.ID).ID {
			items[i].NotReturned = true
		}
	}

	resp, err := s.service.CompleteReturn(s.GetContext(), ret.ID, completeRequest(items))
	s.Require().NoError(err)

	s.Equal(int64(5400), resp.RefundCents)
	s.False(resp.ShippingRefunded)

	lineB := lineFor(resp.ReturnRequest, s.testData.lineB.ID)
	s.False(lineB.Accepted)
	s.True(lineB.NotReturned)
	s.Equal(types.RefundPercentageNone, lineB.RefundPercentage)
	s.Equal(int64(0), lineB.RefundCents)
}

func (s *ReturnServiceSuite) TestCompleteReturn_UnmentionedLinesAreNotAccepted() {
	ret := s.createReturn(2, 1)
	lineA := lineFor(ret, s.testData.lineA.ID)

	resp, err := s.service.CompleteReturn(s.GetContext(), ret.ID, completeRequest([]dto.ReturnLineAdjudication{
		{LineItemID: lineA.ID, Accepted: true, RefundPercentage: types.RefundPercentageFull},
	}))
	s.Require().NoError(err)
	s.Equal(int64(5400), resp.RefundCents)
	s.False(lineFor(resp.ReturnRequest, s.testData.lineB.ID).Accepted)
}

func (s *ReturnServiceSuite) TestCompleteReturn_Rejections() {
	ret := s.createReturn(2, 0)
	lineA := lineFor(ret, s.testData.lineA.ID)

	tests := []struct {
		name      string
		items     []dto.ReturnLineAdjudication
		errorType error
	}{
		{
			name:      "no items selected",
			items:     []dto.ReturnLineAdjudication{{LineItemID: lineA.ID, Accepted: false}},
			errorType: ierr.ErrValidation,
		},
		{
			name:      "only a not returned item",
			items:     []dto.ReturnLineAdjudication{{LineItemID: lineA.ID, Accepted: true, NotReturned: true}},
			errorType: ierr.ErrValidation,
		},
		{
			name:      "refund percentage outside the tiers",
			items:     []dto.ReturnLineAdjudication{{LineItemID: lineA.ID, Accepted: true, RefundPercentage: 50}},
			errorType: ierr.ErrValidation,
		},
		{
			name:      "unknown line",
			items:     []dto.ReturnLineAdjudication{{LineItemID: "ret_line_missing", Accepted: true, RefundPercentage: 100}},
			errorType: ierr.ErrValidation,
		},
		{
			name: "line adjudicated twice",
			items: []dto.ReturnLineAdjudication{
				{LineItemID: lineA.ID, Accepted: true, RefundPercentage: 100},
				{LineItemID: lineA.ID, Accepted: true, RefundPercentage: 60},
			},
			errorType: ierr.ErrValidation,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.CompleteReturn(s.GetContext(), ret.ID, completeRequest(tt.items))
			s.Error(err)
			s.True(ierr.Is(err, tt.errorType), "got %v", err)

			stored, err := s.GetStores().ReturnRepo.Get(s.GetContext(), ret.ID)
			s.Require().NoError(err)
			s.Equal(types.ReturnStatusRequested, stored.ReturnStatus)
		})
	}

	o, err := s.GetStores().OrderRepo.Get(s.GetContext(), s.testData.order.ID)
	s.Require().NoError(err)
	s.Equal(int64(0), o.ReturnsVersion)
	s.Empty(s.GetPublisher().EventsNamed(types.EventReturnCompleted))
}

func (s *ReturnServiceSuite) TestCompleteReturn_AlreadyClosed() {
	ret := s.createReturn(2, 0)
	req := completeRequest(acceptAll(ret, types.RefundPercentageFull))

	_, err := s.service.CompleteReturn(s.GetContext(), ret.ID, req)
	s.Require().NoError(err)

	_, err = s.service.CompleteReturn(s.GetContext(), ret.ID, req)
	s.True(ierr.IsInvalidOperation(err))

	_, err = s.service.RejectReturn(s.GetContext(), ret.ID, &dto.RejectReturnRequest{})
	s.True(ierr.IsInvalidOperation(err))
}

// conflictingOrderStore loses the returns version race a fixed number of times
type conflictingOrderStore struct {
	order.Repository
	conflicts int
	calls     int
}

func (s *conflictingOrderStore) IncrementReturnsVersion(ctx context.Context, id string, expected int64) error {
	s.calls++
	if s.conflicts > 0 {
		s.conflicts--
		return ierr.NewError("order returns version changed").Mark(ierr.ErrVersionConflict)
	}
	return s.Repository.IncrementReturnsVersion(ctx, id, expected)
}

func (s *ReturnServiceSuite) withConflicts(conflicts int) *conflictingOrderStore {
	store := &conflictingOrderStore{
		Repository: s.GetStores().OrderRepo,
		conflicts:  conflicts,
	}
	s.SetStores(testutil.Stores{
		OrderRepo:  store,
		ReturnRepo: s.GetStores().ReturnRepo,
	})
	s.setupService()
	return store
}

func (s *ReturnServiceSuite) TestCompleteReturn_RetriesOnVersionConflict() {
	ret := s.createReturn(2, 0)
	store := s.withConflicts(2)

	resp, err := s.service.CompleteReturn(s.GetContext(), ret.ID, completeRequest(acceptAll(ret, types.RefundPercentageFull)))
	s.Require().NoError(err)
	s.Equal(3, store.calls)
	s.Equal(int64(5400), resp.RefundCents)
	s.Len(s.GetPublisher().EventsNamed(types.EventReturnCompleted), 1)
}

func (s *ReturnServiceSuite) TestCompleteReturn_GivesUpAfterMaxRetries() {
	ret := s.createReturn(2, 0)
	store := s.withConflicts(100)

	_, err := s.service.CompleteReturn(s.GetContext(), ret.ID, completeRequest(acceptAll(ret, types.RefundPercentageFull)))
	s.True(ierr.IsVersionConflict(err))
	s.Equal(int(s.GetConfig().Returns.CompletionMaxRetries)+1, store.calls)

	stored, err := s.GetStores().ReturnRepo.Get(s.GetContext(), ret.ID)
	s.Require().NoError(err)
	s.Equal(types.ReturnStatusRequested, stored.ReturnStatus)
}

func (s *ReturnServiceSuite) TestPreviewRefund() {
	ret := s.createReturn(2, 1)

	preview, err := s.service.PreviewRefund(s.GetContext(), ret.ID, &dto.PreviewRefundRequest{
		LineItems: acceptAll(ret, types.RefundPercentageFull),
	})
	s.Require().NoError(err)

	s.Equal(int64(9000), preview.ItemsRefundCents)
	s.Equal(int64(495), preview.ShippingRefundCents)
	s.Equal(int64(9495), preview.RefundCents)
	s.True(preview.ShippingRefunded)
	s.False(preview.Capped)
	s.Equal(int64(3), preview.SelectedQuantity)
	s.Equal(int64(3), preview.TotalOrderQuantity)
	s.Len(preview.LineItems, 2)

	// nothing persisted
	stored, err := s.GetStores().ReturnRepo.Get(s.GetContext(), ret.ID)
	s.Require().NoError(err)
	s.Equal(types.ReturnStatusRequested, stored.ReturnStatus)
	s.Equal(int64(0), stored.RefundCents)
	s.Equal(int64(0), stored.Version)
}

func (s *ReturnServiceSuite) TestPreviewRefund_CountsPriorReturns() {
	first := s.createReturn(1, 0)
	_, err := s.service.CompleteReturn(s.GetContext(), first.ID, completeRequest(acceptAll(first, types.RefundPercentageFull)))
	s.Require().NoError(err)

	second := s.createReturn(1, 1)
	preview, err := s.service.PreviewRefund(s.GetContext(), second.ID, &dto.PreviewRefundRequest{
		LineItems: acceptAll(second, types.RefundPercentageFull),
	})
	s.Require().NoError(err)
	s.Equal(int64(1), preview.PriorReturnedQuantity)
	s.True(preview.ShippingRefunded)
	s.Equal(int64(2700+3600+495), preview.RefundCents)
}

func (s *ReturnServiceSuite) TestRejectReturn() {
	ret := s.createReturn(2, 0)

	resp, err := s.service.RejectReturn(s.GetContext(), ret.ID, &dto.RejectReturnRequest{AdminNote: "item was worn"})
	s.Require().NoError(err)
	s.Equal(types.ReturnStatusRejected, resp.ReturnStatus)
	s.Equal("item was worn", lo.FromPtr(resp.AdminNote))
	s.Equal(int64(0), resp.RefundCents)

	s.Len(s.GetPublisher().EventsNamed(types.EventReturnRejected), 1)

	_, err = s.service.CompleteReturn(s.GetContext(), ret.ID, completeRequest(acceptAll(ret, types.RefundPercentageFull)))
	s.True(ierr.IsInvalidOperation(err))
}

func (s *ReturnServiceSuite) TestListReturns() {
	s.createReturn(1, 0)
	s.createReturn(1, 1)

	filter := types.NewReturnFilter()
	filter.OrderID = s.testData.order.ID
	resp, err := s.service.ListReturns(s.GetContext(), filter)
	s.NoError(err)
	s.Len(resp.Items, 2)
	s.Equal(2, resp.Pagination.Total)

	filter.ReturnStatus = []types.ReturnStatus{types.ReturnStatusCompleted}
	resp, err = s.service.ListReturns(s.GetContext(), filter)
	s.NoError(err)
	s.Empty(resp.Items)
}
