package types

import (
	"github.com/samber/lo"
	ierr "github.com/shopfront/shopfront/internal/errors"
)

// ReturnStatus is the adjudication state of a return request.
// requested -> completed | rejected
type ReturnStatus string

const (
	ReturnStatusRequested ReturnStatus = "requested"
	ReturnStatusCompleted ReturnStatus = "completed"
	ReturnStatusRejected  ReturnStatus = "rejected"
)

func (s ReturnStatus) String() string {
	return string(s)
}

func (s ReturnStatus) Validate() error {
	allowed := []ReturnStatus{
		ReturnStatusRequested,
		ReturnStatusCompleted,
		ReturnStatusRejected,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid return status").
			WithHintf("Return status must be one of %v", allowed).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsFinal reports whether no further adjudication is possible
func (s ReturnStatus) IsFinal() bool {
	return s == ReturnStatusCompleted || s == ReturnStatusRejected
}

// RefundPercentage is the per-item adjudication tier.
// Only the three sanctioned tiers exist; anything else is rejected, never clamped.
type RefundPercentage int

const (
	RefundPercentageNone    RefundPercentage = 0
	RefundPercentageDamaged RefundPercentage = 60
	RefundPercentageFull    RefundPercentage = 100
)

// AllowedRefundPercentages lists the sanctioned tiers
var AllowedRefundPercentages = []RefundPercentage{
	RefundPercentageNone,
	RefundPercentageDamaged,
	RefundPercentageFull,
}

func (p RefundPercentage) Int64() int64 {
	return int64(p)
}

func (p RefundPercentage) IsValid() bool {
	return lo.Contains(AllowedRefundPercentages, p)
}

func (p RefundPercentage) Validate() error {
	if !p.IsValid() {
		return ierr.NewError("invalid refund percentage").
			WithHintf("Refund percentage %d is not allowed. Use one of %v", int(p), AllowedRefundPercentages).
			WithReportableDetails(map[string]any{
				"refund_percentage": int(p),
				"allowed":           AllowedRefundPercentages,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// RefundMethod is how the operator pays the refund out
type RefundMethod string

const (
	RefundMethodOriginalPayment RefundMethod = "original_payment"
	RefundMethodBankTransfer    RefundMethod = "bank_transfer"
	RefundMethodStoreCredit     RefundMethod = "store_credit"
	RefundMethodOther           RefundMethod = "other"
)

func (m RefundMethod) Validate() error {
	allowed := []RefundMethod{
		RefundMethodOriginalPayment,
		RefundMethodBankTransfer,
		RefundMethodStoreCredit,
		RefundMethodOther,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid refund method").
			WithHintf("Refund method must be one of %v", allowed).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ReturnFilter filters return requests in list queries
type ReturnFilter struct {
	*QueryFilter
	*TimeRangeFilter

	ReturnIDs    []string       `json:"return_ids,omitempty" form:"return_ids"`
	OrderID      string         `json:"order_id,omitempty" form:"order_id"`
	ReturnStatus []ReturnStatus `json:"return_status,omitempty" form:"return_status"`
}

func NewReturnFilter() *ReturnFilter {
	return &ReturnFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func NewNoLimitReturnFilter() *ReturnFilter {
	return &ReturnFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f *ReturnFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	if f.TimeRangeFilter != nil {
		if err := f.TimeRangeFilter.Validate(); err != nil {
			return err
		}
	}
	for _, s := range f.ReturnStatus {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f *ReturnFilter) GetLimit() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

func (f *ReturnFilter) GetOffset() int {
	if f.QueryFilter == nil {
		return 0
	}
	return f.QueryFilter.GetOffset()
}

func (f *ReturnFilter) GetSort() string {
	if f.QueryFilter == nil {
		return FILTER_DEFAULT_SORT
	}
	return f.QueryFilter.GetSort()
}

func (f *ReturnFilter) GetOrder() string {
	if f.QueryFilter == nil {
		return FILTER_DEFAULT_ORDER
	}
	return f.QueryFilter.GetOrder()
}

func (f *ReturnFilter) GetStatus() string {
	if f.QueryFilter == nil {
		return string(StatusPublished)
	}
	return f.QueryFilter.GetStatus()
}

func (f *ReturnFilter) IsUnlimited() bool {
	if f.QueryFilter == nil {
		return false
	}
	return f.QueryFilter.IsUnlimited()
}
