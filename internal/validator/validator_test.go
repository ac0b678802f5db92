package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	ierr "github.com/shopfront/shopfront/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adjudication struct {
	Quantity         int `validate:"gte=0"`
	RefundPercentage int `validate:"refund_percentage"`
}

func TestValidateRequest(t *testing.T) {
	_, err := NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     adjudication
		wantErr bool
	}{
		{name: "full refund", req: adjudication{Quantity: 1, RefundPercentage: 100}},
		{name: "damaged goods", req: adjudication{Quantity: 1, RefundPercentage: 60}},
		{name: "no refund", req: adjudication{Quantity: 1, RefundPercentage: 0}},
		{name: "arbitrary percentage", req: adjudication{Quantity: 1, RefundPercentage: 50}, wantErr: true},
		{name: "above full", req: adjudication{Quantity: 1, RefundPercentage: 120}, wantErr: true},
		{name: "negative quantity", req: adjudication{Quantity: -1, RefundPercentage: 100}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.req)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, ierr.IsValidation(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewValidator_RegistrationFailure(t *testing.T) {
	_, err := newValidator(map[string]validator.Func{
		"": validateRefundPercentage,
	})
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.ErrSystem))
}
