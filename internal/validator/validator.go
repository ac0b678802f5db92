package validator

import (
	"github.com/go-playground/validator/v10"
	ierr "github.com/shopfront/shopfront/internal/errors"
	"github.com/shopfront/shopfront/internal/types"
)

var validate *validator.Validate

var customValidations = map[string]validator.Func{
	"refund_percentage": validateRefundPercentage,
}

// NewValidator builds the package validator and registers the custom tags
func NewValidator() (*validator.Validate, error) {
	v, err := newValidator(customValidations)
	if err != nil {
		return nil, err
	}

	validate = v
	return validate, nil
}

func newValidator(validations map[string]validator.Func) (*validator.Validate, error) {
	v := validator.New()
	for tag, fn := range validations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, ierr.WithError(err).
				WithHintf("Failed to register validation %q", tag).
				Mark(ierr.ErrSystem)
		}
	}
	return v, nil
}

func GetValidator() *validator.Validate {
	return validate
}

// validateRefundPercentage accepts only the sanctioned refund tiers
func validateRefundPercentage(fl validator.FieldLevel) bool {
	return types.RefundPercentage(fl.Field().Int()).IsValid()
}

func ValidateRequest(req interface{}) error {
	if validate == nil {
		return ierr.NewError("validator not initialized").
			WithHint("Validator must be initialized before using it").
			Mark(ierr.ErrSystem)
	}

	if err := validate.Struct(req); err != nil {
		details := make(map[string]any)
		var validateErrs validator.ValidationErrors
		if ierr.As(err, &validateErrs) {
			for _, err := range validateErrs {
				details[err.Field()] = err.Error()
			}
		}
		return ierr.WithError(err).
			WithHint("Request validation failed").
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}
	return nil
}
