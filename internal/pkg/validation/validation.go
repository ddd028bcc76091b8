package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"contract-exchange/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates an Input struct against its validate tags and wraps the
// first failure as a domain.ErrValidation.
func Struct(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		return fmt.Errorf("%w: field %s failed on %s", domain.ErrValidation, errs[0].Field(), errs[0].Tag())
	}
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}
