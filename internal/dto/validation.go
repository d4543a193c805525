package dto

import (
	"reflect"

	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterValidators teaches v how to validate decimal amounts. Decimal
// fields are validated through their string form, so the "money" tag sees
// the same text ParseAmount would.
func RegisterValidators(v *validator.Validate) error {
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	return v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseAmount(fl.Field().String())
		return err == nil
	})
}
