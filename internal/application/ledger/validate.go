package ledger

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// decimal.Decimal llega a las validaciones como texto para no perder precisión.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("dgt0", decimalCheck(func(d decimal.Decimal, _ string) bool {
		return d.IsPositive()
	}))
	_ = v.RegisterValidation("dgte0", decimalCheck(func(d decimal.Decimal, _ string) bool {
		return !d.IsNegative()
	}))
	// dscale=N: como máximo N decimales (cantidades NUMERIC(14,3), precios NUMERIC(14,2)).
	_ = v.RegisterValidation("dscale", decimalCheck(func(d decimal.Decimal, param string) bool {
		n, err := strconv.Atoi(param)
		if err != nil {
			return false
		}
		return d.Exponent() >= -int32(n)
	}))
	return v
}

func decimalCheck(fn func(d decimal.Decimal, param string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		return fn(d, fl.Param())
	}
}

// validateInput valida las etiquetas `validate` de in y traduce el resultado a ErrInvalidInput.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return fmt.Errorf("%w: campos inválidos: %s", domain.ErrInvalidInput, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
}
