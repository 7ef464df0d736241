package ledger

import (
	"testing"

	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateInput_DecimalsCompareWithoutFloat(t *testing.T) {
	type positive struct {
		Amount decimal.Decimal `validate:"dgt0"`
	}
	tiny := decimal.RequireFromString("1e-400")
	assert.True(t, tiny.IsPositive())
	assert.NoError(t, validateInput(positive{Amount: tiny}))
	assert.ErrorIs(t, validateInput(positive{Amount: decimal.Zero}), domain.ErrInvalidInput)
	assert.ErrorIs(t, validateInput(positive{}), domain.ErrInvalidInput)

	type nonNegative struct {
		Amount *decimal.Decimal `validate:"omitempty,dgte0"`
	}
	zero := decimal.Zero
	neg := decimal.RequireFromString("-1e-400")
	assert.NoError(t, validateInput(nonNegative{}))
	assert.NoError(t, validateInput(nonNegative{Amount: &zero}))
	assert.ErrorIs(t, validateInput(nonNegative{Amount: &neg}), domain.ErrInvalidInput)
}

func TestValidateInput_Scale(t *testing.T) {
	type scaled struct {
		Amount decimal.Decimal `validate:"dscale=2"`
	}
	for _, ok := range []string{"10", "10.5", "10.25", "10.2500", "-3.10"} {
		assert.NoError(t, validateInput(scaled{Amount: decimal.RequireFromString(ok)}), ok)
	}
	for _, bad := range []string{"10.251", "0.001", "1e-3"} {
		assert.ErrorIs(t, validateInput(scaled{Amount: decimal.RequireFromString(bad)}), domain.ErrInvalidInput, bad)
	}
}
