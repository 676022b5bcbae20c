package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youcodecowboy/disco-grid-sub000/internal/registry"
)

func TestValidateInput(t *testing.T) {
	assert.NoError(t, ValidateInput("We make shoes", 10))
	assert.True(t, errors.Is(ValidateInput("   hi   ", 3), ErrTextTooShort))
	assert.True(t, errors.Is(ValidateInput("", 0), ErrTextTooShort))
	assert.NoError(t, ValidateInput("çok", 3))
}

func TestRequest_Validate(t *testing.T) {
	r, err := Request{Text: "We make shoes"}.Validate(nil, 3)
	require.NoError(t, err)
	assert.Equal(t, "general", r.Context)
	assert.Equal(t, "balanced", r.Strategy)

	r, err = Request{Text: "We make shoes", Context: "operations", Strategy: "enhanced"}.Validate(registry.Default(), 3)
	require.NoError(t, err)
	assert.Equal(t, "few_shot", r.Strategy)

	_, err = Request{Text: "We make shoes", Context: "nope"}.Validate(nil, 3)
	assert.ErrorContains(t, err, "unknown context")

	_, err = Request{Text: "We make shoes", Strategy: "verbose"}.Validate(nil, 3)
	assert.ErrorContains(t, err, "unknown strategy")

	_, err = Request{Text: "x", Context: "operations"}.Validate(nil, 3)
	assert.True(t, errors.Is(err, ErrTextTooShort))
}
