package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{
			"auth error",
			NewAuthError("https://api.mercari.jp/items/get"),
			KindAuth,
		},
		{
			"transport error",
			NewTransportError(500, "https://api.mercari.jp/items/get", fmt.Errorf("boom")),
			KindTransport,
		},
		{
			"transport error without status",
			NewTransportError(0, "https://api.mercari.jp/items/get", fmt.Errorf("connection refused")),
			KindTransport,
		},
		{
			"validation with mixed kinds",
			NewValidationError(
				FieldError{Path: "price", Kind: FieldTypeMismatch},
				FieldError{Path: "name", Kind: FieldMissingRequired},
			),
			KindValidation,
		},
		{
			"validation with only absences",
			NewValidationError(
				FieldError{Path: "price", Kind: FieldMissingRequired},
				FieldError{Path: "status", Kind: FieldMissingRequired},
			),
			KindMissingField,
		},
		{
			"orchestration error",
			NewOrchestrationError("refined", fmt.Errorf("stream died")),
			KindOrchestration,
		},
		{
			"plain error falls through",
			errors.New("something unexpected"),
			KindOrchestration,
		},
		{
			"wrapped transport error",
			fmt.Errorf("fetch item: %w", NewTransportError(502, "https://x", fmt.Errorf("bad gateway"))),
			KindTransport,
		},
		{
			"wrapped auth error",
			fmt.Errorf("fetch item: %w", NewAuthError("https://x")),
			KindAuth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.err))
		})
	}
}

func TestValidationError_FieldPaths(t *testing.T) {
	err := NewValidationError(
		FieldError{Path: "price", Kind: FieldMissingRequired},
		FieldError{Path: "seller.name", Kind: FieldNested},
	)
	assert.Equal(t, []string{"price", "seller.name"}, err.FieldPaths())
}

func TestValidationError_MissingOnly(t *testing.T) {
	empty := NewValidationError()
	assert.False(t, empty.MissingOnly(), "no entries means nothing is missing")

	nested := NewValidationError(FieldError{Path: "seller.name", Kind: FieldNested})
	assert.False(t, nested.MissingOnly())
}

func TestValidationError_Message(t *testing.T) {
	err := NewValidationError(
		FieldError{Path: "price", Kind: FieldMissingRequired},
		FieldError{Path: "status", Kind: FieldTypeMismatch},
	)
	msg := err.Error()
	assert.Contains(t, msg, "2 field error(s)")
	assert.Contains(t, msg, "price (missing-required)")
	assert.Contains(t, msg, "status (type-mismatch)")
}

func TestAsValidation(t *testing.T) {
	ve, ok := AsValidation(fmt.Errorf("wrapped: %w", NewValidationError(
		FieldError{Path: "id", Kind: FieldMissingRequired},
	)))
	assert.True(t, ok)
	assert.Equal(t, []string{"id"}, ve.FieldPaths())

	_, ok = AsValidation(errors.New("nope"))
	assert.False(t, ok)
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	assert.ErrorIs(t, NewTransportError(500, "https://x", cause), cause)
	assert.ErrorIs(t, NewOrchestrationError("discovery", cause), cause)
}
