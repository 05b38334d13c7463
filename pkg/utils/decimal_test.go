package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimalInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"1", "1"},
		{"1.", "1"},
		{".5", "0.5"},
		{"0.1", "0.1"},
		{"12.345", "12.345"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDecimalInput(tt.input)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)), "got %s", got)
		})
	}
}

func TestParseDecimalInput_Rejects(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "abc", "1.2.3"} {
		_, err := ParseDecimalInput(input)
		assert.Error(t, err, input)
	}
}

func TestDecimalToString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0.005449", DecimalToString(decimal.RequireFromString("0.0054493861"), 6))
}
