package numtext

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"short", "123", "123"},
		{"thousands", "1234", "1,234"},
		{"millions", "1234567", "1,234,567"},
		{"already formatted", "1,234,567", "1,234,567"},
		{"misplaced separators", "12,34,567", "1,234,567"},
		{"trailing point kept", "12345.", "12,345."},
		{"partial decimals kept", "12345.6", "12,345.6"},
		{"decimals not grouped", "1234.56789", "1,234.56789"},
		{"leading point", ".5", ".5"},
		{"negative", "-1234.5", "-1,234.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.input))
		})
	}
}

func TestAccept(t *testing.T) {
	assert.True(t, Accept(""))
	assert.True(t, Accept("1,234"))
	assert.True(t, Accept("1234."))
	assert.True(t, Accept("0.25"))
	assert.False(t, Accept("12a"))
	assert.False(t, Accept("1.2.3"))
	assert.False(t, Accept("-5"))
	assert.False(t, Accept("1 000"))
}

func TestApply_KeystrokeSequence(t *testing.T) {
	value := ""
	for _, typed := range []string{"1", "12", "123", "1234", "12345", "12345.", "12345.6", "12345.6x", "12345.67"} {
		value = Apply(value, typed)
	}
	assert.Equal(t, "12,345.67", value)

	t.Run("rejected input keeps last valid value", func(t *testing.T) {
		assert.Equal(t, "1,234", Apply("1,234", "1,234a"))
		assert.Equal(t, "1,234.5", Apply("1,234.5", "1,234.5."))
	})

	t.Run("typing into a formatted value", func(t *testing.T) {
		assert.Equal(t, "12,345.", Apply("12,345", "12,345."))
	})
}

func TestParse(t *testing.T) {
	t.Run("strips separators", func(t *testing.T) {
		d, err := Parse("1,234,567.89")
		require.NoError(t, err)
		assert.True(t, d.Equal(decimal.RequireFromString("1234567.89")))
	})

	t.Run("trailing point", func(t *testing.T) {
		d, err := Parse("50,500.")
		require.NoError(t, err)
		assert.True(t, d.Equal(decimal.NewFromInt(50500)))
	})

	t.Run("leading point", func(t *testing.T) {
		d, err := Parse(".5")
		require.NoError(t, err)
		assert.True(t, d.Equal(decimal.RequireFromString("0.5")))
	})

	t.Run("surrounding whitespace", func(t *testing.T) {
		d, err := Parse("  80,000 ")
		require.NoError(t, err)
		assert.True(t, d.Equal(decimal.NewFromInt(80000)))
	})

	for _, bad := range []string{"", "   ", ".", "abc", "1.2.3", "12e3", "-5"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := Parse(bad)
			assert.ErrorIs(t, err, ErrNotANumber)
		})
	}
}

func TestParseFloat(t *testing.T) {
	f, err := ParseFloat("1,234,567.89")
	require.NoError(t, err)
	assert.Equal(t, 1234567.89, f)

	_, err = ParseFloat("x")
	assert.ErrorIs(t, err, ErrNotANumber)

	// accepted as text but beyond float64
	huge := strings.Repeat("9", 400)
	require.True(t, Accept(huge))
	_, err = ParseFloat(huge)
	assert.ErrorIs(t, err, ErrNotANumber)
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatFloat(1234567))
	assert.Equal(t, "-100", FormatFloat(-100))
	assert.Equal(t, "50,500.25", FormatFloat(50500.25))
}
