// Package numtext handles numbers typed into formatted text fields: digits with
// comma thousands separators and at most one decimal point.
package numtext

import (
	"errors"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotANumber is returned when text does not parse to a finite number
var ErrNotANumber = errors.New("not a number")

const separator = ","

var acceptPattern = regexp.MustCompile(`^\d*\.?\d*$`)

// Strip removes thousands separators
func Strip(text string) string {
	return strings.ReplaceAll(text, separator, "")
}

// Accept reports whether text is a valid (possibly partial) entry once separators are removed
func Accept(text string) bool {
	return acceptPattern.MatchString(Strip(text))
}

// Format re-renders an accepted entry with thousands separators. A trailing
// decimal point and partial decimals are kept as typed, so "12345." becomes
// "12,345." rather than collapsing to "12,345".
func Format(text string) string {
	raw := Strip(text)

	sign := ""
	if strings.HasPrefix(raw, "-") {
		sign, raw = "-", raw[1:]
	}

	intPart, fracPart, hasPoint := strings.Cut(raw, ".")
	out := sign + group(intPart)
	if hasPoint {
		out += "." + fracPart
	}
	return out
}

// Apply is the keystroke contract of a formatted input: input that fails Accept
// leaves the previous value in place, anything else is returned formatted.
func Apply(previous, input string) string {
	if !Accept(input) {
		return previous
	}
	return Format(input)
}

// Parse strips separators and parses the result
func Parse(text string) (decimal.Decimal, error) {
	raw := Strip(strings.TrimSpace(text))
	if raw == "" || raw == "." || !acceptPattern.MatchString(raw) {
		return decimal.Zero, ErrNotANumber
	}

	raw = strings.TrimSuffix(raw, ".")
	if strings.HasPrefix(raw, ".") {
		raw = "0" + raw
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrNotANumber
	}
	return d, nil
}

// ParseFloat is Parse for callers working in float64. Values beyond the
// float64 range are rejected.
func ParseFloat(text string) (float64, error) {
	d, err := Parse(text)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, ErrNotANumber
	}
	return f, nil
}

// FormatDecimal renders a number with thousands separators
func FormatDecimal(d decimal.Decimal) string {
	return Format(d.String())
}

// FormatFloat renders a float with thousands separators using its shortest exact form
func FormatFloat(f float64) string {
	return FormatDecimal(decimal.NewFromFloat(f))
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(separator)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
