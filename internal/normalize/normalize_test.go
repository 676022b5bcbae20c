package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCapacity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1,500", 1500, true},
		{"10k", 10000, true},
		{"10K units", 10000, true},
		{"2.5m", 2500000, true},
		{"50,000 units per month", 50000, true},
		{"about 300", 300, true},
		{"1 500", 1500, true},
		{"2.5 M pieces", 2500000, true},
		{"10 k units", 10000, true},
		{"50 members", 50, true},
		{"3 months", 3, true},
		{"500 metric tons", 500, true},
		{"40 machines", 40, true},
		{"12 kilograms", 12, true},
		{"50km", 50, true},
		{"lots", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := NormalizeCapacity(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}
}

func TestExtractNumbers(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []float64{1500, 3, 12.5}, ExtractNumbers("1,500 units over 3 shifts at 12.5%"))
	assert.Equal(t, []float64{1234567}, ExtractNumbers("1,234,567"))
	assert.Empty(t, ExtractNumbers("no digits here"))
}

func TestNormalizeText(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "hello big world", NormalizeText("  Hello \t BIG\nworld "))
	assert.Equal(t, "", NormalizeText("   "))
}

func TestCapitalize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Quality Control", Capitalize("quality   CONTROL"))
	assert.Equal(t, "Welding", Capitalize("welding"))
	assert.Equal(t, "", Capitalize(""))
}

func TestParseDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3 days", 72, true},
		{"2 weeks", 336, true},
		{"1 month", 720, true},
		{"6 hours", 6, true},
		{"48", 48, true},
		{"90 minutes", 1.5, true},
		{"soon", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseDuration(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}
}

func TestParsePercentage(t *testing.T) {
	t.Parallel()

	got, ok := ParsePercentage("95%")
	require.True(t, ok)
	assert.InDelta(t, 0.95, got, 1e-9)

	got, ok = ParsePercentage("0.8")
	require.True(t, ok)
	assert.InDelta(t, 0.8, got, 1e-9)

	got, ok = ParsePercentage("1")
	require.True(t, ok)
	assert.InDelta(t, 1.0, got, 1e-9)

	_, ok = ParsePercentage("n/a")
	assert.False(t, ok)

	_, ok = ParsePercentage("-5%")
	assert.False(t, ok)
	_, ok = ParsePercentage("-0.5")
	assert.False(t, ok)

	got, ok = ParsePercentage("0")
	require.True(t, ok)
	assert.Zero(t, got)
}

func TestLookupCity(t *testing.T) {
	t.Parallel()

	info, ok := LookupCity("istanbul")
	require.True(t, ok)
	assert.Equal(t, "Turkey", info.Country)
	assert.Equal(t, "Europe/Istanbul", info.Timezone)

	info, ok = LookupCity("  New   York ")
	require.True(t, ok)
	assert.Equal(t, "United States", info.Country)

	_, ok = LookupCity("Atlantis")
	assert.False(t, ok)
}

func TestHours(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{72.0, 72, true},
		{"3 days", 72, true},
		{"3 months", 2160, true},
		{"36", 36, true},
		{map[string]any{"value": 2.0, "unit": "weeks"}, 336, true},
		{map[string]any{"value": 24.0}, 24, true},
		{map[string]any{"unit": "days"}, 0, false},
		{"soon", 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		got, ok := Hours(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, "%v", tt.in)
	}
}
