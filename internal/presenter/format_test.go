package presenter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", FormatCount(0))
	assert.Equal(t, "950", FormatCount(950))
	assert.Equal(t, "1,250", FormatCount(1250))
	assert.Equal(t, "1,234,567", FormatCount(1234567))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "0", FormatNumber(math.NaN()))
	assert.Equal(t, "5", FormatNumber(5))
	assert.Equal(t, "51.2", FormatNumber(51.2))
	assert.Equal(t, "24%", FormatPercent(24))
}

func TestGrowthLabel(t *testing.T) {
	tests := []struct {
		name string
		in   *float64
		want string
	}{
		{"positive", ptr(5.0), "+5%"},
		{"negative", ptr(-3.0), "-3%"},
		{"zero", ptr(0.0), EmDash},
		{"absent", nil, EmDash},
		{"nan", ptr(math.NaN()), EmDash},
		{"fractional", ptr(12.5), "+12.5%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GrowthLabel(tt.in))
		})
	}
}

func TestGrowthTrend(t *testing.T) {
	text, up := GrowthTrend(ptr(5.0))
	assert.Equal(t, "+5% vs last month", text)
	assert.True(t, up)

	text, up = GrowthTrend(ptr(-3.0))
	assert.Equal(t, "-3% vs last month", text)
	assert.False(t, up)

	text, up = GrowthTrend(nil)
	assert.Equal(t, "No prior month data", text)
	assert.True(t, up)
}

func TestSignedPercent(t *testing.T) {
	assert.Equal(t, "+0%", SignedPercent(0))
	assert.Equal(t, "+5%", SignedPercent(5))
	assert.Equal(t, "-3%", SignedPercent(-3))
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "AL", Initials("Ada Lovelace"))
	assert.Equal(t, "GB", Initials("grace brewster hopper"))
	assert.Equal(t, "L", Initials("Linus"))
	assert.Equal(t, "", Initials("   "))
	assert.Equal(t, "ÉZ", Initials("émile zola"))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Pro", Capitalize("pro"))
	assert.Equal(t, "Past_due", Capitalize("past_due"))
	assert.Equal(t, "", Capitalize(""))
}

func TestDates(t *testing.T) {
	assert.Equal(t, "Jan", FormatMonth("2025-01-01", false))
	assert.Equal(t, "Jan 2025", FormatMonth("2025-01", true))
	assert.Equal(t, "not-a-month", FormatMonth("not-a-month", true))

	assert.Equal(t, "14 Jan 2025", FormatDate("2025-01-14T09:00:00Z"))
	assert.Equal(t, "Jan 14, 2025", FormatDateUS("2025-01-14"))

	assert.Equal(t, "15 Jan 2025, 12:30", FormatSynced("2025-01-15T12:30:00Z"))
	assert.Equal(t, EmDash, FormatSynced(""))
}
