// Package presenter turns a dashboard snapshot into display-ready values.
// Everything here is pure: no I/O, no clocks other than the ones passed in.
package presenter

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// EmDash is shown where a value is absent or carries no information.
const EmDash = "—"

var (
	countPrinter = message.NewPrinter(language.English)
	upper        = cases.Upper(language.Und)
)

// FormatCount renders an integer with thousands separators, e.g. 1,250.
func FormatCount(n int) string {
	return countPrinter.Sprintf("%d", n)
}

// FormatNumber renders a float with the shortest exact representation:
// 5 -> "5", 51.2 -> "51.2".
func FormatNumber(v float64) string {
	if v == 0 || math.IsNaN(v) {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatPercent renders a backend-computed percentage as is, e.g. "24%".
// It never recomputes ratios from counts.
func FormatPercent(v float64) string {
	return FormatNumber(v) + "%"
}

// GrowthLabel renders month-over-month growth: "+5%", "-3%", or EmDash when
// the value is absent or zero.
func GrowthLabel(p *float64) string {
	if p == nil {
		return EmDash
	}
	switch g := *p; {
	case g > 0:
		return "+" + FormatPercent(g)
	case g < 0:
		return FormatPercent(g)
	default:
		return EmDash
	}
}

// GrowthTrend is the card trend line for signup growth. up is true unless
// growth is negative.
func GrowthTrend(p *float64) (text string, up bool) {
	var g float64
	if p != nil && !math.IsNaN(*p) {
		g = *p
	}
	switch {
	case g > 0:
		return "+" + FormatPercent(g) + " vs last month", true
	case g < 0:
		return FormatPercent(g) + " vs last month", false
	default:
		return "No prior month data", true
	}
}

// SignedPercent always carries a sign for non-negative values: "+0%", "+5%", "-3%".
func SignedPercent(v float64) string {
	if v >= 0 {
		return "+" + FormatPercent(v)
	}
	return FormatPercent(v)
}

// Initials takes the first letter of each whitespace-separated token,
// upper-cases the result and keeps at most two characters.
func Initials(name string) string {
	var b strings.Builder
	for _, token := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(token)
		b.WriteRune(r)
	}
	out := []rune(upper.String(b.String()))
	if len(out) > 2 {
		out = out[:2]
	}
	return string(out)
}

// Capitalize upper-cases the first character and leaves the rest alone.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
}

// parseTimestamp accepts the ISO-ish keys the backend uses for months, dates
// and sync times.
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatMonth renders a month key as "Jan" or "Jan 2025". Unparseable keys
// are returned unchanged.
func FormatMonth(key string, withYear bool) string {
	t, ok := parseTimestamp(key)
	if !ok {
		return key
	}
	if withYear {
		return t.Format("Jan 2006")
	}
	return t.Format("Jan")
}

// FormatDate renders a signup date as "2 Jan 2025".
func FormatDate(iso string) string {
	t, ok := parseTimestamp(iso)
	if !ok {
		return iso
	}
	return t.Format("2 Jan 2006")
}

// FormatDateUS renders a signup date as "Jan 2, 2025".
func FormatDateUS(iso string) string {
	t, ok := parseTimestamp(iso)
	if !ok {
		return iso
	}
	return t.Format("Jan 2, 2006")
}

// FormatSynced renders the snapshot's sync time as "15 Jan 2025, 12:30",
// or EmDash when there is none.
func FormatSynced(iso string) string {
	if strings.TrimSpace(iso) == "" {
		return EmDash
	}
	t, ok := parseTimestamp(iso)
	if !ok {
		return iso
	}
	return t.Format("2 Jan 2006, 15:04")
}
