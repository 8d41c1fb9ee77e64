package domain

import (
	"net/url"
	"strings"
)

// FilterAll is the sentinel meaning "no constraint" for enum filters.
const FilterAll = "all"

// Filters is the user's filter selection. Dates are YYYY-MM-DD, empty meaning
// unbounded. Status is collected but never sent to the backend.
type Filters struct {
	From         string `json:"from" form:"from" validate:"omitempty,datetime=2006-01-02"`
	To           string `json:"to" form:"to" validate:"omitempty,datetime=2006-01-02"`
	Plan         string `json:"plan" form:"plan" validate:"omitempty,oneof=all free pro"`
	Provider     string `json:"provider" form:"provider" validate:"omitempty,oneof=all google local"`
	Status       string `json:"status" form:"status"`
	Subscription string `json:"subscription" form:"subscription" validate:"omitempty,oneof=all trialing incomplete active canceled"`
}

// DefaultFilters returns the initial draft selection.
func DefaultFilters() Filters {
	return Filters{
		Plan:         FilterAll,
		Provider:     FilterAll,
		Status:       FilterAll,
		Subscription: FilterAll,
	}
}

// QueryString maps the filters to a URL query string, including the leading
// "?", or "" when nothing constrains the request. Parameters appear in the
// fixed order from, to, plan, provider, subscription; empty and "all" values
// are omitted and status is never emitted.
func (f Filters) QueryString() string {
	params := [][2]string{
		{"from", f.From},
		{"to", f.To},
		{"plan", f.Plan},
		{"provider", f.Provider},
		{"subscription", f.Subscription},
	}

	var b strings.Builder
	for _, p := range params {
		if !constrains(p[1]) {
			continue
		}
		if b.Len() == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(p[0])
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p[1]))
	}
	return b.String()
}

func constrains(v string) bool {
	return v != "" && v != FilterAll
}
