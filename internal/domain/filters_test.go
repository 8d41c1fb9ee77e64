package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilters_QueryString(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		want    string
	}{
		{
			name:    "defaults",
			filters: DefaultFilters(),
			want:    "",
		},
		{
			name:    "zero value",
			filters: Filters{},
			want:    "",
		},
		{
			name:    "plan and from",
			filters: Filters{Plan: "pro", Provider: "all", From: "2024-01-01", To: ""},
			want:    "?from=2024-01-01&plan=pro",
		},
		{
			name: "every constraining field in fixed order",
			filters: Filters{
				Subscription: "active",
				Provider:     "google",
				Plan:         "free",
				To:           "2024-12-31",
				From:         "2024-01-01",
				Status:       "active",
			},
			want: "?from=2024-01-01&to=2024-12-31&plan=free&provider=google&subscription=active",
		},
		{
			name:    "status alone is never sent",
			filters: Filters{Plan: "all", Status: "trialing"},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filters.QueryString())
		})
	}
}

func TestFilters_QueryStringNeverCarriesStatusOrAll(t *testing.T) {
	values := []string{"", "all", "pro", "google", "active", "2024-01-01"}
	for _, plan := range values {
		for _, provider := range values {
			for _, status := range values {
				f := Filters{From: plan, Plan: plan, Provider: provider, Status: status, Subscription: provider}
				q := f.QueryString()
				assert.NotContains(t, q, "status=")
				assert.NotContains(t, q, "=all")
				if q != "" {
					assert.True(t, strings.HasPrefix(q, "?"), q)
				}
			}
		}
	}
}

func TestFilters_QueryStringEscapes(t *testing.T) {
	f := Filters{Plan: "a&b"}
	assert.Equal(t, "?plan=a%26b", f.QueryString())
}
