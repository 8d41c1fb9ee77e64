package presenter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shieldboard/internal/domain"
)

func testSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Summary: domain.Summary{
			TotalUsers:          1250,
			ProUsers:            300,
			FreeUsers:           950,
			ActiveUsers:         640,
			SignupsThisMonth:    84,
			SignupsLastMonth:    ptr(80),
			SignupGrowthPercent: ptr(5.0),
			ProPercent:          24,
			FreePercent:         76,
			ActiveRatePercent:   51.2,
		},
		SignupsOverTime: []domain.MonthlyCount{
			{Month: "2024-12-01", Count: 40},
			{Month: "2025-01-01", Count: 80},
		},
		PlanDistribution: []domain.PlanShare{
			{Plan: "free", Count: 950, Percent: 76},
			{Plan: "pro", Count: 300, Percent: 24},
		},
		SignupProvider: []domain.ProviderShare{
			{Provider: "Google", Count: 900, Percent: 72},
			{Provider: "Local / Email", Count: 350, Percent: 28},
		},
		FreeTrial: []domain.TrialShare{
			{Label: "Trial claimed", Count: 200, Percent: 16},
		},
		SubscriptionStatus: []domain.StatusCount{
			{Status: "active", Count: 280},
			{Status: "canceled", Count: 20},
		},
		RecentSignups: []domain.Signup{
			{ID: "u3", Name: "Ada Lovelace", Date: "2025-01-14", Plan: "pro"},
			{ID: "u2", Name: "grace brewster hopper", Date: "2025-01-12", Plan: "free"},
			{ID: "u1", Name: "Linus", Date: "2025-01-10", Plan: "pro"},
		},
		ReferralCredits: domain.ReferralCredits{
			UsersWithReferralCode:  120,
			ReferralRewardsGranted: 45,
			AvgCreditsPerUser:      2.5,
		},
		PlatformStats: domain.PlatformStats{
			TotalScans:         5000,
			ScansLast30Days:    ptr(1200),
			SpamDomainsBlocked: 42,
			TrustedDomains:     17,
		},
		LastSynced: "2025-01-15T12:30:00Z",
	}
}

var testNow = time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

func TestBuild(t *testing.T) {
	view := Build(testSnapshot(), Options{Now: testNow})

	assert.Equal(t, "15 Jan 2025, 12:30", view.LastSynced)

	require.Len(t, view.Cards, 5)
	assert.Equal(t, "1,250", view.Cards[0].Value)
	assert.Equal(t, "24% of total · paid tier", view.Cards[1].Sub)
	assert.Equal(t, "76% of total", view.Cards[2].Sub)
	assert.Equal(t, "51.2% activation rate", view.Cards[3].Sub)
	assert.Equal(t, "Jan 2025", view.Cards[4].Sub)
	assert.Equal(t, "+5% vs last month", view.Cards[4].Trend)

	require.Len(t, view.Summary, 4)
	assert.Equal(t, "+5%", view.Summary[2].Value)
	assert.True(t, view.Summary[2].Positive)

	require.Len(t, view.SignupsChart, 2)
	assert.Equal(t, "Dec 2024", view.SignupsChart[0].Label)
	assert.Equal(t, "50%", view.SignupsChart[0].HeightCSS())

	require.Len(t, view.RecentSignups, 3)
	assert.Equal(t, "AL", view.RecentSignups[0].Initials)
	assert.Equal(t, "14 Jan 2025", view.RecentSignups[0].Date)

	assert.Equal(t, "Active", view.SubscriptionStatus[0].Label)
}

func TestBuild_RecentLimit(t *testing.T) {
	view := Build(testSnapshot(), Options{RecentLimit: 2, Now: testNow})
	assert.Len(t, view.RecentSignups, 2)
}

func TestBuild_NoGrowth(t *testing.T) {
	s := testSnapshot()
	s.Summary.SignupGrowthPercent = nil
	view := Build(s, Options{Now: testNow})

	assert.Equal(t, EmDash, view.Summary[2].Value)
	assert.False(t, view.Summary[2].Positive)
	assert.Equal(t, "No prior month data", view.Cards[4].Trend)
}

func TestPlatformRows_SuppressesAbsent(t *testing.T) {
	rows := PlatformRows(testSnapshot().PlatformStats)

	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = r.Label
	}
	assert.Contains(t, labels, "Scans (last 30 days)")
	assert.NotContains(t, labels, "Avg scans per user")
}
