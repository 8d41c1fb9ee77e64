package presenter

import (
	"fmt"
	"strings"

	"shieldboard/internal/domain"
)

// monthsInDetail caps the monthly list of the signups drill-down.
const monthsInDetail = 12

type DetailSection struct {
	Title   string      `json:"title"`
	Rows    []StatRow   `json:"rows,omitempty"`
	Donut   *Donut      `json:"donut,omitempty"`
	Signups []SignupRow `json:"signups,omitempty"`
}

// Detail is the drill-down content for one selected metric.
type Detail struct {
	Metric   domain.MetricKey `json:"metric"`
	Title    string           `json:"title"`
	Headline string           `json:"headline"`
	Caption  string           `json:"caption"`
	Sections []DetailSection  `json:"sections"`
}

func BuildDetail(metric domain.MetricKey, s *domain.Snapshot, opts Options) Detail {
	opts = opts.withDefaults()
	sum := s.Summary

	d := Detail{Metric: metric, Title: metric.Title()}

	switch metric {
	case domain.MetricTotalUsers:
		d.Headline = FormatCount(sum.TotalUsers)
		d.Caption = fmt.Sprintf("Total users with %d Pro (%s) and %d Free (%s). %d active in last 30d (%s rate).",
			sum.ProUsers, FormatPercent(sum.ProPercent),
			sum.FreeUsers, FormatPercent(sum.FreePercent),
			sum.ActiveUsers, FormatPercent(sum.ActiveRatePercent))
		d.Sections = []DetailSection{
			planSection(s),
			providerSection(s),
			{Title: "Referral & credits", Rows: ReferralRows(s.ReferralCredits)},
			{Title: "Recent signups", Signups: SignupRows(s.RecentSignups, opts.DetailLimit, FormatDateUS)},
		}

	case domain.MetricProUsers:
		d.Headline = FormatCount(sum.ProUsers)
		d.Caption = fmt.Sprintf("Pro users representing %s of all users (paid tier).", FormatPercent(sum.ProPercent))
		d.Sections = []DetailSection{
			planSection(s),
			{Title: "Subscription status", Rows: StatusRows(s.SubscriptionStatus)},
			{Title: "Recent Pro signups", Signups: SignupRows(s.RecentSignupsByPlan("pro"), opts.DetailLimit, FormatDateUS)},
		}

	case domain.MetricFreeUsers:
		d.Headline = FormatCount(sum.FreeUsers)
		d.Caption = fmt.Sprintf("Free users representing %s of all users on the platform.", FormatPercent(sum.FreePercent))
		d.Sections = []DetailSection{
			planSection(s),
			trialSection(s),
			{Title: "Recent Free signups", Signups: SignupRows(s.RecentSignupsByPlan("free"), opts.DetailLimit, FormatDateUS)},
		}

	case domain.MetricActiveUsers:
		d.Headline = FormatCount(sum.ActiveUsers)
		d.Caption = fmt.Sprintf("Active users in the last 30 days · %s activation rate.", FormatPercent(sum.ActiveRatePercent))
		d.Sections = []DetailSection{
			{Title: "Subscription status", Rows: StatusRows(s.SubscriptionStatus)},
			{Title: "Platform activity", Rows: activityRows(s.PlatformStats)},
			trialSection(s),
		}

	case domain.MetricSignups:
		d.Headline = FormatCount(sum.SignupsThisMonth)
		d.Caption = signupsCaption(sum)
		d.Sections = []DetailSection{
			{Title: "Monthly signups", Rows: recentMonths(s.SignupsOverTime, monthsInDetail)},
			providerSection(s),
			{Title: "Recent signups", Signups: SignupRows(s.RecentSignups, opts.DetailLimit, FormatDateUS)},
		}
	}

	return d
}

func planSection(s *domain.Snapshot) DetailSection {
	donut := PlanDonut(s.PlanDistribution, s.Summary.TotalUsers)
	rows := make([]StatRow, len(s.PlanDistribution))
	for i, p := range s.PlanDistribution {
		rows[i] = StatRow{
			Label: Capitalize(p.Plan),
			Value: fmt.Sprintf("%s · %d", FormatPercent(p.Percent), p.Count),
		}
	}
	return DetailSection{Title: "Plan distribution", Rows: rows, Donut: &donut}
}

func providerSection(s *domain.Snapshot) DetailSection {
	rows := make([]StatRow, len(s.SignupProvider))
	for i, p := range s.SignupProvider {
		rows[i] = StatRow{
			Label: p.Provider,
			Value: fmt.Sprintf("%d users (%s)", p.Count, FormatPercent(p.Percent)),
		}
	}
	return DetailSection{Title: "Signup provider", Rows: rows}
}

func trialSection(s *domain.Snapshot) DetailSection {
	rows := make([]StatRow, len(s.FreeTrial))
	for i, t := range s.FreeTrial {
		rows[i] = StatRow{
			Label: t.Label,
			Value: fmt.Sprintf("%d (%s)", t.Count, FormatPercent(t.Percent)),
		}
	}
	return DetailSection{Title: "Free trial", Rows: rows}
}

// activityRows is the scan subset of the platform stats.
func activityRows(p domain.PlatformStats) []StatRow {
	rows := []StatRow{{Label: "Total scans", Value: FormatCount(p.TotalScans)}}
	if p.ScansLast30Days != nil {
		rows = append(rows, StatRow{Label: "Scans (last 30 days)", Value: FormatCount(*p.ScansLast30Days)})
	}
	if p.AvgScansPerUser != nil {
		rows = append(rows, StatRow{Label: "Avg scans per user", Value: FormatNumber(*p.AvgScansPerUser)})
	}
	return rows
}

func signupsCaption(s domain.Summary) string {
	parts := []string{"Signups this month"}
	if s.SignupsLastMonth != nil {
		parts = append(parts, fmt.Sprintf("Last month: %d", *s.SignupsLastMonth))
	}
	if s.SignupGrowthPercent != nil {
		parts = append(parts, SignedPercent(*s.SignupGrowthPercent)+" vs last month")
	}
	return strings.Join(parts, " · ")
}

// recentMonths lists up to n months newest first.
func recentMonths(series []domain.MonthlyCount, n int) []StatRow {
	rows := make([]StatRow, 0, n)
	for i := len(series) - 1; i >= 0 && len(rows) < n; i-- {
		rows = append(rows, StatRow{
			Label: FormatMonth(series[i].Month, true),
			Value: FormatCount(series[i].Count),
		})
	}
	return rows
}
