package presenter

import (
	"fmt"
	"time"

	"shieldboard/internal/domain"
)

// Options controls list limits and the clock used for the signups card.
type Options struct {
	RecentLimit int
	DetailLimit int
	Now         time.Time
}

func (o Options) withDefaults() Options {
	if o.RecentLimit <= 0 {
		o.RecentLimit = 8
	}
	if o.DetailLimit <= 0 {
		o.DetailLimit = 20
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

type SummaryPoint struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Sub      string `json:"sub"`
	Positive bool   `json:"positive"`
}

type Card struct {
	Metric   domain.MetricKey `json:"metric"`
	Title    string           `json:"title"`
	Value    string           `json:"value"`
	Sub      string           `json:"sub"`
	Trend    string           `json:"trend,omitempty"`
	TrendUp  bool             `json:"trendUp"`
	Selected bool             `json:"selected"`
}

type StatRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type SignupRow struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Initials string `json:"initials"`
	Date     string `json:"date"`
	Plan     string `json:"plan"`
}

// View is everything the dashboard page renders for one snapshot.
type View struct {
	LastSynced         string         `json:"lastSynced"`
	Summary            []SummaryPoint `json:"summary"`
	Cards              []Card         `json:"cards"`
	SignupsChart       []Column       `json:"signupsChart"`
	PlanDonut          Donut          `json:"planDonut"`
	Providers          []Bar          `json:"providers"`
	FreeTrial          []Bar          `json:"freeTrial"`
	SubscriptionStatus []StatRow      `json:"subscriptionStatus"`
	RecentSignups      []SignupRow    `json:"recentSignups"`
	Referral           []StatRow      `json:"referral"`
	Platform           []StatRow      `json:"platform"`
}

// Build derives the page view from s. Derived values are recomputed on every
// call and never cached.
func Build(s *domain.Snapshot, opts Options) View {
	opts = opts.withDefaults()

	return View{
		LastSynced:         FormatSynced(s.LastSynced),
		Summary:            ExecutiveSummary(s.Summary),
		Cards:              MetricCards(s.Summary, opts.Now),
		SignupsChart:       SignupColumns(s.SignupsOverTime),
		PlanDonut:          PlanDonut(s.PlanDistribution, s.Summary.TotalUsers),
		Providers:          ProviderBars(s.SignupProvider),
		FreeTrial:          TrialBars(s.FreeTrial),
		SubscriptionStatus: StatusRows(s.SubscriptionStatus),
		RecentSignups:      SignupRows(s.RecentSignups, opts.RecentLimit, FormatDate),
		Referral:           ReferralRows(s.ReferralCredits),
		Platform:           PlatformRows(s.PlatformStats),
	}
}

func ExecutiveSummary(s domain.Summary) []SummaryPoint {
	growth := 0.0
	if s.SignupGrowthPercent != nil {
		growth = *s.SignupGrowthPercent
	}
	return []SummaryPoint{
		{Label: "Total registered users", Value: FormatCount(s.TotalUsers), Sub: "All-time"},
		{Label: "Paid (Pro) share", Value: FormatPercent(s.ProPercent), Sub: fmt.Sprintf("%d users", s.ProUsers)},
		{Label: "MoM signup growth", Value: GrowthLabel(s.SignupGrowthPercent), Sub: "vs previous month", Positive: growth > 0},
		{Label: "30-day active rate", Value: FormatPercent(s.ActiveRatePercent), Sub: fmt.Sprintf("%d active users", s.ActiveUsers)},
	}
}

// MetricCards builds the five selectable key-metric cards.
func MetricCards(s domain.Summary, now time.Time) []Card {
	trend, up := GrowthTrend(s.SignupGrowthPercent)
	return []Card{
		{
			Metric: domain.MetricTotalUsers,
			Title:  domain.MetricTotalUsers.Title(),
			Value:  FormatCount(s.TotalUsers),
			Sub:    "Cumulative registered accounts",
		},
		{
			Metric:  domain.MetricProUsers,
			Title:   domain.MetricProUsers.Title(),
			Value:   FormatCount(s.ProUsers),
			Sub:     FormatPercent(s.ProPercent) + " of total · paid tier",
			TrendUp: true,
		},
		{
			Metric: domain.MetricFreeUsers,
			Title:  domain.MetricFreeUsers.Title(),
			Value:  FormatCount(s.FreeUsers),
			Sub:    FormatPercent(s.FreePercent) + " of total",
		},
		{
			Metric:  domain.MetricActiveUsers,
			Title:   domain.MetricActiveUsers.Title(),
			Value:   FormatCount(s.ActiveUsers),
			Sub:     FormatPercent(s.ActiveRatePercent) + " activation rate",
			TrendUp: true,
		},
		{
			Metric:  domain.MetricSignups,
			Title:   domain.MetricSignups.Title(),
			Value:   FormatCount(s.SignupsThisMonth),
			Sub:     now.Format("Jan 2006"),
			Trend:   trend,
			TrendUp: up,
		},
	}
}

func StatusRows(statuses []domain.StatusCount) []StatRow {
	rows := make([]StatRow, len(statuses))
	for i, s := range statuses {
		rows[i] = StatRow{Label: Capitalize(s.Status), Value: FormatCount(s.Count)}
	}
	return rows
}

// SignupRows truncates the list to limit and formats each row's date with
// formatDate.
func SignupRows(signups []domain.Signup, limit int, formatDate func(string) string) []SignupRow {
	if limit >= 0 && len(signups) > limit {
		signups = signups[:limit]
	}
	rows := make([]SignupRow, len(signups))
	for i, u := range signups {
		rows[i] = SignupRow{
			ID:       u.ID,
			Name:     u.Name,
			Initials: Initials(u.Name),
			Date:     formatDate(u.Date),
			Plan:     u.Plan,
		}
	}
	return rows
}

func ReferralRows(r domain.ReferralCredits) []StatRow {
	return []StatRow{
		{Label: "Users with referral code", Value: FormatCount(r.UsersWithReferralCode)},
		{Label: "Referral rewards granted", Value: FormatCount(r.ReferralRewardsGranted)},
		{Label: "Avg credits per user", Value: FormatNumber(r.AvgCreditsPerUser)},
	}
}

// PlatformRows omits the rows whose optional source values are absent.
func PlatformRows(p domain.PlatformStats) []StatRow {
	rows := []StatRow{{Label: "Total scans", Value: FormatCount(p.TotalScans)}}
	if p.ScansLast30Days != nil {
		rows = append(rows, StatRow{Label: "Scans (last 30 days)", Value: FormatCount(*p.ScansLast30Days)})
	}
	if p.AvgScansPerUser != nil {
		rows = append(rows, StatRow{Label: "Avg scans per user", Value: FormatNumber(*p.AvgScansPerUser)})
	}
	return append(rows,
		StatRow{Label: "Spam domains blocked", Value: FormatCount(p.SpamDomainsBlocked)},
		StatRow{Label: "Trusted domains", Value: FormatCount(p.TrustedDomains)},
	)
}
