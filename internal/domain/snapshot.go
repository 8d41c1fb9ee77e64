package domain

// Summary holds the pre-aggregated counts and percentages computed by the backend.
// Optional values are pointers so an absent field can suppress its display row.
type Summary struct {
	TotalUsers          int      `json:"totalUsers"`
	ProUsers            int      `json:"proUsers"`
	FreeUsers           int      `json:"freeUsers"`
	ActiveUsers         int      `json:"activeUsers"`
	SignupsThisMonth    int      `json:"signupsThisMonth"`
	SignupsLastMonth    *int     `json:"signupsLastMonth,omitempty"`
	SignupGrowthPercent *float64 `json:"signupGrowthPercent,omitempty"`
	ProPercent          float64  `json:"proPercent"`
	FreePercent         float64  `json:"freePercent"`
	ActiveRatePercent   float64  `json:"activeRatePercent"`
}

// MonthlyCount is one point of the signups time series.
type MonthlyCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type PlanShare struct {
	Plan    string  `json:"plan"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type ProviderShare struct {
	Provider string  `json:"provider"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
}

type TrialShare struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// Signup is one row of the recent signups list, most recent first.
type Signup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
	Plan string `json:"plan"`
}

type ReferralCredits struct {
	UsersWithReferralCode  int     `json:"usersWithReferralCode"`
	ReferralRewardsGranted int     `json:"referralRewardsGranted"`
	AvgCreditsPerUser      float64 `json:"avgCreditsPerUser"`
}

type PlatformStats struct {
	TotalScans         int      `json:"totalScans"`
	ScansLast30Days    *int     `json:"scansLast30Days,omitempty"`
	AvgScansPerUser    *float64 `json:"avgScansPerUser,omitempty"`
	SpamDomainsBlocked int      `json:"spamDomainsBlocked"`
	TrustedDomains     int      `json:"trustedDomains"`
}

// Snapshot is one immutable dashboard payload. It is replaced wholesale on
// every successful fetch and never merged.
type Snapshot struct {
	Summary            Summary         `json:"summary"`
	SignupsOverTime    []MonthlyCount  `json:"signupsOverTime"`
	PlanDistribution   []PlanShare     `json:"planDistribution"`
	SignupProvider     []ProviderShare `json:"signupProvider"`
	FreeTrial          []TrialShare    `json:"freeTrial"`
	SubscriptionStatus []StatusCount   `json:"subscriptionStatus"`
	RecentSignups      []Signup        `json:"recentSignups"`
	ReferralCredits    ReferralCredits `json:"referralCredits"`
	PlatformStats      PlatformStats   `json:"platformStats"`
	LastSynced         string          `json:"lastSynced"`
}

// RecentSignupsByPlan returns the recent signups whose plan equals plan, in
// their original order.
func (s *Snapshot) RecentSignupsByPlan(plan string) []Signup {
	out := make([]Signup, 0, len(s.RecentSignups))
	for _, u := range s.RecentSignups {
		if u.Plan == plan {
			out = append(out, u)
		}
	}
	return out
}
