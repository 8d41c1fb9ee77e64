package infrastructure

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"shieldboard/internal/domain"

	"github.com/go-playground/validator/v10"
)

// wire types mirror the backend payload. Required scalars are pointers so a
// missing key can be told apart from a zero value.
type wireSummary struct {
	TotalUsers          *int     `json:"totalUsers" validate:"required"`
	ProUsers            *int     `json:"proUsers" validate:"required"`
	FreeUsers           *int     `json:"freeUsers" validate:"required"`
	ActiveUsers         *int     `json:"activeUsers" validate:"required"`
	SignupsThisMonth    *int     `json:"signupsThisMonth" validate:"required"`
	SignupsLastMonth    *int     `json:"signupsLastMonth"`
	SignupGrowthPercent *float64 `json:"signupGrowthPercent"`
	ProPercent          *float64 `json:"proPercent" validate:"required"`
	FreePercent         *float64 `json:"freePercent" validate:"required"`
	ActiveRatePercent   *float64 `json:"activeRatePercent" validate:"required"`
}

type wireMonthlyCount struct {
	Month *string `json:"month" validate:"required"`
	Count *int    `json:"count" validate:"required"`
}

type wirePlanShare struct {
	Plan    *string  `json:"plan" validate:"required"`
	Count   *int     `json:"count" validate:"required"`
	Percent *float64 `json:"percent" validate:"required"`
}

type wireProviderShare struct {
	Provider *string  `json:"provider" validate:"required"`
	Count    *int     `json:"count" validate:"required"`
	Percent  *float64 `json:"percent" validate:"required"`
}

type wireTrialShare struct {
	Label   *string  `json:"label" validate:"required"`
	Count   *int     `json:"count" validate:"required"`
	Percent *float64 `json:"percent" validate:"required"`
}

type wireStatusCount struct {
	Status *string `json:"status" validate:"required"`
	Count  *int    `json:"count" validate:"required"`
}

type wireSignup struct {
	ID   *string `json:"id" validate:"required"`
	Name *string `json:"name" validate:"required"`
	Date *string `json:"date" validate:"required"`
	Plan *string `json:"plan" validate:"required"`
}

type wireReferralCredits struct {
	UsersWithReferralCode  *int     `json:"usersWithReferralCode" validate:"required"`
	ReferralRewardsGranted *int     `json:"referralRewardsGranted" validate:"required"`
	AvgCreditsPerUser      *float64 `json:"avgCreditsPerUser" validate:"required"`
}

type wirePlatformStats struct {
	TotalScans         *int     `json:"totalScans" validate:"required"`
	ScansLast30Days    *int     `json:"scansLast30Days"`
	AvgScansPerUser    *float64 `json:"avgScansPerUser"`
	SpamDomainsBlocked *int     `json:"spamDomainsBlocked" validate:"required"`
	TrustedDomains     *int     `json:"trustedDomains" validate:"required"`
}

// signupsOverTime may be absent and is then treated as empty.
type wireSnapshot struct {
	Summary            *wireSummary         `json:"summary" validate:"required"`
	SignupsOverTime    []wireMonthlyCount   `json:"signupsOverTime" validate:"dive"`
	PlanDistribution   []wirePlanShare      `json:"planDistribution" validate:"required,dive"`
	SignupProvider     []wireProviderShare  `json:"signupProvider" validate:"required,dive"`
	FreeTrial          []wireTrialShare     `json:"freeTrial" validate:"required,dive"`
	SubscriptionStatus []wireStatusCount    `json:"subscriptionStatus" validate:"required,dive"`
	RecentSignups      []wireSignup         `json:"recentSignups" validate:"required,dive"`
	ReferralCredits    *wireReferralCredits `json:"referralCredits" validate:"required"`
	PlatformStats      *wirePlatformStats   `json:"platformStats" validate:"required"`
	LastSynced         *string              `json:"lastSynced" validate:"required"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func snapshotValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(jsonFieldName)
	})
	return validate
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// DecodeSnapshot parses and validates a dashboard payload. Syntax errors are
// returned as is; shape violations are a *domain.MalformedResponseError.
// Unknown keys are ignored.
func DecodeSnapshot(body []byte) (*domain.Snapshot, error) {
	var wire wireSnapshot
	if err := json.Unmarshal(body, &wire); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "(root)"
			}
			return nil, &domain.MalformedResponseError{Fields: []string{field}}
		}
		return nil, fmt.Errorf("failed to parse dashboard payload: %w", err)
	}

	if err := snapshotValidator().Struct(wire); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, trimNamespace(fe.Namespace()))
			}
			return nil, &domain.MalformedResponseError{Fields: fields}
		}
		return nil, fmt.Errorf("failed to validate dashboard payload: %w", err)
	}

	return wire.toDomain(), nil
}

// trimNamespace drops the root struct name validator prefixes to namespaces.
func trimNamespace(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func isJSON(body []byte) bool {
	return len(bytes.TrimSpace(body)) > 0 && json.Valid(body)
}

// NormalizeSnapshot returns a copy whose signups series holds exactly
// {month, count} pairs and is never nil. Applying it twice yields the same
// value.
func NormalizeSnapshot(s *domain.Snapshot) *domain.Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.SignupsOverTime = make([]domain.MonthlyCount, 0, len(s.SignupsOverTime))
	for _, r := range s.SignupsOverTime {
		out.SignupsOverTime = append(out.SignupsOverTime, domain.MonthlyCount{Month: r.Month, Count: r.Count})
	}
	return &out
}

func (w *wireSnapshot) toDomain() *domain.Snapshot {
	s := &domain.Snapshot{
		Summary: domain.Summary{
			TotalUsers:          *w.Summary.TotalUsers,
			ProUsers:            *w.Summary.ProUsers,
			FreeUsers:           *w.Summary.FreeUsers,
			ActiveUsers:         *w.Summary.ActiveUsers,
			SignupsThisMonth:    *w.Summary.SignupsThisMonth,
			SignupsLastMonth:    w.Summary.SignupsLastMonth,
			SignupGrowthPercent: w.Summary.SignupGrowthPercent,
			ProPercent:          *w.Summary.ProPercent,
			FreePercent:         *w.Summary.FreePercent,
			ActiveRatePercent:   *w.Summary.ActiveRatePercent,
		},
		PlanDistribution:   make([]domain.PlanShare, 0, len(w.PlanDistribution)),
		SignupProvider:     make([]domain.ProviderShare, 0, len(w.SignupProvider)),
		FreeTrial:          make([]domain.TrialShare, 0, len(w.FreeTrial)),
		SubscriptionStatus: make([]domain.StatusCount, 0, len(w.SubscriptionStatus)),
		RecentSignups:      make([]domain.Signup, 0, len(w.RecentSignups)),
		ReferralCredits: domain.ReferralCredits{
			UsersWithReferralCode:  *w.ReferralCredits.UsersWithReferralCode,
			ReferralRewardsGranted: *w.ReferralCredits.ReferralRewardsGranted,
			AvgCreditsPerUser:      *w.ReferralCredits.AvgCreditsPerUser,
		},
		PlatformStats: domain.PlatformStats{
			TotalScans:         *w.PlatformStats.TotalScans,
			ScansLast30Days:    w.PlatformStats.ScansLast30Days,
			AvgScansPerUser:    w.PlatformStats.AvgScansPerUser,
			SpamDomainsBlocked: *w.PlatformStats.SpamDomainsBlocked,
			TrustedDomains:     *w.PlatformStats.TrustedDomains,
		},
		LastSynced: *w.LastSynced,
	}

	for _, r := range w.SignupsOverTime {
		s.SignupsOverTime = append(s.SignupsOverTime, domain.MonthlyCount{Month: *r.Month, Count: *r.Count})
	}
	for _, r := range w.PlanDistribution {
		s.PlanDistribution = append(s.PlanDistribution, domain.PlanShare{Plan: *r.Plan, Count: *r.Count, Percent: *r.Percent})
	}
	for _, r := range w.SignupProvider {
		s.SignupProvider = append(s.SignupProvider, domain.ProviderShare{Provider: *r.Provider, Count: *r.Count, Percent: *r.Percent})
	}
	for _, r := range w.FreeTrial {
		s.FreeTrial = append(s.FreeTrial, domain.TrialShare{Label: *r.Label, Count: *r.Count, Percent: *r.Percent})
	}
	for _, r := range w.SubscriptionStatus {
		s.SubscriptionStatus = append(s.SubscriptionStatus, domain.StatusCount{Status: *r.Status, Count: *r.Count})
	}
	for _, r := range w.RecentSignups {
		s.RecentSignups = append(s.RecentSignups, domain.Signup{ID: *r.ID, Name: *r.Name, Date: *r.Date, Plan: *r.Plan})
	}

	return NormalizeSnapshot(s)
}
