package presenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shieldboard/internal/domain"
)

func TestScaleDenominator(t *testing.T) {
	assert.Equal(t, 1, ScaleDenominator(nil))
	assert.Equal(t, 1, ScaleDenominator([]int{0, 0}))
	assert.Equal(t, 40, ScaleDenominator([]int{10, 40, 20}))
}

func TestScaleWidths_AllZero(t *testing.T) {
	bars := ProviderBars([]domain.ProviderShare{
		{Provider: "Google", Count: 0},
		{Provider: "Local / Email", Count: 0},
	})
	require.Len(t, bars, 2)
	for _, b := range bars {
		assert.Equal(t, "0%", b.WidthCSS())
	}
}

func TestProviderBars(t *testing.T) {
	bars := ProviderBars([]domain.ProviderShare{
		{Provider: "Google", Count: 800, Percent: 64},
		{Provider: "Local / Email", Count: 400, Percent: 32},
	})
	require.Len(t, bars, 2)
	assert.Equal(t, "100%", bars[0].WidthCSS())
	assert.Equal(t, "50%", bars[1].WidthCSS())
	assert.Equal(t, "400 (32%)", bars[1].Value)
}

func TestMonthLabels(t *testing.T) {
	single := []domain.MonthlyCount{{Month: "2025-01-01"}, {Month: "2025-02-01"}}
	assert.Equal(t, []string{"Jan", "Feb"}, MonthLabels(single))

	spanning := []domain.MonthlyCount{{Month: "2024-12-01"}, {Month: "2025-01-01"}}
	assert.Equal(t, []string{"Dec 2024", "Jan 2025"}, MonthLabels(spanning))
}

func TestSignupColumns_Empty(t *testing.T) {
	assert.Empty(t, SignupColumns(nil))
}

func TestPlanDonut(t *testing.T) {
	donut := PlanDonut([]domain.PlanShare{
		{Plan: "free", Count: 750, Percent: 75},
		{Plan: "pro", Count: 250, Percent: 25},
	}, 1000)

	require.Len(t, donut.Slices, 2)
	assert.Equal(t, "Free: 750 (75%)", donut.Slices[0].Legend)
	assert.Equal(t, 0.0, donut.Slices[0].Start)
	assert.Equal(t, 75.0, donut.Slices[0].End)
	assert.Equal(t, 100.0, donut.Slices[1].End)
	assert.Equal(t, "conic-gradient(#0d2818 0% 75%, #2d7a4f 75% 100%)", donut.Gradient())
}

func TestPlanDonut_Empty(t *testing.T) {
	donut := PlanDonut(nil, 0)
	assert.Equal(t, "conic-gradient(#e5e7eb 0% 100%)", donut.Gradient())
}
