package infrastructure

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"shieldboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSnapshot_DropsExtraneousSeriesFields(t *testing.T) {
	snap, err := DecodeSnapshot(loadFixture(t))
	require.NoError(t, err)

	out, err := json.Marshal(snap.SignupsOverTime)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"month":"2024-11-01","count":60},
		{"month":"2024-12-01","count":80},
		{"month":"2025-01-01","count":84}
	]`, string(out))
}

func TestDecodeSnapshot_MissingSeriesIsEmpty(t *testing.T) {
	var raw map[string]any
	require.NoError(t, json.Unmarshal(loadFixture(t), &raw))
	delete(raw, "signupsOverTime")
	body, err := json.Marshal(raw)
	require.NoError(t, err)

	snap, err := DecodeSnapshot(body)
	require.NoError(t, err)
	assert.NotNil(t, snap.SignupsOverTime)
	assert.Empty(t, snap.SignupsOverTime)
}

func TestDecodeSnapshot_Malformed(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(raw map[string]any)
		wantField string
	}{
		{
			name:      "missing required summary field",
			mutate:    func(raw map[string]any) { delete(raw["summary"].(map[string]any), "totalUsers") },
			wantField: "summary.totalUsers",
		},
		{
			name:      "missing platform stats",
			mutate:    func(raw map[string]any) { delete(raw, "platformStats") },
			wantField: "platformStats",
		},
		{
			name: "series entry without count",
			mutate: func(raw map[string]any) {
				raw["signupsOverTime"] = []any{map[string]any{"month": "2025-01"}}
			},
			wantField: "signupsOverTime[0].count",
		},
		{
			name:      "wrong type",
			mutate:    func(raw map[string]any) { raw["summary"].(map[string]any)["proUsers"] = "many" },
			wantField: "summary.proUsers",
		},
		{
			name:      "null list",
			mutate:    func(raw map[string]any) { raw["recentSignups"] = nil },
			wantField: "recentSignups",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw map[string]any
			require.NoError(t, json.Unmarshal(loadFixture(t), &raw))
			tt.mutate(raw)
			body, err := json.Marshal(raw)
			require.NoError(t, err)

			snap, err := DecodeSnapshot(body)
			require.Error(t, err)
			assert.Nil(t, snap)

			var malformed *domain.MalformedResponseError
			require.True(t, errors.As(err, &malformed), "got %v", err)
			assert.Contains(t, malformed.Fields, tt.wantField)
			assert.True(t, strings.HasPrefix(err.Error(), "malformed dashboard response"))
		})
	}
}

func TestDecodeSnapshot_OptionalFieldsStayNil(t *testing.T) {
	var raw map[string]any
	require.NoError(t, json.Unmarshal(loadFixture(t), &raw))
	summary := raw["summary"].(map[string]any)
	delete(summary, "signupsLastMonth")
	delete(summary, "signupGrowthPercent")
	body, err := json.Marshal(raw)
	require.NoError(t, err)

	snap, err := DecodeSnapshot(body)
	require.NoError(t, err)
	assert.Nil(t, snap.Summary.SignupsLastMonth)
	assert.Nil(t, snap.Summary.SignupGrowthPercent)
}

func TestDecodeSnapshot_SyntaxError(t *testing.T) {
	_, err := DecodeSnapshot([]byte(`not json`))
	require.Error(t, err)

	var malformed *domain.MalformedResponseError
	assert.False(t, errors.As(err, &malformed))
}

func TestNormalizeSnapshot_Idempotent(t *testing.T) {
	snap, err := DecodeSnapshot(loadFixture(t))
	require.NoError(t, err)

	once := NormalizeSnapshot(snap)
	twice := NormalizeSnapshot(once)
	assert.Equal(t, once.SignupsOverTime, twice.SignupsOverTime)
	assert.Equal(t, once, twice)

	empty := NormalizeSnapshot(&domain.Snapshot{})
	assert.NotNil(t, empty.SignupsOverTime)
	assert.Equal(t, empty, NormalizeSnapshot(empty))

	assert.Nil(t, NormalizeSnapshot(nil))
}
