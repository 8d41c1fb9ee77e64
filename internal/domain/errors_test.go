package domain

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchError_CollapsesToGenericMessage(t *testing.T) {
	errs := []*FetchError{
		{Kind: FetchErrorTransport, Err: io.ErrUnexpectedEOF},
		{Kind: FetchErrorStatus, StatusCode: 500},
		{Kind: FetchErrorParse, Err: &MalformedResponseError{Fields: []string{"summary"}}},
	}

	for _, err := range errs {
		assert.Equal(t, "Failed to load dashboard", err.Error())
		assert.ErrorIs(t, err, ErrFetchFailed)
	}

	assert.ErrorIs(t, errs[0], io.ErrUnexpectedEOF)

	var malformed *MalformedResponseError
	assert.True(t, errors.As(errs[2], &malformed))
	assert.Equal(t, []string{"summary"}, malformed.Fields)
}

func TestFetchError_Detail(t *testing.T) {
	assert.Equal(t, "status 502", (&FetchError{Kind: FetchErrorStatus, StatusCode: 502}).Detail())
	assert.Equal(t, "transport: unexpected EOF", (&FetchError{Kind: FetchErrorTransport, Err: io.ErrUnexpectedEOF}).Detail())
	assert.Equal(t, "parse", (&FetchError{Kind: FetchErrorParse}).Detail())
}

func TestParseMetricKey(t *testing.T) {
	k, err := ParseMetricKey("activeUsers")
	assert.NoError(t, err)
	assert.Equal(t, "Active users (30d)", k.Title())

	_, err = ParseMetricKey("revenue")
	assert.Error(t, err)
}

func TestSnapshot_RecentSignupsByPlan(t *testing.T) {
	s := &Snapshot{RecentSignups: []Signup{
		{ID: "3", Plan: "pro"},
		{ID: "2", Plan: "free"},
		{ID: "1", Plan: "pro"},
	}}

	got := s.RecentSignupsByPlan("pro")
	assert.Equal(t, []Signup{{ID: "3", Plan: "pro"}, {ID: "1", Plan: "pro"}}, got)
	assert.Empty(t, s.RecentSignupsByPlan("enterprise"))
}
