package domain

import (
	"context"
	"net/http"
)

// interface for fetching dashboard snapshots
type SnapshotClient interface {
	FetchSnapshot(ctx context.Context, filters Filters) (*Snapshot, error)
}

// interface for forwarding raw dashboard requests to the backend origin
type DashboardForwarder interface {
	ForwardDashboard(ctx context.Context, rawQuery string) (*ForwardedResponse, error)
}

// holds the current snapshot and last load error
type SnapshotRepository interface {
	// Commit records the outcome of load seq. A nil err replaces the snapshot
	// and clears the error; a non-nil err keeps the snapshot. It reports
	// whether the outcome was applied.
	Commit(ctx context.Context, seq uint64, snapshot *Snapshot, err error) bool
	ClearError(ctx context.Context)
	Current(ctx context.Context) LoadResult
}

// LoadResult is the state readers observe.
type LoadResult struct {
	Snapshot *Snapshot
	Err      error
	Seq      uint64
}

// ForwardedResponse is an upstream dashboard response passed through by the proxy.
type ForwardedResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}
