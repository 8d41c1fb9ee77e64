package infrastructure

import (
	"context"
	"sync"

	"shieldboard/internal/domain"
	"shieldboard/pkg/logger"
)

// implements domain.SnapshotRepository. It holds exactly one snapshot and
// one error; both are replaced, never merged.
type SnapshotStore struct {
	snapshot     *domain.Snapshot
	err          error
	seq          uint64
	snapshotSeq  uint64
	errSeq       uint64
	discardStale bool
	mutex        sync.RWMutex
	logger       *logger.Logger
}

// creates a new snapshot store. With discardStale set, outcomes of loads
// older than the newest committed one of the same kind are dropped;
// otherwise the last load to finish wins.
func NewSnapshotStore(discardStale bool, logger *logger.Logger) *SnapshotStore {
	return &SnapshotStore{
		discardStale: discardStale,
		logger:       logger,
	}
}

// Commit records the outcome of load seq. A success is only compared against
// earlier successes, so a newer failure never hides older data. A failure is
// dropped once any newer outcome has been recorded.
func (r *SnapshotStore) Commit(ctx context.Context, seq uint64, snapshot *domain.Snapshot, err error) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	log := r.logger.WithContext(ctx)

	mark := r.snapshotSeq
	if err != nil {
		mark = r.seq
	}
	if r.discardStale && seq < mark {
		log.WithFields(map[string]any{
			"seq":      seq,
			"accepted": mark,
		}).Warn("Discarded out-of-order dashboard response")
		return false
	}

	if err != nil {
		r.err = err
		r.errSeq = seq
		r.advance(seq)
		log.WithField("seq", seq).Debug("Recorded dashboard load failure")
		return true
	}

	r.snapshot = snapshot
	r.snapshotSeq = seq
	if !r.discardStale || seq > r.errSeq {
		r.err = nil
	}
	r.advance(seq)
	log.WithFields(map[string]any{
		"seq":         seq,
		"last_synced": snapshot.LastSynced,
	}).Debug("Replaced dashboard snapshot")
	return true
}

func (r *SnapshotStore) advance(seq uint64) {
	if r.discardStale {
		r.seq = max(r.seq, seq)
		return
	}
	r.seq = seq
}

func (r *SnapshotStore) ClearError(ctx context.Context) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.err = nil
}

func (r *SnapshotStore) Current(ctx context.Context) domain.LoadResult {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return domain.LoadResult{
		Snapshot: r.snapshot,
		Err:      r.err,
		Seq:      r.seq,
	}
}
