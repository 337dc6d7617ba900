package collection

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Sentinel replaces absent nested relations in mapped records so rendering
// never sees an empty reference.
const Sentinel = "N/A"

// FetchFunc retrieves the raw collection from the upstream API.
type FetchFunc[R any] func(ctx context.Context) ([]R, error)

// MapFunc converts a raw upstream record into the screen's view model.
type MapFunc[R, T any] func(R) T

// Loader owns the working set of one resource collection: it fetches, maps
// and snapshots records, keeps the previous snapshot when a load fails, and
// discards responses from superseded loads so a reload or navigation never
// gets overwritten by a stale reply.
type Loader[R, T any] struct {
	fetch     FetchFunc[R]
	mapRecord MapFunc[R, T]
	logger    *logrus.Logger

	mu         sync.Mutex
	generation uint64
	inflight   int
	loaded     bool
	snapshot   []T
	loadedAt   time.Time
	onAccept   func([]R)
}

func NewLoader[R, T any](fetch FetchFunc[R], mapRecord MapFunc[R, T], logger *logrus.Logger) *Loader[R, T] {
	if logger == nil {
		logger = logrus.New()
	}
	return &Loader[R, T]{
		fetch:     fetch,
		mapRecord: mapRecord,
		logger:    logger,
	}
}

// OnAccept registers a hook that observes the raw records of every load
// that passed the stale-response check, just before the snapshot is
// replaced. Side effects tied to the accepted collection belong here, not
// in the fetch function: a fetch may be superseded while in flight, and
// its effects must be discarded together with its records. The hook runs
// with the loader locked and must not call back into this loader.
func (l *Loader[R, T]) OnAccept(fn func([]R)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onAccept = fn
}

// Loading reports whether a load is in flight, gating the UI's loading
// indicator.
func (l *Loader[R, T]) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inflight > 0
}

// Snapshot returns a copy of the last successfully loaded working set. The
// second return value is false before the first successful load.
func (l *Loader[R, T]) Snapshot() ([]T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]T(nil), l.snapshot...), l.loaded
}

// LoadedAt returns the time of the last successful load.
func (l *Loader[R, T]) LoadedAt() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadedAt
}

// Invalidate forces the next Ensure to refetch and marks any in-flight load
// stale so its response is discarded.
func (l *Loader[R, T]) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.generation++
	l.loaded = false
}

// Ensure returns the current working set, loading it first when no snapshot
// is present.
func (l *Loader[R, T]) Ensure(ctx context.Context) ([]T, error) {
	l.mu.Lock()
	if l.loaded {
		defer l.mu.Unlock()
		return append([]T(nil), l.snapshot...), nil
	}
	l.mu.Unlock()
	return l.Load(ctx)
}

// Load fetches the collection and replaces the working set on success. On
// failure the previous snapshot is retained and returned alongside the error
// so a transient failure never blanks an already-populated screen. There is
// no retry; a failed load requires a caller-initiated reload.
func (l *Loader[R, T]) Load(ctx context.Context) ([]T, error) {
	l.mu.Lock()
	gen := l.generation
	l.inflight++
	l.mu.Unlock()

	records, err := l.fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.inflight--

	if err != nil {
		l.logger.WithError(err).Warn("collection load failed; keeping previous working set")
		return append([]T(nil), l.snapshot...), err
	}

	if gen != l.generation {
		// The screen reloaded or navigated while this request was in
		// flight; its state must not be overwritten by the stale reply.
		l.logger.Debug("discarding stale collection response")
		return append([]T(nil), l.snapshot...), nil
	}

	if l.onAccept != nil {
		l.onAccept(records)
	}
	mapped := make([]T, 0, len(records))
	for _, record := range records {
		mapped = append(mapped, l.mapRecord(record))
	}
	l.snapshot = mapped
	l.loaded = true
	l.loadedAt = time.Now()
	return append([]T(nil), mapped...), nil
}

// RemoveWhere drops rows matching pred from the working set, used to
// reconcile locally after confirmed remote deletions and resolved duplicate
// pairs. It returns how many rows were removed.
func (l *Loader[R, T]) RemoveWhere(pred func(T) bool) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.snapshot[:0:0]
	removed := 0
	for _, row := range l.snapshot {
		if pred(row) {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	l.snapshot = kept
	return removed
}
