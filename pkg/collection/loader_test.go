package collection

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type rawRow struct {
	ID   string
	Site string
}

type viewRow struct {
	ID   string
	Site string
}

func mapRow(r rawRow) viewRow {
	site := r.Site
	if site == "" {
		site = Sentinel
	}
	return viewRow{ID: r.ID, Site: site}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestLoader_LoadMapsAndDefaultsRelations(t *testing.T) {
	fetch := func(ctx context.Context) ([]rawRow, error) {
		return []rawRow{{ID: "1", Site: "Nyamagabe"}, {ID: "2"}}, nil
	}
	loader := NewLoader(fetch, mapRow, quietLogger())

	rows, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Nyamagabe", rows[0].Site)
	require.Equal(t, Sentinel, rows[1].Site)
}

func TestLoader_IdempotentReload(t *testing.T) {
	fetch := func(ctx context.Context) ([]rawRow, error) {
		return []rawRow{{ID: "b"}, {ID: "a"}, {ID: "c"}}, nil
	}
	loader := NewLoader(fetch, mapRow, quietLogger())

	first, err := loader.Load(context.Background())
	require.NoError(t, err)
	second, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, second, "reloading unchanged data must preserve content and ordering")
}

func TestLoader_FailureRetainsPreviousSnapshot(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context) ([]rawRow, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("upstream unreachable")
		}
		return []rawRow{{ID: "1"}}, nil
	}
	loader := NewLoader(fetch, mapRow, quietLogger())

	_, err := loader.Load(context.Background())
	require.NoError(t, err)

	rows, err := loader.Load(context.Background())
	require.Error(t, err)
	require.Len(t, rows, 1, "transient failure must not blank the working set")

	snapshot, ok := loader.Snapshot()
	require.True(t, ok)
	require.Len(t, snapshot, 1)
}

func TestLoader_StaleResponseIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	results := make(chan []rawRow, 2)
	fetch := func(ctx context.Context) ([]rawRow, error) {
		<-release
		return <-results, nil
	}
	loader := NewLoader(fetch, mapRow, quietLogger())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = loader.Load(context.Background())
	}()

	// The screen navigates away before the response arrives.
	loader.Invalidate()
	results <- []rawRow{{ID: "stale"}}
	close(release)
	<-done

	_, ok := loader.Snapshot()
	require.False(t, ok, "a superseded load must not populate the working set")
}

func TestLoader_EnsureLoadsOnce(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context) ([]rawRow, error) {
		calls++
		return []rawRow{{ID: "1"}}, nil
	}
	loader := NewLoader(fetch, mapRow, quietLogger())

	_, err := loader.Ensure(context.Background())
	require.NoError(t, err)
	_, err = loader.Ensure(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestLoader_RemoveWhere(t *testing.T) {
	fetch := func(ctx context.Context) ([]rawRow, error) {
		return []rawRow{{ID: "1"}, {ID: "2"}, {ID: "3"}}, nil
	}
	loader := NewLoader(fetch, mapRow, quietLogger())
	_, err := loader.Load(context.Background())
	require.NoError(t, err)

	removed := loader.RemoveWhere(func(r viewRow) bool { return r.ID == "2" })
	require.Equal(t, 1, removed)

	rows, _ := loader.Snapshot()
	require.Len(t, rows, 2)
	require.Equal(t, "1", rows[0].ID)
	require.Equal(t, "3", rows[1].ID)
}
