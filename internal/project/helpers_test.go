package project

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/p-blackswan/designstore/internal/store"
)

var testEpoch = time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC)

// sequentialIDs returns id-1, id-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// steppingClock advances one second on every call.
func steppingClock() func() time.Time {
	now := testEpoch
	return func() time.Time {
		t := now
		now = now.Add(time.Second)
		return t
	}
}

func fixedClock() func() time.Time {
	return func() time.Time { return testEpoch }
}

func setupTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	ds, err := store.New(store.Config{BaseDir: t.TempDir()}, zerolog.Nop())
	require.NoError(t, err)
	opts = append([]Option{WithIDSource(sequentialIDs()), WithClock(steppingClock())}, opts...)
	return NewStore(ds, zerolog.Nop(), opts...)
}
