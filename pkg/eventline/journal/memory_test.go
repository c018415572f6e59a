package journal

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryJournalContract(t *testing.T) {
	exerciseJournal(t, NewMemoryJournal(Config{}))
}

func TestMemoryJournalClosed(t *testing.T) {
	exerciseClosed(t, NewMemoryJournal(Config{}))
}

func TestMemoryJournalEvictsOldest(t *testing.T) {
	j := NewMemoryJournal(Config{MaxRecords: 3})
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	var ids []string
	for i := 0; i < 5; i++ {
		rec := record(fmt.Sprintf("evt.%d", i), "h", base.Add(time.Duration(i)*time.Second))
		ids = append(ids, rec.ID)
		require.NoError(t, j.Record(ctx, rec))
	}

	n, err := j.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// The two oldest were evicted, IDs included.
	_, err = j.Get(ctx, ids[0])
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = j.Get(ctx, ids[1])
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := j.Get(ctx, ids[4])
	require.NoError(t, err)
	assert.Equal(t, "evt.4", got.EventName)
}

func TestMemoryJournalOnRecordCallback(t *testing.T) {
	var seen []*FailureRecord
	j := NewMemoryJournal(Config{OnRecord: func(rec *FailureRecord) {
		seen = append(seen, rec)
	}})

	rec := record("evt.cb", "h", time.Now())
	require.NoError(t, j.Record(context.Background(), rec))

	require.Len(t, seen, 1)
	assert.Same(t, rec, seen[0])
}
