package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteJournal(t *testing.T) *SQLiteJournal {
	t.Helper()
	j, err := NewSQLiteJournal(filepath.Join(t.TempDir(), "failures.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestSQLiteJournalContract(t *testing.T) {
	exerciseJournal(t, newTestSQLiteJournal(t))
}

func TestSQLiteJournalClosed(t *testing.T) {
	exerciseClosed(t, newTestSQLiteJournal(t))
}

func TestSQLiteJournalInMemory(t *testing.T) {
	j, err := NewSQLiteJournal(":memory:")
	require.NoError(t, err)
	defer j.Close()

	exerciseJournal(t, j)
}

func TestSQLiteJournalPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failures.db")
	ctx := context.Background()

	j, err := NewSQLiteJournal(path)
	require.NoError(t, err)
	rec := record("order.created", "billingHandler", time.Now())
	require.NoError(t, j.Record(ctx, rec))
	require.NoError(t, j.Close())

	reopened, err := NewSQLiteJournal(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "order.created", got.EventName)
	assert.True(t, got.OccurredAt.Equal(rec.OccurredAt))
}

func TestSQLiteJournalCloseIdempotent(t *testing.T) {
	j, err := NewSQLiteJournal(":memory:")
	require.NoError(t, err)

	require.NoError(t, j.Close())
	require.NoError(t, j.Close())
}
