package report

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairway-data/swing.report/internal/analysis"
	"github.com/fairway-data/swing.report/internal/testutil"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReport(t *testing.T) *analysis.Report {
	t.Helper()
	rep, err := analysis.New().Analyze(testutil.SyntheticSwing(40, 30), analysis.Options{})
	require.NoError(t, err)
	return rep
}

func TestInsertGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	rep := sampleReport(t)

	rec := NewRecord(rep, "testdata/swing.json")
	require.NoError(t, s.Insert(rec))
	assert.NotEmpty(t, rec.ReportID, "insert assigns an ID")
	assert.NotZero(t, rec.CreatedAt)

	got, err := s.Get(rec.ReportID)
	require.NoError(t, err)
	assert.Equal(t, rec.ReportID, got.ReportID)
	assert.Equal(t, "testdata/swing.json", got.Source)
	assert.Equal(t, rep.Scores.Aggregate, got.Aggregate)
	assert.Equal(t, rep.SkillLevel, got.SkillLevel)
	if diff := cmp.Diff(rep, got.Report); diff != "" {
		t.Errorf("report body mismatch (-want +got):\n%s", diff)
	}
}

func TestListOrdering(t *testing.T) {
	s := openTestStore(t)
	rep := sampleReport(t)

	older := NewRecord(rep, "older")
	older.CreatedAt = 100
	newer := NewRecord(rep, "newer")
	newer.CreatedAt = 200
	require.NoError(t, s.Insert(older))
	require.NoError(t, s.Insert(newer))

	recs, err := s.List()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "newer", recs[0].Source)
	assert.Equal(t, "older", recs[1].Source)
	// Summaries carry no body.
	assert.Nil(t, recs[0].Report)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	rec := NewRecord(sampleReport(t), "")
	require.NoError(t, s.Insert(rec))

	require.NoError(t, s.Delete(rec.ReportID))
	_, err := s.Get(rec.ReportID)
	assert.True(t, errors.Is(err, ErrNotFound))

	err = s.Delete(rec.ReportID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInsertWithoutBody(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.Insert(&Record{}))
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reports.db")

	s, err := Open(path)
	require.NoError(t, err)
	rec := NewRecord(sampleReport(t), "persisted")
	require.NoError(t, s.Insert(rec))
	require.NoError(t, s.Close())

	// Re-running migrations on an up-to-date database is a no-op.
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Get(rec.ReportID)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Source)
}

func TestIsSQLiteBusy(t *testing.T) {
	assert.True(t, isSQLiteBusy(errors.New("database is locked (5) (SQLITE_BUSY)")))
	assert.True(t, isSQLiteBusy(errors.New("SQLITE_BUSY")))
	assert.False(t, isSQLiteBusy(errors.New("no such table")))
	assert.False(t, isSQLiteBusy(nil))
}

func TestRetryOnBusy(t *testing.T) {
	t.Run("succeeds eventually", func(t *testing.T) {
		calls := 0
		err := retryOnBusy(func() error {
			calls++
			if calls < 3 {
				return errors.New("database is locked (5) (SQLITE_BUSY)")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("non-busy error fails immediately", func(t *testing.T) {
		calls := 0
		err := retryOnBusy(func() error {
			calls++
			return errors.New("no such table")
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := retryOnBusy(func() error {
			calls++
			return errors.New("SQLITE_BUSY")
		})
		assert.Error(t, err)
		assert.Equal(t, maxBusyRetries, calls)
	})
}
