package reputation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketintel/internal/core"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordScan_TotalScansNonDecreasingConsensusHitsBounded(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.RecordScan("wire-x", true))
	require.NoError(t, s.RecordScan("wire-x", false))
	require.NoError(t, s.RecordScan("wire-x", true))

	p, ok := s.GetProfile("wire-x")
	require.True(t, ok)
	assert.Equal(t, int64(3), p.TotalScans)
	assert.Equal(t, int64(2), p.ConsensusHits)
	assert.LessOrEqual(t, p.ConsensusHits, p.TotalScans)
}

func TestGetProfile_UnknownSourceNotFound(t *testing.T) {
	s := newTestStore(t)
	_, ok := s.GetProfile("never-seen")
	assert.False(t, ok)
}

func TestTrustedWeight_SubstringMatch(t *testing.T) {
	s := newTestStore(t)
	w, ok := s.TrustedWeight("Reuters Markets Desk")
	require.True(t, ok)
	assert.Equal(t, 0.95, w)

	_, ok = s.TrustedWeight("some small blog")
	assert.False(t, ok)
}

func TestStoreEventAndSimilarEvents_CaseInsensitiveSubstring(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.StoreEvent("Apple Earnings Beat", core.HardData{Percentages: []string{"4%"}}, "bullish"))
	require.NoError(t, s.StoreEvent("Oil Supply Shock", core.HardData{Monetary: []string{"$4M"}}, "bearish"))

	matches, err := s.SimilarEvents("apple", 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Apple Earnings Beat", matches[0].Query)
	assert.Equal(t, []string{"4%"}, matches[0].HardData.Percentages)
}

func TestSimilarEvents_RespectsLimit(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.StoreEvent("copper price surge", core.HardData{}, "neutral"))
	}
	matches, err := s.SimilarEvents("copper", 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestUpsertProfile_Overwrites(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertProfile(core.SourceProfile{Source: "wire-y", TotalScans: 10, ConsensusHits: 4}))
	p, ok := s.GetProfile("wire-y")
	require.True(t, ok)
	assert.Equal(t, int64(10), p.TotalScans)
	assert.Equal(t, int64(4), p.ConsensusHits)
}
