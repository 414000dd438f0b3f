package usage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T, now time.Time) *Tracker {
	t.Helper()
	tr, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { tr.Close() })
	tr.now = func() time.Time { return now }
	return tr
}

func TestTrackAndSummary(t *testing.T) {
	tr := newTestTracker(t, time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local))

	require.NoError(t, tr.Track("correct", "m", 1000, 200))
	require.NoError(t, tr.Track("correct", "m", 500, 100))
	require.NoError(t, tr.Track("translate", "m", 10, 10))

	s, err := tr.Current()
	require.NoError(t, err)
	assert.Equal(t, "2026-03", s.Month)
	assert.EqualValues(t, 3, s.Requests)
	assert.EqualValues(t, 1510, s.InputTokens)
	assert.EqualValues(t, 310, s.OutputTokens)
	assert.EqualValues(t, 1820, s.TotalTokens)
	assert.InDelta(t, EstimateCost(1510, 310), s.EstimatedCost, 1e-12)

	counts, err := tr.ByAction("2026-03")
	require.NoError(t, err)
	assert.Equal(t, []ActionCount{{"correct", 2}, {"translate", 1}}, counts)
}

func TestMonthsAreSeparate(t *testing.T) {
	now := time.Date(2026, 1, 31, 23, 0, 0, 0, time.Local)
	tr := newTestTracker(t, now)
	require.NoError(t, tr.Track("correct", "m", 1, 1))

	tr.now = func() time.Time { return now.AddDate(0, 0, 2) }
	require.NoError(t, tr.Track("format", "m", 1, 1))

	s, err := tr.Current()
	require.NoError(t, err)
	assert.Equal(t, "2026-02", s.Month)
	assert.EqualValues(t, 1, s.Requests)

	months, err := tr.Months()
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-02", "2026-01"}, months)

	require.NoError(t, tr.Reset("2026-01"))
	old, err := tr.Summary("2026-01")
	require.NoError(t, err)
	assert.Zero(t, old.Requests)
	assert.Zero(t, old.EstimatedCost)
}

func TestEstimateCost(t *testing.T) {
	assert.InDelta(t, 0.25, EstimateCost(1_000_000, 0), 1e-12)
	assert.InDelta(t, 1.25, EstimateCost(0, 1_000_000), 1e-12)
	assert.InDelta(t, 1.5, EstimateCost(1_000_000, 1_000_000), 1e-12)
}

func TestFormatDisplay(t *testing.T) {
	tests := []struct {
		name string
		s    Summary
		want string
	}{
		{"empty", Summary{}, "0 req • <$0.01"},
		{"tiny", Summary{Requests: 3, EstimatedCost: 0.004}, "3 req • <$0.01"},
		{"rounded", Summary{Requests: 150, EstimatedCost: 2.499}, "150 req • ~$2.50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDisplay(tt.s))
		})
	}
}
