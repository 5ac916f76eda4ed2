package busy

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAggregator(mock *clock.Mock) (*Aggregator, *[]bool) {
	agg := New(Options{
		ShowDelay:       50 * time.Millisecond,
		HideDelay:       200 * time.Millisecond,
		WatchdogTimeout: 30 * time.Second,
		Clock:           mock,
		Logger:          zerolog.Nop(),
	})

	emissions := &[]bool{}
	agg.Subscribe(func(visible bool) { *emissions = append(*emissions, visible) })
	return agg, emissions
}

func TestShortBurstNeverShows(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	agg, emissions := newTestAggregator(mock)

	agg.Begin()
	mock.Add(20 * time.Millisecond)
	agg.End()
	mock.Add(time.Second)

	assert.False(t, agg.Visible())
	// Only the initial snapshot on subscribe.
	assert.Equal(t, []bool{false}, *emissions)
}

func TestSlowRequestShowsAfterDelay(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	agg, emissions := newTestAggregator(mock)

	agg.Begin()
	assert.False(t, agg.Visible(), "nothing published before the show delay")

	mock.Add(50 * time.Millisecond)
	assert.True(t, agg.Visible())
	assert.Equal(t, []bool{false, true}, *emissions)
}

func TestHideIsDelayedAndCollapsed(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	agg, emissions := newTestAggregator(mock)

	agg.Begin()
	mock.Add(50 * time.Millisecond)
	require.True(t, agg.Visible())

	agg.End()
	mock.Add(100 * time.Millisecond)
	assert.True(t, agg.Visible(), "still visible inside the hide delay")

	// A follow-up request during the hide delay keeps the flag up with no
	// intermediate hidden emission.
	agg.Begin()
	mock.Add(time.Second)
	assert.True(t, agg.Visible())
	assert.Equal(t, []bool{false, true}, *emissions)

	agg.End()
	mock.Add(200 * time.Millisecond)
	assert.False(t, agg.Visible())
	assert.Equal(t, []bool{false, true, false}, *emissions)
}

func TestOverlappingRequestsCountAsOne(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	agg, emissions := newTestAggregator(mock)

	agg.Begin()
	agg.Begin()
	agg.Begin()
	mock.Add(50 * time.Millisecond)
	require.True(t, agg.Visible())
	assert.Equal(t, int64(3), agg.Active())

	agg.End()
	agg.End()
	mock.Add(time.Second)
	assert.True(t, agg.Visible(), "one request still in flight")

	agg.End()
	mock.Add(200 * time.Millisecond)
	assert.False(t, agg.Visible())
	assert.Equal(t, []bool{false, true, false}, *emissions)
}

func TestEndBelowZeroIsClamped(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	agg, _ := newTestAggregator(mock)

	agg.End()
	assert.Equal(t, int64(0), agg.Active())

	// The counter still works after the clamp.
	agg.Begin()
	assert.Equal(t, int64(1), agg.Active())
}

func TestWatchdogForcesHiddenOnStuckRequests(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	agg, emissions := newTestAggregator(mock)

	agg.Begin()
	mock.Add(50 * time.Millisecond)
	require.True(t, agg.Visible())

	// The request never ends; the watchdog resets everything.
	mock.Add(30 * time.Second)
	assert.False(t, agg.Visible())
	assert.Equal(t, int64(0), agg.Active())
	assert.Equal(t, []bool{false, true, false}, *emissions)
}

func TestWatchdogDoesNotFireAfterCleanHide(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	agg, emissions := newTestAggregator(mock)

	agg.Begin()
	mock.Add(50 * time.Millisecond)
	agg.End()
	mock.Add(200 * time.Millisecond)
	require.False(t, agg.Visible())

	mock.Add(time.Minute)
	assert.Equal(t, []bool{false, true, false}, *emissions)
}

func TestForceHideBypassesDebounce(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	agg, emissions := newTestAggregator(mock)

	agg.Begin()
	agg.Begin()
	mock.Add(50 * time.Millisecond)
	require.True(t, agg.Visible())

	agg.ForceHide()
	assert.False(t, agg.Visible())
	assert.Equal(t, int64(0), agg.Active())
	assert.Equal(t, []bool{false, true, false}, *emissions)

	// Stale timers from before the reset stay dead.
	mock.Add(time.Minute)
	assert.Equal(t, []bool{false, true, false}, *emissions)
}

func TestSubscribeCancelStopsDelivery(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	agg := New(Options{Clock: mock, Logger: zerolog.Nop()})

	var count int
	cancel := agg.Subscribe(func(bool) { count++ })
	require.Equal(t, 1, count)

	cancel()
	agg.Begin()
	mock.Add(time.Second)
	assert.Equal(t, 1, count)
}
