package arena_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memris/memris/arena"
)

func TestDefaultConfigIsUsable(t *testing.T) {
	cfg := arena.DefaultConfig()
	assert.Greater(t, cfg.PageCapacity, 0)
	assert.Greater(t, cfg.UpgradeThreshold, 0)
	assert.Equal(t, arena.TieBreakLongestPrefix, cfg.CompositeTieBreak)
	require.NotNil(t, cfg.Logger)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeTempTOML(t, `
page_capacity = 2048
upgrade_threshold = 1024
plan_cache_capacity = 512
max_memory = "256MiB"
`)

	cfg, err := arena.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2048, cfg.PageCapacity)
	assert.Equal(t, 1024, cfg.UpgradeThreshold)
	assert.EqualValues(t, 512, cfg.PlanCacheCapacity)
}

func TestLoadConfigMissingFileFails(t *testing.T) {
	_, err := arena.LoadConfig("/nonexistent/path/memris.toml")
	assert.Error(t, err)
}

func TestNewTableHonorsConfig(t *testing.T) {
	cfg := arena.DefaultConfig()
	cfg.SeqlockRetryCap = 4
	a := arena.New(cfg)
	defer a.Close()

	tb := arena.NewTable[int64](a)
	ref, err := tb.Insert(1, func(uint64) {})
	require.NoError(t, err)
	_, ok := tb.LookupByID(1)
	assert.True(t, ok)
	tb.ReadWithSeqlock(ref, func() {})
}

// A reader that exhausts its retry budget against a writer parked inside a
// write section must bump the region's retry and escalation counters on its
// way to the shared-lock fallback.
func TestNewTableFeedsSeqlockCountersOnEscalation(t *testing.T) {
	cfg := arena.DefaultConfig()
	cfg.SeqlockRetryCap = 2
	a := arena.New(cfg)
	defer a.Close()

	tb := arena.NewTable[int64](a)
	ref, err := tb.Insert(1, func(uint64) {})
	require.NoError(t, err)

	started := make(chan struct{})
	hold := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		tb.UpdateInPlace(ref, func(uint64) {
			close(started)
			<-hold
		})
		close(writerDone)
	}()
	<-started

	readerDone := make(chan struct{})
	go func() {
		tb.ReadWithSeqlock(ref, func() {})
		close(readerDone)
	}()

	// The reader burns its retry budget against the parked writer, then
	// blocks on the fallback lock until the writer commits.
	c := a.Metrics()
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(c.SeqlockEscalations) == 1
	}, 5*time.Second, time.Millisecond)
	close(hold)
	<-writerDone
	<-readerDone

	assert.GreaterOrEqual(t, testutil.ToFloat64(c.SeqlockRetriesTotal), float64(2))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.SeqlockEscalations))
}

func TestArenaLifecycleClosesOnce(t *testing.T) {
	a := arena.New(arena.DefaultConfig())
	require.NotNil(t, a.PlanCache())

	col := a.NewI32Column()
	require.NotNil(t, col)

	a.Close()
	a.Close() // idempotent, must not panic
}

func writeTempTOML(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memris.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}
