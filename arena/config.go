// Package arena implements the engine's region lifecycle and its
// tuning surface, Config — page capacity, the sparse→dense RowIdSet upgrade
// threshold, the sequence-lock retry cap, composite-index tie-break policy,
// and the compiled-plan cache capacity.
package arena

import (
	"os"

	"github.com/c2h5oh/datasize"
	"github.com/pbnjay/memory"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

// TieBreak selects how the executor resolves overlapping composite-index
// prefixes when more than one shape matches a condition group.
type TieBreak uint8

const (
	// TieBreakLongestPrefix prefers the shape consuming the most
	// conditions, narrowest key first on ties (the default, and the only
	// policy the executor currently implements).
	TieBreakLongestPrefix TieBreak = iota
)

// Config is the engine's tuning surface.
type Config struct {
	// PageCapacity is the fixed cell count per column page.
	PageCapacity int `toml:"page_capacity"`
	// UpgradeThreshold is the sparse->dense RowIdSet upgrade size.
	UpgradeThreshold int `toml:"upgrade_threshold"`
	// SeqlockRetryCap bounds a reader's optimistic retry loop before
	// falling back to the shared lock path.
	SeqlockRetryCap int `toml:"seqlock_retry_cap"`
	// CompositeTieBreak selects the composite-index selection policy.
	CompositeTieBreak TieBreak `toml:"-"`
	// PlanCacheCapacity bounds executor.PlanCache's entry count.
	PlanCacheCapacity uint32 `toml:"plan_cache_capacity"`
	// MaxMemory is a soft memory budget, defaulting to a quarter of total
	// system memory. Nothing reads it: it neither pre-sizes storage nor
	// enforces a ceiling.
	MaxMemory datasize.ByteSize `toml:"max_memory"`

	// Logger receives region lifecycle, index-upgrade, seqlock-escalation,
	// and query-compile-error events. Defaults to a no-op logger.
	Logger *zap.Logger `toml:"-"`
}

// DefaultPageCapacity mirrors column.DefaultPageCapacity so arena can size
// columns without importing column for just a constant.
const DefaultPageCapacity = 4096

// DefaultUpgradeThreshold mirrors rowid.DefaultUpgradeThreshold.
const DefaultUpgradeThreshold = 4096

// DefaultSeqlockRetryCap mirrors table's internal retry bound.
const DefaultSeqlockRetryCap = 16

// DefaultConfig returns host-sized defaults: the sparse->dense upgrade
// threshold and the page capacity scale with total system memory, read
// via github.com/pbnjay/memory since Go has no portable stdlib way to query
// total physical memory.
func DefaultConfig() Config {
	total := memory.TotalMemory()

	upgrade := DefaultUpgradeThreshold
	pageCap := DefaultPageCapacity
	switch {
	case total >= 64<<30: // >= 64GiB: larger hosts can afford bigger pages and later upgrades
		upgrade = 16384
		pageCap = 16384
	case total >= 16<<30: // >= 16GiB
		upgrade = 8192
		pageCap = 8192
	}

	return Config{
		PageCapacity:      pageCap,
		UpgradeThreshold:  upgrade,
		SeqlockRetryCap:   DefaultSeqlockRetryCap,
		CompositeTieBreak: TieBreakLongestPrefix,
		PlanCacheCapacity: 4096,
		MaxMemory:         datasize.ByteSize(total / 4),
		Logger:            zap.NewNop(),
	}
}

// LoadConfig reads a TOML config file at path, starting from DefaultConfig()
// so unset fields keep their auto-sized defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return cfg, nil
}
