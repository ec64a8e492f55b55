package arena

import (
	"go.uber.org/zap"

	"github.com/memris/memris/column"
	"github.com/memris/memris/executor"
	"github.com/memris/memris/index"
	"github.com/memris/memris/metrics"
	"github.com/memris/memris/table"
)

// Arena owns one storage region's lifecycle: sized column/index constructors,
// the shared compiled-plan cache, the metrics collectors, and the logging
// hooks for region lifecycle, index upgrades, seqlock escalations, and
// compile errors. It holds
// no entity-specific state itself — concrete tables/columns/indexes are
// built by the repository layer through Arena's sized constructors so every
// component in one region shares one Config.
type Arena struct {
	cfg        Config
	cache      *executor.PlanCache
	collectors *metrics.Collectors
	closed     bool
}

// New opens a region under cfg, logging its creation at Info.
func New(cfg Config) *Arena {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	a := &Arena{
		cfg:        cfg,
		cache:      executor.NewPlanCache(cfg.PlanCacheCapacity),
		collectors: metrics.New(),
	}
	a.cfg.Logger.Info("arena region opened",
		zap.Int("page_capacity", cfg.PageCapacity),
		zap.Int("upgrade_threshold", cfg.UpgradeThreshold),
		zap.Uint32("plan_cache_capacity", cfg.PlanCacheCapacity),
	)
	return a
}

// Close releases the region's plan cache and logs the closure. Tables and
// indexes built through this arena are owned by the caller and outlive
// Close; Close only retires the arena's own shared state.
func (a *Arena) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.cache.Purge()
	a.cfg.Logger.Info("arena region closed")
}

// Config returns the arena's tuning surface.
func (a *Arena) Config() Config { return a.cfg }

// SetLogger replaces the region's logger after construction, e.g. once a
// host has finished wiring its own zap.Logger.
func (a *Arena) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a.cfg.Logger = logger
}

// PlanCache returns the region's shared compiled-plan cache.
func (a *Arena) PlanCache() *executor.PlanCache { return a.cache }

// Metrics returns the region's collectors. Tables built through NewTable and
// executors handed the collectors via executor.SetMetrics feed them; the
// host attaches them to its own Prometheus registry with MustRegister.
func (a *Arena) Metrics() *metrics.Collectors { return a.collectors }

// NewExecutor returns an executor materializing through mat with the
// region's collectors already attached.
func (a *Arena) NewExecutor(mat executor.Materializer) *executor.Executor {
	ex := executor.New(mat)
	ex.SetMetrics(a.collectors)
	return ex
}

// NewI32Column returns an int32-family column sized per cfg.PageCapacity.
func (a *Arena) NewI32Column() *column.Numeric[int32] {
	return column.NewNumeric[int32](a.cfg.PageCapacity)
}

// NewI64Column returns an int64-family column sized per cfg.PageCapacity.
func (a *Arena) NewI64Column() *column.Numeric[int64] {
	return column.NewNumeric[int64](a.cfg.PageCapacity)
}

// NewStringColumn returns a string-family column sized per cfg.PageCapacity.
func (a *Arena) NewStringColumn() *column.StringColumn {
	return column.NewStringColumn(a.cfg.PageCapacity)
}

// NewHashIndex returns a Hash index sized for expectedCardinality.
func NewHashIndex[K comparable](expectedCardinality uint64) *index.Hash[K] {
	return index.NewHash[K](expectedCardinality)
}

// NewTable returns a table tuned per a's Config (seqlock retry cap and
// sparse->dense upgrade threshold) with its seqlock read path feeding the
// region's retry/escalation counters. A free function rather than a method
// because Go methods cannot introduce the key type parameter K.
func NewTable[K comparable](a *Arena) *table.Table[K] {
	c := a.collectors
	return table.New[K](
		table.WithSeqlockRetryCap(a.cfg.SeqlockRetryCap),
		table.WithUpgradeThreshold(a.cfg.UpgradeThreshold),
		table.WithSeqlockHooks(
			func() { c.SeqlockRetriesTotal.Inc() },
			func() {
				c.SeqlockEscalations.Inc()
				a.LogSeqlockEscalation("")
			},
		),
	)
}

// LogIndexUpgrade records a sparse->dense RowIdSet upgrade in both the log
// and the upgrade counter. Callers invoke this from the point where they
// observe rowid.AutoSet.IsDense() flip, since AutoSet itself has no hook.
func (a *Arena) LogIndexUpgrade(indexName string, size int) {
	a.collectors.ObserveIndexUpgrade(indexName)
	a.cfg.Logger.Info("index bucket upgraded to dense representation",
		zap.String("index", indexName), zap.Int("size", size))
}

// LogSeqlockEscalation logs a reader falling back to the shared lock path
// after exhausting its optimistic retry budget (recovered locally,
// logged at Debug since it is not an error condition).
func (a *Arena) LogSeqlockEscalation(table string) {
	a.cfg.Logger.Debug("seqlock reader exhausted retry budget, fell back to shared lock",
		zap.String("table", table))
}

// LogCompileError logs a query-compile failure at Warn before it is wrapped
// and returned to the caller.
func (a *Arena) LogCompileError(method string, err error) {
	a.cfg.Logger.Warn("query compile failed", zap.String("method", method), zap.Error(err))
}
