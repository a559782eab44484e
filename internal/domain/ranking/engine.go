// Package ranking maintains the append-only competitor ledger, the
// derived country totals, and a time-windowed, single-flighted ranking
// cache.
package ranking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/protocol"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// cacheEntry is the time-windowed rendered ranking payload.
type cacheEntry struct {
	timestamp time.Time
	payload   string
}

// Engine owns final_ranking, the derived country_scores, and the
// RankingCache. It exposes two independent lock domains, per spec's
// four-lock-domain model: mu guards the ledger and the cache; promMu
// guards single-flight coordination. The two are never nested.
type Engine struct {
	mu      sync.Mutex
	records []model.Record
	cache   cacheEntry

	promMu  sync.Mutex
	pending bool
	waiters []chan string

	deltaT time.Duration
	logger logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithDeltaT sets the cache validity window.
func WithDeltaT(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.deltaT = d
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates a ranking Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		deltaT: time.Second,
		logger: logger.Get().Named("ranking"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Append adds one competitor record to the ledger. Called only by
// aggregation workers holding no other lock.
func (e *Engine) Append(rec model.Record) {
	e.mu.Lock()
	e.records = append(e.records, rec)
	e.mu.Unlock()
}

// Snapshot returns a copy of the ledger in insertion order, used by the
// finalizer.
func (e *Engine) Snapshot() []model.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Record, len(e.records))
	copy(out, e.records)
	return out
}

// RequestRanking returns the current ranking payload, either from cache
// or by coalescing into (or starting) a single in-flight recompute.
func (e *Engine) RequestRanking(ctx context.Context) string {
	now := time.Now()

	e.mu.Lock()
	if now.Sub(e.cache.timestamp) < e.deltaT {
		payload := e.cache.payload
		e.mu.Unlock()
		metrics.RecordRankingCacheHit()
		return payload
	}
	e.mu.Unlock()

	metrics.RecordRankingCacheMiss()

	wait, startRecompute := e.joinOrStartRecompute()
	if startRecompute {
		e.recompute(ctx)
	}
	select {
	case payload := <-wait:
		return payload
	case <-ctx.Done():
		return ""
	}
}

// joinOrStartRecompute registers the caller as a waiter. If no recompute
// is currently in flight, the caller becomes responsible for running
// one and returns startRecompute=true.
func (e *Engine) joinOrStartRecompute() (<-chan string, bool) {
	e.promMu.Lock()
	defer e.promMu.Unlock()

	ch := make(chan string, 1)
	e.waiters = append(e.waiters, ch)

	if e.pending {
		metrics.RecordRankingWaiterCoalesced()
		return ch, false
	}
	e.pending = true
	return ch, true
}

// recompute performs the single-flighted ranking recompute described in
// the ranking engine's design: lock, snapshot totals, unlock, sort and
// render unlocked, lock again to store the cache entry, unlock, then
// drain every waiter under the promise-list lock.
func (e *Engine) recompute(ctx context.Context) {
	start := time.Now()
	defer func() {
		metrics.RecordRankingRecomputeLatency(float64(time.Since(start).Milliseconds()))
	}()

	totals := e.sumByCountry()

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Score > totals[j].Score
	})

	payload := protocol.RenderRanking(totals)
	now := time.Now()

	e.mu.Lock()
	e.cache = cacheEntry{timestamp: now, payload: payload}
	e.mu.Unlock()

	e.drainWaiters(payload)

	e.logger.Debug(ctx, "ranking recompute complete", logger.Int("countries", len(totals)))
}

// sumByCountry recomputes country_scores from final_ranking under the
// ranking lock and returns it as a slice, per §4.5 step 1.
func (e *Engine) sumByCountry() []model.CountryTotal {
	e.mu.Lock()
	defer e.mu.Unlock()

	sums := make(map[int32]int64, 16)
	order := make([]int32, 0, 16)
	for _, rec := range e.records {
		if _, ok := sums[rec.CountryID]; !ok {
			order = append(order, rec.CountryID)
		}
		sums[rec.CountryID] += int64(rec.Score)
	}

	totals := make([]model.CountryTotal, 0, len(order))
	for _, id := range order {
		totals = append(totals, model.CountryTotal{CountryID: id, Score: sums[id]})
	}
	return totals
}

// drainWaiters resolves every pending waiter with payload and clears
// single-flight state, under the promise list lock only.
func (e *Engine) drainWaiters(payload string) {
	e.promMu.Lock()
	waiters := e.waiters
	e.waiters = nil
	e.pending = false
	e.promMu.Unlock()

	for _, ch := range waiters {
		ch <- payload
		close(ch)
	}
}
