// Package usage maintains concurrency-safe running totals of requests,
// tokens, cost, and latency across the process lifetime. Totals only grow:
// recording is append-or-increment, there is no eviction or reset short of
// a process restart. The latency slice in particular is unbounded; this is
// a known memory characteristic of the aggregate, acceptable at this scope.
package usage

import (
	"sync"
	"time"
)

// ModelStats holds the per-model breakdown within an aggregate.
type ModelStats struct {
	Requests int     `json:"requests"`
	Tokens   int     `json:"tokens"`
	Cost     float64 `json:"cost"`
}

// Aggregate is a point-in-time copy of the aggregator's totals.
type Aggregate struct {
	TotalRequests int                   `json:"totalRequests"`
	TotalTokens   int                   `json:"totalTokens"`
	TotalCost     float64               `json:"totalCost"`
	PerModel      map[string]ModelStats `json:"modelBreakdown"`
	AvgLatency    time.Duration         `json:"-"`
}

// Aggregator accumulates usage across all requests handled on one side of
// the relay. All methods are safe for concurrent use.
type Aggregator struct {
	mu            sync.Mutex
	totalRequests int
	totalTokens   int
	totalCost     float64
	perModel      map[string]*ModelStats
	latencies     []time.Duration
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		perModel: make(map[string]*ModelStats),
	}
}

// Record atomically folds one completed call into the totals: increments
// the request count, token count, and cost, appends the latency, and
// upserts the per-model bucket.
func (a *Aggregator) Record(model string, totalTokens int, cost float64, latency time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalRequests++
	a.totalTokens += totalTokens
	a.totalCost += cost
	a.latencies = append(a.latencies, latency)

	stats, ok := a.perModel[model]
	if !ok {
		stats = &ModelStats{}
		a.perModel[model] = stats
	}
	stats.Requests++
	stats.Tokens += totalTokens
	stats.Cost += cost
}

// Snapshot returns a consistent point-in-time copy of the totals.
// AvgLatency is the arithmetic mean of all recorded latencies, or 0 if
// nothing has been recorded.
func (a *Aggregator) Snapshot() Aggregate {
	a.mu.Lock()
	defer a.mu.Unlock()

	perModel := make(map[string]ModelStats, len(a.perModel))
	for model, stats := range a.perModel {
		perModel[model] = *stats
	}

	var avg time.Duration
	if len(a.latencies) > 0 {
		var sum time.Duration
		for _, l := range a.latencies {
			sum += l
		}
		avg = sum / time.Duration(len(a.latencies))
	}

	return Aggregate{
		TotalRequests: a.totalRequests,
		TotalTokens:   a.totalTokens,
		TotalCost:     a.totalCost,
		PerModel:      perModel,
		AvgLatency:    avg,
	}
}
