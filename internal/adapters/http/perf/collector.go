// Package perf keeps a bounded in-memory window of timing samples for
// the three places this portal spends time: handling requests, hitting
// sqlite, and calling the activities backend.
package perf

import (
	"sort"
	"sync"
	"time"
)

// DefaultWindow is the default number of samples kept.
const DefaultWindow = 8192

// Origin says where a sample was measured.
type Origin uint8

const (
	OriginRequest Origin = iota
	OriginQuery
	OriginUpstream
)

// Sample is one timed operation.
type Sample struct {
	Origin Origin
	Label  string // route, query verb, or backend endpoint
	Status int    // HTTP status; 0 where none applies
	Millis float64
	At     time.Time
}

// Collector is a fixed-size window of samples. Observing is cheap and
// never blocks on aggregation; when the window is full the oldest
// sample is dropped. Aggregation happens only in Report.
type Collector struct {
	mu      sync.Mutex
	window  []Sample
	next    int
	seen    int64
}

// NewCollector creates a collector keeping the last size samples.
// POST: returns a ready collector; size <= 0 falls back to DefaultWindow
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultWindow
	}
	return &Collector{window: make([]Sample, size)}
}

// Observe records one sample, dropping the oldest when the window is full.
func (c *Collector) Observe(s Sample) {
	c.mu.Lock()
	c.window[c.next] = s
	c.next = (c.next + 1) % len(c.window)
	c.seen++
	c.mu.Unlock()
}

// SeenTotal returns how many samples were ever observed, including
// samples already dropped from the window.
func (c *Collector) SeenTotal() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen
}

// LabelStat aggregates the samples sharing one label.
type LabelStat struct {
	Label       string
	Count       int
	TotalMillis float64
	WorstMillis float64
}

// AvgMillis returns the mean duration for the label.
func (s LabelStat) AvgMillis() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.TotalMillis / float64(s.Count)
}

// Report is the aggregated view of the current window.
type Report struct {
	Observed int64 // lifetime sample count

	RequestP50 float64
	RequestP95 float64
	RequestP99 float64

	// Ranked by total time spent, worst first: where the time goes,
	// not just what is occasionally slow.
	Routes   []LabelStat
	Queries  []LabelStat
	Upstream []LabelStat
}

// Report aggregates the samples observed since the given time.
// Sorting makes this the expensive path; call it from the admin screen,
// not from request handling.
// POST: each ranked list holds at most topN entries
func (c *Collector) Report(since time.Time, topN int) Report {
	c.mu.Lock()
	window := make([]Sample, len(c.window))
	copy(window, c.window)
	seen := c.seen
	c.mu.Unlock()

	byOrigin := map[Origin]map[string]*LabelStat{
		OriginRequest:  {},
		OriginQuery:    {},
		OriginUpstream: {},
	}
	var requestMillis []float64

	for _, s := range window {
		if s.At.IsZero() || s.At.Before(since) {
			continue
		}
		stats := byOrigin[s.Origin]
		if stats == nil {
			continue
		}
		stat, ok := stats[s.Label]
		if !ok {
			stat = &LabelStat{Label: s.Label}
			stats[s.Label] = stat
		}
		stat.Count++
		stat.TotalMillis += s.Millis
		if s.Millis > stat.WorstMillis {
			stat.WorstMillis = s.Millis
		}
		if s.Origin == OriginRequest {
			requestMillis = append(requestMillis, s.Millis)
		}
	}

	report := Report{
		Observed: seen,
		Routes:   rankByTotal(byOrigin[OriginRequest], topN),
		Queries:  rankByTotal(byOrigin[OriginQuery], topN),
		Upstream: rankByTotal(byOrigin[OriginUpstream], topN),
	}

	if len(requestMillis) > 0 {
		sort.Float64s(requestMillis)
		report.RequestP50 = quantile(requestMillis, 0.50)
		report.RequestP95 = quantile(requestMillis, 0.95)
		report.RequestP99 = quantile(requestMillis, 0.99)
	}

	return report
}

// quantile returns the q-th quantile of a sorted slice using
// nearest-rank interpolation.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[lo+1]-sorted[lo])*frac
}

func rankByTotal(stats map[string]*LabelStat, topN int) []LabelStat {
	ranked := make([]LabelStat, 0, len(stats))
	for _, s := range stats {
		ranked = append(ranked, *s)
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].TotalMillis > ranked[j].TotalMillis
	})
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
