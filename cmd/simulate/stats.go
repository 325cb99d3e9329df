package main

import (
	"fmt"
	"io"
	"slices"
	"sync"
	"time"
)

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeRejected
	outcomeError
)

// operationStats collects latencies and outcomes for one kind of request.
type operationStats struct {
	mu        sync.Mutex
	success   int
	rejected  int
	errors    int
	latencies []time.Duration
}

func (s *operationStats) record(latency time.Duration, o outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch o {
	case outcomeSuccess:
		s.success++
	case outcomeRejected:
		s.rejected++
	default:
		s.errors++
	}
	s.latencies = append(s.latencies, latency)
}

type latencySummary struct {
	Avg, Min, Max, P50, P95 time.Duration
}

func (s *operationStats) summary() latencySummary {
	s.mu.Lock()
	sorted := slices.Clone(s.latencies)
	s.mu.Unlock()

	if len(sorted) == 0 {
		return latencySummary{}
	}
	slices.Sort(sorted)

	var sum time.Duration
	for _, l := range sorted {
		sum += l
	}
	return latencySummary{
		Avg: sum / time.Duration(len(sorted)),
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		P50: percentile(sorted, 50),
		P95: percentile(sorted, 95),
	}
}

// percentile expects sorted input.
func percentile(sorted []time.Duration, p int) time.Duration {
	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func (s *operationStats) report(w io.Writer, name string) {
	s.mu.Lock()
	success, rejected, failed := s.success, s.rejected, s.errors
	s.mu.Unlock()

	total := success + rejected + failed
	if total == 0 {
		return
	}
	pct := func(n int) float64 { return float64(n) / float64(total) * 100 }
	sum := s.summary()

	fmt.Fprintf(w, "%s:\n", name)
	fmt.Fprintf(w, "  Total: %d\n", total)
	fmt.Fprintf(w, "  Success: %d (%.1f%%)\n", success, pct(success))
	if rejected > 0 {
		fmt.Fprintf(w, "  Rejected: %d (%.1f%%)\n", rejected, pct(rejected))
	}
	if failed > 0 {
		fmt.Fprintf(w, "  Errors: %d (%.1f%%)\n", failed, pct(failed))
	}
	fmt.Fprintf(w, "  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n\n",
		sum.Avg.Round(time.Millisecond), sum.Min.Round(time.Millisecond), sum.Max.Round(time.Millisecond),
		sum.P50.Round(time.Millisecond), sum.P95.Round(time.Millisecond))
}
