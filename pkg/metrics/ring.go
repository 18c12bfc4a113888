package metrics

import (
	"sort"
	"sync/atomic"
	"time"
)

// durationRing is a fixed-capacity circular buffer of duration samples used
// to approximate high percentiles without retaining full history. Writers
// claim a slot with an atomic cursor increment and store into it; readers
// copy whatever the slots currently hold and sort the copy. A slot may be
// overwritten while a snapshot is in progress, which at worst replaces one
// recent sample with a newer one.
type durationRing struct {
	slots  []atomic.Int64
	cursor atomic.Uint64
}

func newDurationRing(capacity int) *durationRing {
	if capacity < 1 {
		capacity = 1
	}
	return &durationRing{slots: make([]atomic.Int64, capacity)}
}

// Record stores a sample, overwriting the oldest once the ring is full.
func (r *durationRing) Record(d time.Duration) {
	i := r.cursor.Add(1) - 1
	r.slots[i%uint64(len(r.slots))].Store(int64(d))
}

// Percentile returns the approximate p-quantile (0 < p <= 1) of the samples
// currently held, or zero when nothing has been recorded.
func (r *durationRing) Percentile(p float64) time.Duration {
	samples := r.collect()
	if len(samples) == 0 {
		return 0
	}
	idx := int(p*float64(len(samples))) - 1
	if idx < 0 {
		idx = 0
	}
	return time.Duration(samples[idx])
}

// Percentiles returns multiple quantiles from one sorted copy, cheaper than
// calling Percentile repeatedly.
func (r *durationRing) Percentiles(ps ...float64) []time.Duration {
	out := make([]time.Duration, len(ps))
	samples := r.collect()
	if len(samples) == 0 {
		return out
	}
	for i, p := range ps {
		idx := int(p*float64(len(samples))) - 1
		if idx < 0 {
			idx = 0
		}
		out[i] = time.Duration(samples[idx])
	}
	return out
}

// collect copies the populated slots and sorts them ascending.
func (r *durationRing) collect() []int64 {
	n := r.cursor.Load()
	filled := len(r.slots)
	if n < uint64(filled) {
		filled = int(n)
	}
	if filled == 0 {
		return nil
	}
	samples := make([]int64, 0, filled)
	for i := 0; i < filled; i++ {
		samples = append(samples, r.slots[i].Load())
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return samples
}
