package debug

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"
)

// BlockProfiler measures how long audio blocks take to process relative to
// their real-time deadline. Record is lock-free and allocation-free, so it
// may be called from the audio thread.
type BlockProfiler struct {
	sampleRate atomic.Uint64 // float64 bits
	blocks     atomic.Uint64
	samples    atomic.Uint64
	totalNs    atomic.Int64
	maxNs      atomic.Int64
	lastNs     atomic.Int64
	enabled    atomic.Bool
}

// BlockStats is a snapshot of a BlockProfiler.
type BlockStats struct {
	Blocks  uint64
	Samples uint64
	Total   time.Duration
	Average time.Duration
	Max     time.Duration
	Last    time.Duration
	// Load is processing time as a fraction of the audio duration
	// processed. Above 1 the processor cannot keep up in real time.
	Load float64
}

// NewBlockProfiler creates an enabled profiler for the given sample rate.
func NewBlockProfiler(sampleRate float64) *BlockProfiler {
	p := &BlockProfiler{}
	p.SetSampleRate(sampleRate)
	p.enabled.Store(true)
	return p
}

// SetSampleRate changes the rate used to compute load.
func (p *BlockProfiler) SetSampleRate(sampleRate float64) {
	p.sampleRate.Store(math.Float64bits(sampleRate))
}

// SetEnabled enables or disables recording.
func (p *BlockProfiler) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

// IsEnabled returns whether recording is enabled.
func (p *BlockProfiler) IsEnabled() bool {
	return p.enabled.Load()
}

// Begin returns the start time of a block.
func (p *BlockProfiler) Begin() time.Time {
	if !p.enabled.Load() {
		return time.Time{}
	}
	return time.Now()
}

// End records a block that started at start and covered numSamples frames.
func (p *BlockProfiler) End(start time.Time, numSamples int) {
	if start.IsZero() {
		return
	}
	p.Record(time.Since(start), numSamples)
}

// Record adds one block measurement.
func (p *BlockProfiler) Record(elapsed time.Duration, numSamples int) {
	if !p.enabled.Load() {
		return
	}
	ns := int64(elapsed)
	p.blocks.Add(1)
	if numSamples > 0 {
		p.samples.Add(uint64(numSamples))
	}
	p.totalNs.Add(ns)
	p.lastNs.Store(ns)
	for {
		cur := p.maxNs.Load()
		if ns <= cur || p.maxNs.CompareAndSwap(cur, ns) {
			break
		}
	}
}

// Stats returns a snapshot of the recorded measurements. Fields may be
// momentarily inconsistent with each other while blocks are recorded.
func (p *BlockProfiler) Stats() BlockStats {
	s := BlockStats{
		Blocks:  p.blocks.Load(),
		Samples: p.samples.Load(),
		Total:   time.Duration(p.totalNs.Load()),
		Max:     time.Duration(p.maxNs.Load()),
		Last:    time.Duration(p.lastNs.Load()),
	}
	if s.Blocks > 0 {
		s.Average = s.Total / time.Duration(s.Blocks)
	}
	sr := math.Float64frombits(p.sampleRate.Load())
	if sr > 0 && s.Samples > 0 {
		audio := float64(s.Samples) / sr * float64(time.Second)
		s.Load = float64(s.Total) / audio
	}
	return s
}

// Reset clears all measurements.
func (p *BlockProfiler) Reset() {
	p.blocks.Store(0)
	p.samples.Store(0)
	p.totalNs.Store(0)
	p.maxNs.Store(0)
	p.lastNs.Store(0)
}

// String formats the stats on one line.
func (s BlockStats) String() string {
	return fmt.Sprintf("blocks=%d avg=%v max=%v last=%v load=%.2f%%",
		s.Blocks, s.Average, s.Max, s.Last, s.Load*100)
}
