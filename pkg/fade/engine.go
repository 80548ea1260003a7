// Package fade computes sample-accurate linear gain fades for block-based
// audio processing.
//
// An Engine ramps the gain held in a Store towards the low or high bound
// over a requested number of seconds. Fades are triggered from a control
// thread and rendered by ProcessBlock on the audio thread; the two only
// communicate through atomics.
//
// When no fade is running the engine holds the gain on the bound of the
// current direction, so a zero-length fade is an instant step on the next
// block.
package fade

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/justyntemme/fadervst/pkg/dsp/gain"
)

// MaxFadeSamples caps the length of a single fade.
const MaxFadeSamples = math.MaxInt32

// ErrInvalidSampleRate is returned by Prepare for zero, negative or
// non-finite sample rates.
var ErrInvalidSampleRate = errors.New("fade: invalid sample rate")

// Request is a fade issued by the UI.
type Request struct {
	Seconds   float64
	Direction Direction
}

// Engine renders fades into audio blocks.
type Engine struct {
	store Store

	// Samples left in the running fade. Written by triggers, decremented by
	// ProcessBlock with compare-and-swap so a concurrent trigger wins.
	remaining  atomic.Int64
	sampleRate atomic.Uint64

	// Audio thread only.
	lastGain float32
}

// NewEngine creates an engine driving store. The engine starts settled.
func NewEngine(store Store) *Engine {
	e := &Engine{
		store:    store,
		lastGain: DefaultGainHigh,
	}
	if g := store.Gain(); finite32(g) {
		e.lastGain = g
	}
	return e
}

// Prepare sets the sample rate used by Trigger. Hosts call it before
// playback starts; an invalid rate keeps the previous one.
func (e *Engine) Prepare(sampleRate float64) error {
	if !validRate(sampleRate) {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}
	e.sampleRate.Store(math.Float64bits(sampleRate))
	return nil
}

// SampleRate returns the prepared sample rate, or 0 before Prepare.
func (e *Engine) SampleRate() float64 {
	return math.Float64frombits(e.sampleRate.Load())
}

// Trigger starts a fade of the given length using the prepared sample rate.
func (e *Engine) Trigger(dir Direction, seconds float64) bool {
	return e.TriggerAt(dir, seconds, e.SampleRate())
}

// Request starts the fade described by r.
func (e *Engine) Request(r Request) bool {
	return e.Trigger(r.Direction, r.Seconds)
}

// TriggerAt starts a fade towards the bound selected by dir, lasting
// round(seconds*sampleRate) samples. A fade that is already running is
// replaced and the new one starts from the current gain. No audio is
// touched; the next ProcessBlock picks the fade up.
//
// Invalid requests (negative or non-finite seconds, invalid sample rate,
// unknown direction) are ignored and TriggerAt returns false.
func (e *Engine) TriggerAt(dir Direction, seconds, sampleRate float64) bool {
	if !validRate(sampleRate) || seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return false
	}
	if dir != Down && dir != Up && dir != Toggle {
		return false
	}

	samples := math.Round(seconds * sampleRate)
	if samples > MaxFadeSamples {
		samples = MaxFadeSamples
	}

	if dir == Toggle {
		dir = e.store.Direction().Flip()
	}
	e.store.SetDirection(dir)
	e.remaining.Store(int64(samples))
	return true
}

// Remaining returns the number of samples left in the running fade.
func (e *Engine) Remaining() int64 {
	if n := e.remaining.Load(); n > 0 {
		return n
	}
	return 0
}

// Fading reports whether a fade is in progress.
func (e *Engine) Fading() bool {
	return e.Remaining() > 0
}

// Reset abandons the running fade. The next block settles on the bound of
// the current direction.
func (e *Engine) Reset() {
	e.remaining.Store(0)
}

// ProcessBlock advances the fade by numSamples and applies the resulting
// gain curve in place to every channel. Only the first numSamples of each
// channel are touched; shorter channels shorten the block.
//
// ProcessBlock runs on the audio thread: it never allocates, locks or
// panics. Invalid bounds or gain hold the last valid gain.
func (e *Engine) ProcessBlock(channels [][]float32, numSamples int) {
	n := blockLength(channels, numSamples)
	if n <= 0 {
		return
	}

	current := e.store.Gain()
	low, high, ok := e.bounds()
	if !ok || !finite32(current) {
		if !finite32(current) {
			e.store.SetGain(e.lastGain)
		}
		applyConstant(channels, n, e.lastGain)
		return
	}

	target := high
	if e.store.Direction() == Down {
		target = low
	}

	remaining := e.remaining.Load()
	if remaining <= 0 || low == high {
		if remaining != 0 {
			e.remaining.CompareAndSwap(remaining, 0)
		}
		applyConstant(channels, n, target)
		e.commit(target)
		return
	}

	steps := n
	if remaining < int64(steps) {
		steps = int(remaining)
	}

	final := target
	if int64(steps) < remaining {
		final = current + (target-current)*(float32(steps)/float32(remaining))
		final = clampToward(final, current, target)
	}

	for _, ch := range channels {
		gain.Ramp(ch[:steps], current, final)
		if steps < n {
			gain.ApplyBuffer(ch[steps:n], final)
		}
	}

	e.remaining.CompareAndSwap(remaining, remaining-int64(steps))
	e.commit(final)
}

// bounds returns the normalized gain range.
func (e *Engine) bounds() (low, high float32, ok bool) {
	low, high = e.store.GainLow(), e.store.GainHigh()
	if !finite32(low) || !finite32(high) {
		return 0, 0, false
	}
	if low > high {
		low, high = high, low
	}
	return low, high, true
}

func (e *Engine) commit(g float32) {
	e.lastGain = g
	e.store.SetGain(g)
}

func applyConstant(channels [][]float32, n int, g float32) {
	for _, ch := range channels {
		gain.ApplyBuffer(ch[:n], g)
	}
}

// blockLength is numSamples limited to the shortest channel.
func blockLength(channels [][]float32, numSamples int) int {
	n := numSamples
	for _, ch := range channels {
		if len(ch) < n {
			n = len(ch)
		}
	}
	return n
}

// clampToward keeps v on the segment between from and to.
func clampToward(v, from, to float32) float32 {
	if math.IsNaN(float64(v)) {
		return from
	}
	lo, hi := from, to
	if lo > hi {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func validRate(sr float64) bool {
	return sr > 0 && !math.IsInf(sr, 0)
}

func finite32(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
