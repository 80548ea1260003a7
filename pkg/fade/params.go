package fade

import (
	"math"
	"sync/atomic"
)

// Default parameter values for a freshly created plugin instance.
const (
	DefaultGainLow  float32 = 0.0
	DefaultGainHigh float32 = 1.0
)

// Store is the parameter state the engine reads once per block and writes
// the updated gain back to. Every method must be lock-free: the engine calls
// them from the audio thread while the UI calls them from its own.
type Store interface {
	Gain() float32
	SetGain(gain float32)
	GainLow() float32
	GainHigh() float32
	Direction() Direction
	SetDirection(dir Direction)
}

// Params is a Store made of single-word atomics. Float values are kept as
// their IEEE-754 bit patterns.
type Params struct {
	gain      atomic.Uint32
	low       atomic.Uint32
	high      atomic.Uint32
	direction atomic.Int32
}

// NewParams returns a store in the settled "up" state: gain at the high
// bound of the default [0, 1] range.
func NewParams() *Params {
	p := &Params{}
	p.SetGainRange(DefaultGainLow, DefaultGainHigh)
	p.SetGain(DefaultGainHigh)
	p.SetDirection(Up)
	return p
}

// Gain returns the current gain.
func (p *Params) Gain() float32 {
	return math.Float32frombits(p.gain.Load())
}

// SetGain stores the current gain.
func (p *Params) SetGain(gain float32) {
	p.gain.Store(math.Float32bits(gain))
}

// GainLow returns the low bound.
func (p *Params) GainLow() float32 {
	return math.Float32frombits(p.low.Load())
}

// GainHigh returns the high bound.
func (p *Params) GainHigh() float32 {
	return math.Float32frombits(p.high.Load())
}

// SetGainRange stores both bounds. The bounds may change at any time,
// including mid-fade; the engine normalizes inverted or invalid ranges
// when it reads them.
func (p *Params) SetGainRange(low, high float32) {
	p.low.Store(math.Float32bits(low))
	p.high.Store(math.Float32bits(high))
}

// Direction returns the stored travel direction.
func (p *Params) Direction() Direction {
	return Direction(p.direction.Load())
}

// SetDirection stores dir. Toggle flips the stored direction atomically.
func (p *Params) SetDirection(dir Direction) {
	if dir != Toggle {
		p.direction.Store(int32(dir))
		return
	}
	for {
		old := p.direction.Load()
		if p.direction.CompareAndSwap(old, int32(Direction(old).Flip())) {
			return
		}
	}
}
