package fader

import (
	"math"
	"sync/atomic"

	"github.com/justyntemme/fadervst/pkg/fade"
	"github.com/justyntemme/fadervst/pkg/framework/param"
)

// paramStore exposes the host-visible parameters as a fade.Store. The
// parameters are held directly so the audio thread never goes through the
// registry lock.
type paramStore struct {
	low   *param.Parameter
	high  *param.Parameter
	faded *param.Parameter
	meter *param.Parameter

	gain atomic.Uint32
}

func newParamStore(low, high, faded, meter *param.Parameter) *paramStore {
	s := &paramStore{low: low, high: high, faded: faded, meter: meter}
	if faded.IsOn() {
		s.SetGain(s.GainLow())
	} else {
		s.SetGain(s.GainHigh())
	}
	return s
}

func (s *paramStore) Gain() float32 {
	return math.Float32frombits(s.gain.Load())
}

// SetGain stores the gain and mirrors it to the read-only meter.
func (s *paramStore) SetGain(g float32) {
	s.gain.Store(math.Float32bits(g))
	s.meter.SetPlainValue(float64(g))
}

func (s *paramStore) GainLow() float32 {
	return float32(s.low.GetPlainValue())
}

func (s *paramStore) GainHigh() float32 {
	return float32(s.high.GetPlainValue())
}

// Direction maps the faded toggle: on means fading or faded down.
func (s *paramStore) Direction() fade.Direction {
	if s.faded.IsOn() {
		return fade.Down
	}
	return fade.Up
}

func (s *paramStore) SetDirection(dir fade.Direction) {
	switch dir {
	case fade.Down:
		s.faded.SetOn(true)
	case fade.Up:
		s.faded.SetOn(false)
	case fade.Toggle:
		s.faded.Toggle()
	}
}
