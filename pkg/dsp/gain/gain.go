// Package gain provides amplitude and gain-related DSP operations.
package gain

import (
	"math"
)

// Constants for dB conversion
const (
	// MinDB is the minimum dB value (effectively -infinity)
	MinDB = -200.0
)

// LinearToDb converts a linear amplitude value to decibels.
// Returns MinDB for values <= 0.
func LinearToDb(linear float64) float64 {
	if linear <= 0 {
		return MinDB
	}
	return 20.0 * math.Log10(linear)
}

// DbToLinear converts a decibel value to linear amplitude.
// Values <= MinDB return 0.
func DbToLinear(db float64) float64 {
	if db <= MinDB {
		return 0
	}
	return math.Pow(10.0, db/20.0)
}

// ApplyBuffer applies gain to an entire buffer in-place.
func ApplyBuffer(buffer []float32, gain float32) {
	if gain == 1 {
		return
	}
	for i := range buffer {
		buffer[i] *= gain
	}
}

// Ramp multiplies buffer by a linear gain ramp. The first sample is scaled
// by startGain and each following sample moves (endGain-startGain)/len
// further, so endGain itself is the value for the sample after the buffer.
// Consecutive ramps therefore join without repeating a gain value.
func Ramp(buffer []float32, startGain, endGain float32) {
	n := len(buffer)
	if n == 0 {
		return
	}
	if startGain == endGain {
		ApplyBuffer(buffer, startGain)
		return
	}

	delta := (endGain - startGain) / float32(n)
	for i := range buffer {
		buffer[i] *= startGain + delta*float32(i)
	}
}
