package host

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
	"github.com/go-audio/audio"
)

// Tone is an endless sine source. It is not safe for concurrent use.
type Tone struct {
	amplitude float64
	step      float64 // cycles per sample
	phase     float64 // cycles, in [0, 1)

	unit []float64
	mono []float64
}

// NewTone creates a sine of the given frequency and peak amplitude.
func NewTone(frequency, amplitude, sampleRate float64) *Tone {
	return &Tone{
		amplitude: amplitude,
		step:      frequency / sampleRate,
	}
}

// Read fills dst with the next samples.
func (t *Tone) Read(dst []float64) {
	t.unit = grow(t.unit, len(dst))
	unit := t.unit[:len(dst)]
	for i := range unit {
		unit[i] = math.Sin(2 * math.Pi * t.phase)
		t.phase += t.step
		t.phase -= math.Floor(t.phase)
	}
	vecmath.ScaleBlock(dst, unit, t.amplitude)
}

// Stream implements beep.Streamer with the tone on both channels.
func (t *Tone) Stream(samples [][2]float64) (int, bool) {
	mono := t.read(len(samples))
	for i, v := range mono {
		samples[i] = [2]float64{v, v}
	}
	return len(samples), true
}

// Err implements beep.Streamer.
func (t *Tone) Err() error {
	return nil
}

// Fill writes the tone into every channel of an interleaved buffer.
func (t *Tone) Fill(buf *audio.FloatBuffer) {
	ch := buf.Format.NumChannels
	if ch <= 0 {
		return
	}
	mono := t.read(len(buf.Data) / ch)
	for i, v := range mono {
		for c := 0; c < ch; c++ {
			buf.Data[i*ch+c] = v
		}
	}
}

func (t *Tone) read(n int) []float64 {
	t.mono = grow(t.mono, n)
	mono := t.mono[:n]
	t.Read(mono)
	return mono
}

func grow(buf []float64, n int) []float64 {
	if cap(buf) < n {
		return make([]float64, n)
	}
	return buf
}
