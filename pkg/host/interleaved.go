package host

import (
	"errors"

	"github.com/go-audio/audio"

	"github.com/justyntemme/fadervst/pkg/framework/plugin"
)

// ErrNoFormat is returned for buffers without a format.
var ErrNoFormat = errors.New("buffer has no format")

// Offline processes interleaved go-audio buffers in place.
type Offline struct {
	runner   *blockRunner
	channels int
}

// NewOffline creates an offline runner for a prepared processor.
func NewOffline(p plugin.Processor, sampleRate float64, maxBlockSize, channels int) (*Offline, error) {
	r, err := newBlockRunner(p, sampleRate, maxBlockSize, channels)
	if err != nil {
		return nil, err
	}
	return &Offline{runner: r, channels: channels}, nil
}

// Process runs buf through the processor in blocks of at most the max
// block size. A trailing partial frame is left untouched.
func (o *Offline) Process(buf *audio.FloatBuffer) error {
	if buf == nil || buf.Format == nil {
		return ErrNoFormat
	}
	if buf.Format.NumChannels != o.channels {
		return errors.New("buffer channel count does not match the runner")
	}

	ch := o.channels
	frames := len(buf.Data) / ch
	block := o.runner.maxBlock()

	for start := 0; start < frames; start += block {
		n := min(block, frames-start)
		data := buf.Data[start*ch : (start+n)*ch]

		for c := 0; c < ch; c++ {
			in := o.runner.in[c]
			for i := 0; i < n; i++ {
				in[i] = float32(data[i*ch+c])
			}
		}

		o.runner.run(n)

		for c := 0; c < ch; c++ {
			out := o.runner.out[c]
			for i := 0; i < n; i++ {
				data[i*ch+c] = float64(out[i])
			}
		}
	}
	return nil
}

// ProcessInterleaved runs a whole buffer through a prepared processor.
func ProcessInterleaved(p plugin.Processor, buf *audio.FloatBuffer, maxBlockSize int) error {
	if buf == nil || buf.Format == nil {
		return ErrNoFormat
	}
	o, err := NewOffline(p, float64(buf.Format.SampleRate), maxBlockSize, buf.Format.NumChannels)
	if err != nil {
		return err
	}
	return o.Process(buf)
}
