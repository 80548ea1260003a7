package host

import (
	"github.com/faiface/beep"

	"github.com/justyntemme/fadervst/pkg/framework/plugin"
)

// Streamer runs a processor over a stereo beep source. It is meant to be
// played by the beep speaker, which calls Stream from its own goroutine.
type Streamer struct {
	src    beep.Streamer
	runner *blockRunner
	done   bool
}

// NewStreamer wraps src. The processor must already be prepared for stereo
// at the speaker's sample rate with at least maxBlockSize frames.
func NewStreamer(src beep.Streamer, p plugin.Processor, sampleRate beep.SampleRate, maxBlockSize int) (*Streamer, error) {
	r, err := newBlockRunner(p, float64(sampleRate), maxBlockSize, 2)
	if err != nil {
		return nil, err
	}
	return &Streamer{src: src, runner: r}, nil
}

// Stream fills samples with processed audio from the source.
func (s *Streamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.done {
		return 0, false
	}

	block := s.runner.maxBlock()
	for n < len(samples) {
		chunk := samples[n:min(n+block, len(samples))]
		got, more := s.src.Stream(chunk)

		if got > 0 {
			left, right := s.runner.in[0], s.runner.in[1]
			for i, frame := range chunk[:got] {
				left[i] = float32(frame[0])
				right[i] = float32(frame[1])
			}

			s.runner.run(got)

			left, right = s.runner.out[0], s.runner.out[1]
			for i := range chunk[:got] {
				chunk[i] = [2]float64{float64(left[i]), float64(right[i])}
			}
			n += got
		}

		if !more {
			s.done = true
			break
		}
		if got < len(chunk) {
			break
		}
	}
	return n, n > 0
}

// Err returns the source's error.
func (s *Streamer) Err() error {
	return s.src.Err()
}
