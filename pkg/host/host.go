// Package host drives plugin processors outside a DAW: live through a beep
// stream, or offline over go-audio buffers.
package host

import (
	"fmt"

	"github.com/justyntemme/fadervst/pkg/framework/bus"
	"github.com/justyntemme/fadervst/pkg/framework/plugin"
	"github.com/justyntemme/fadervst/pkg/framework/process"
)

// Prepare negotiates the channel layout, initializes p and activates it.
func Prepare(p plugin.Processor, sampleRate float64, maxBlockSize, channels int) error {
	if err := p.GetBuses().SetLayout(int32(channels), int32(channels)); err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	if err := p.Initialize(sampleRate, int32(maxBlockSize)); err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	if err := p.SetActive(true); err != nil {
		return fmt.Errorf("prepare: activate: %w", err)
	}
	return nil
}

// blockRunner owns the planar buffers handed to a processor, so that
// running a block never allocates.
type blockRunner struct {
	proc plugin.Processor
	ctx  *process.Context
	in   [][]float32
	out  [][]float32
}

func newBlockRunner(p plugin.Processor, sampleRate float64, maxBlockSize, channels int) (*blockRunner, error) {
	if maxBlockSize <= 0 {
		return nil, fmt.Errorf("invalid max block size %d", maxBlockSize)
	}
	if !p.GetBuses().Supports(int32(channels), int32(channels)) {
		return nil, fmt.Errorf("%w: %d channels", bus.ErrUnsupportedLayout, channels)
	}

	r := &blockRunner{
		proc: p,
		ctx:  process.NewContext(maxBlockSize, p.GetParameters()),
		in:   make([][]float32, channels),
		out:  make([][]float32, channels),
	}
	r.ctx.SampleRate = sampleRate
	r.ctx.Input = make([][]float32, channels)
	r.ctx.Output = make([][]float32, channels)
	for ch := 0; ch < channels; ch++ {
		r.in[ch] = make([]float32, maxBlockSize)
		r.out[ch] = make([]float32, maxBlockSize)
	}
	return r, nil
}

func (r *blockRunner) maxBlock() int {
	return len(r.in[0])
}

// run processes the first n frames of the input buffers into the output
// buffers.
func (r *blockRunner) run(n int) {
	for ch := range r.in {
		r.ctx.Input[ch] = r.in[ch][:n]
		r.ctx.Output[ch] = r.out[ch][:n]
	}
	r.proc.ProcessAudio(r.ctx)
}
