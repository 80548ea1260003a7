// Package process provides the audio processing context handed to a
// processor once per block.
package process

import (
	"github.com/justyntemme/fadervst/pkg/framework/param"
)

// Context provides a clean API for audio processing with zero allocations
type Context struct {
	Input      [][]float32
	Output     [][]float32
	SampleRate float64

	// Pre-allocated work buffer
	workBuffer []float32

	// Parameter access
	params *param.Registry
}

// NewContext creates a new process context with pre-allocated buffers
func NewContext(maxBlockSize int, params *param.Registry) *Context {
	return &Context{
		workBuffer: make([]float32, maxBlockSize),
		params:     params,
	}
}

// MaxBlockSize returns the largest block the context was prepared for.
func (c *Context) MaxBlockSize() int {
	return len(c.workBuffer)
}

// Param returns the current value of a parameter (0-1 normalized).
// It goes through the registry and is meant for the control thread.
func (c *Context) Param(id uint32) float64 {
	if c.params == nil {
		return 0
	}
	if p := c.params.Get(id); p != nil {
		return p.GetValue()
	}
	return 0
}

// ParamPlain returns the current plain value of a parameter
func (c *Context) ParamPlain(id uint32) float64 {
	if c.params == nil {
		return 0
	}
	if p := c.params.Get(id); p != nil {
		return p.GetPlainValue()
	}
	return 0
}

// NumSamples returns the number of samples to process
func (c *Context) NumSamples() int {
	if len(c.Input) > 0 && len(c.Input[0]) > 0 {
		return len(c.Input[0])
	}
	if len(c.Output) > 0 && len(c.Output[0]) > 0 {
		return len(c.Output[0])
	}
	return 0
}

// NumInputChannels returns the number of input channels
func (c *Context) NumInputChannels() int {
	return len(c.Input)
}

// NumOutputChannels returns the number of output channels
func (c *Context) NumOutputChannels() int {
	return len(c.Output)
}

// WorkBuffer returns a slice of the pre-allocated work buffer
// sized to the current block size - no allocation!
func (c *Context) WorkBuffer() []float32 {
	n := c.NumSamples()
	if n > len(c.workBuffer) {
		n = len(c.workBuffer)
	}
	return c.workBuffer[:n]
}

// PassThrough copies input to output (for bypass)
func (c *Context) PassThrough() {
	c.CopyInputToOutput()
	c.ClearUnusedOutputs()
}

// Clear zeros the output buffers
func (c *Context) Clear() {
	for ch := range c.Output {
		clear(c.Output[ch])
	}
}

// ClearUnusedOutputs zeros output channels that have no matching input.
// Hosts do not guarantee those buffers are empty.
func (c *Context) ClearUnusedOutputs() {
	for ch := c.NumInputChannels(); ch < c.NumOutputChannels(); ch++ {
		clear(c.Output[ch])
	}
}
