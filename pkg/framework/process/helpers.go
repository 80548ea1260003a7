package process

// CopyInputToOutput copies input to output for all channels
func (c *Context) CopyInputToOutput() {
	for ch := 0; ch < c.GetNumChannels(); ch++ {
		copy(c.Output[ch], c.Input[ch])
	}
}

// GetNumChannels returns the minimum of input and output channels
func (c *Context) GetNumChannels() int {
	numChannels := c.NumInputChannels()
	if c.NumOutputChannels() < numChannels {
		numChannels = c.NumOutputChannels()
	}
	return numChannels
}
