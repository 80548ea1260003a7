// Package bus provides audio bus configuration and layout negotiation.
package bus

import (
	"errors"
	"fmt"
)

// Direction represents the bus direction
type Direction int32

const (
	// DirectionInput represents input bus
	DirectionInput Direction = 0
	// DirectionOutput represents output bus
	DirectionOutput Direction = 1
)

// ErrUnsupportedLayout is returned when a host proposes a channel layout
// the configuration cannot run with.
var ErrUnsupportedLayout = errors.New("unsupported bus layout")

// Info contains bus configuration
type Info struct {
	Direction    Direction
	ChannelCount int32
	Name         string
	IsActive     bool
}

// Configuration holds one main audio input and one main audio output bus.
type Configuration struct {
	buses []Info
}

// NewStereoConfiguration creates a standard stereo I/O configuration
func NewStereoConfiguration() *Configuration {
	return newConfiguration(2)
}

// NewMonoConfiguration creates a mono I/O configuration
func NewMonoConfiguration() *Configuration {
	return newConfiguration(1)
}

func newConfiguration(channels int32) *Configuration {
	return &Configuration{
		buses: []Info{
			{Direction: DirectionInput, ChannelCount: channels, Name: busName(channels, DirectionInput), IsActive: true},
			{Direction: DirectionOutput, ChannelCount: channels, Name: busName(channels, DirectionOutput), IsActive: true},
		},
	}
}

func busName(channels int32, direction Direction) string {
	kind := "Mono"
	if channels == 2 {
		kind = "Stereo"
	}
	if direction == DirectionInput {
		return kind + " In"
	}
	return kind + " Out"
}

// GetBusCount returns the number of buses in a direction
func (c *Configuration) GetBusCount(direction Direction) int32 {
	count := int32(0)
	for _, bus := range c.buses {
		if bus.Direction == direction {
			count++
		}
	}
	return count
}

// GetBusInfo returns information about a specific bus
func (c *Configuration) GetBusInfo(direction Direction, index int32) *Info {
	busIndex := int32(0)
	for i := range c.buses {
		if c.buses[i].Direction == direction {
			if busIndex == index {
				return &c.buses[i]
			}
			busIndex++
		}
	}
	return nil
}

// Channels returns the channel count of the main bus in a direction.
func (c *Configuration) Channels(direction Direction) int32 {
	if info := c.GetBusInfo(direction, 0); info != nil && info.IsActive {
		return info.ChannelCount
	}
	return 0
}

// Supports reports whether the main buses can run with the given channel
// counts: mono or stereo, with as many outputs as inputs.
func (c *Configuration) Supports(inputs, outputs int32) bool {
	if outputs != 1 && outputs != 2 {
		return false
	}
	return inputs == outputs
}

// SetLayout switches the main buses to the given channel counts.
func (c *Configuration) SetLayout(inputs, outputs int32) error {
	if !c.Supports(inputs, outputs) {
		return fmt.Errorf("%w: %d in, %d out", ErrUnsupportedLayout, inputs, outputs)
	}
	for i := range c.buses {
		channels := inputs
		if c.buses[i].Direction == DirectionOutput {
			channels = outputs
		}
		c.buses[i].ChannelCount = channels
		c.buses[i].Name = busName(channels, c.buses[i].Direction)
	}
	return nil
}
