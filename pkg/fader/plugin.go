// Package fader is a gain fader effect: a button ramps the signal between a
// low and a high gain over a configurable time, without clicks.
package fader

import (
	"github.com/justyntemme/fadervst/pkg/framework/plugin"
)

// Parameter IDs.
const (
	ParamGainLow uint32 = iota
	ParamGainHigh
	ParamFaded
	ParamFadeDownTime
	ParamFadeUpTime
	ParamCurrentGain
)

const (
	// PluginID identifies the fader to hosts.
	PluginID = "com.fadervst.fader"

	maxFadeSeconds     = 60.0
	defaultFadeSeconds = 1.0
)

// Plugin describes the fader and creates its processors.
type Plugin struct{}

// GetInfo returns the fader's metadata.
func (Plugin) GetInfo() plugin.Info {
	return plugin.Info{
		ID:       PluginID,
		Name:     "Fader",
		Version:  "1.0.0",
		Vendor:   "FaderVST",
		Category: "Fx|Dynamics",
	}
}

// CreateProcessor returns a new fader processor.
func (Plugin) CreateProcessor() plugin.Processor {
	return NewProcessor()
}
