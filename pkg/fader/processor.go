package fader

import (
	"fmt"

	"github.com/justyntemme/fadervst/pkg/fade"
	"github.com/justyntemme/fadervst/pkg/framework/bus"
	"github.com/justyntemme/fadervst/pkg/framework/debug"
	"github.com/justyntemme/fadervst/pkg/framework/param"
	"github.com/justyntemme/fadervst/pkg/framework/plugin"
	"github.com/justyntemme/fadervst/pkg/framework/process"
)

// Processor runs the fade engine over the host's audio. ProcessAudio is the
// only method called from the audio thread; everything else belongs to the
// control thread.
type Processor struct {
	*plugin.BaseProcessor

	gainLow      *param.Parameter
	gainHigh     *param.Parameter
	faded        *param.Parameter
	fadeDownTime *param.Parameter
	fadeUpTime   *param.Parameter

	store    *paramStore
	engine   *fade.Engine
	profiler *debug.BlockProfiler
	log      *debug.Logger
}

// NewProcessor creates a fader with a stereo layout and default parameters:
// range [0, 1], one second fades, settled at the high gain.
func NewProcessor() *Processor {
	p := &Processor{
		BaseProcessor: plugin.NewBaseProcessor(bus.NewStereoConfiguration()),
		gainLow:       param.LinearGainParameter(ParamGainLow, "Low Gain", float64(fade.DefaultGainLow)).ShortName("Low").Build(),
		gainHigh:      param.LinearGainParameter(ParamGainHigh, "High Gain", float64(fade.DefaultGainHigh)).ShortName("High").Build(),
		faded:         param.ToggleParameter(ParamFaded, "Is Fading", false).ShortName("Faded").Build(),
		fadeDownTime:  param.FadeTimeParameter(ParamFadeDownTime, "Fade Down Time", maxFadeSeconds, defaultFadeSeconds).ShortName("Down").Build(),
		fadeUpTime:    param.FadeTimeParameter(ParamFadeUpTime, "Fade Up Time", maxFadeSeconds, defaultFadeSeconds).ShortName("Up").Build(),
		profiler:      debug.NewBlockProfiler(0),
		log:           debug.Named("fader"),
	}

	meter := param.GainMeter(ParamCurrentGain, "Current Gain").ShortName("Gain").Build()
	if err := p.GetParameters().Add(p.gainLow, p.gainHigh, p.faded, p.fadeDownTime, p.fadeUpTime, meter); err != nil {
		panic(fmt.Sprintf("fader: %v", err))
	}

	p.store = newParamStore(p.gainLow, p.gainHigh, p.faded, meter)
	p.engine = fade.NewEngine(p.store)

	p.OnInitialize(p.prepare)
	p.OnReset(p.engine.Reset)
	return p
}

func (p *Processor) prepare(sampleRate float64, maxBlockSize int32) error {
	if err := p.engine.Prepare(sampleRate); err != nil {
		return err
	}
	p.profiler.SetSampleRate(sampleRate)
	p.profiler.Reset()
	p.log.Info("prepared at %.0f Hz, max block %d", sampleRate, maxBlockSize)
	return nil
}

// ProcessAudio copies the input to the output and applies the fade in place.
func (p *Processor) ProcessAudio(ctx *process.Context) {
	start := p.profiler.Begin()

	ctx.CopyInputToOutput()
	ctx.ClearUnusedOutputs()
	p.engine.ProcessBlock(ctx.Output, ctx.NumSamples())

	p.profiler.End(start, ctx.NumSamples())
}

// Fade is the fade button: it reverses the direction and fades over the
// time configured for the new direction.
func (p *Processor) Fade() bool {
	dir := p.store.Direction().Flip()
	return p.Trigger(dir, p.FadeTime(dir))
}

// FadeFor reverses the direction and fades over the given number of seconds.
func (p *Processor) FadeFor(seconds float64) bool {
	return p.Trigger(fade.Toggle, seconds)
}

// FadeTo fades towards the bound selected by dir over its configured time.
func (p *Processor) FadeTo(dir fade.Direction) bool {
	if dir == fade.Toggle {
		return p.Fade()
	}
	return p.Trigger(dir, p.FadeTime(dir))
}

// Trigger starts a fade. It returns false for invalid requests or before
// the processor is initialized.
func (p *Processor) Trigger(dir fade.Direction, seconds float64) bool {
	if !p.engine.Trigger(dir, seconds) {
		p.log.Warn("ignored fade request: %s over %v s at %v Hz", dir, seconds, p.engine.SampleRate())
		return false
	}
	p.log.Debug("fade %s over %.3f s (%d samples)", p.store.Direction(), seconds, p.engine.Remaining())
	return true
}

// SetGainRange sets both gain bounds. Values are clamped to [0, 1]; an
// inverted range is accepted and treated as swapped.
func (p *Processor) SetGainRange(low, high float64) {
	p.gainLow.SetPlainValue(low)
	p.gainHigh.SetPlainValue(high)
}

// GainRange returns the gain bounds as set.
func (p *Processor) GainRange() (low, high float64) {
	return p.gainLow.GetPlainValue(), p.gainHigh.GetPlainValue()
}

// SetFadeTimes sets the fade down and fade up times in seconds.
func (p *Processor) SetFadeTimes(down, up float64) {
	p.fadeDownTime.SetPlainValue(down)
	p.fadeUpTime.SetPlainValue(up)
}

// FadeTime returns the configured time for fades in dir.
func (p *Processor) FadeTime(dir fade.Direction) float64 {
	if dir == fade.Down {
		return p.fadeDownTime.GetPlainValue()
	}
	return p.fadeUpTime.GetPlainValue()
}

// SetParameter applies a normalized value coming from the host or a
// control surface. Switching the faded toggle starts a fade instead of
// jumping; setting it to its current state does nothing. Read-only and
// unknown parameters are refused.
func (p *Processor) SetParameter(id uint32, normalized float64) error {
	if id == ParamFaded {
		dir := fade.Up
		if normalized >= 0.5 {
			dir = fade.Down
		}
		if dir == p.store.Direction() {
			return nil
		}
		if !p.FadeTo(dir) {
			return fmt.Errorf("fader: cannot fade %s before initialization", dir)
		}
		return nil
	}

	prm := p.GetParameters().Get(id)
	if prm == nil {
		return fmt.Errorf("fader: unknown parameter %d", id)
	}
	if prm.Flags&param.IsReadOnly != 0 {
		return fmt.Errorf("fader: parameter %q is read-only", prm.Name)
	}
	prm.SetValue(normalized)
	return nil
}

// Gain returns the gain reached at the end of the last processed block.
func (p *Processor) Gain() float32 {
	return p.store.Gain()
}

// Direction returns the current fade direction.
func (p *Processor) Direction() fade.Direction {
	return p.store.Direction()
}

// Fading reports whether a fade is in progress.
func (p *Processor) Fading() bool {
	return p.engine.Fading()
}

// Remaining returns the samples left in the running fade.
func (p *Processor) Remaining() int64 {
	return p.engine.Remaining()
}

// Stats returns block timing measured in ProcessAudio.
func (p *Processor) Stats() debug.BlockStats {
	return p.profiler.Stats()
}
