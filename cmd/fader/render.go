package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/justyntemme/fadervst/pkg/fade"
	"github.com/justyntemme/fadervst/pkg/fader"
	"github.com/justyntemme/fadervst/pkg/framework/debug"
	"github.com/justyntemme/fadervst/pkg/host"
)

const renderChannels = 2

// script is the offline fade scenario: the tone plays, fades down at
// downAt, fades back up at upAt and runs until duration.
type script struct {
	duration float64
	downAt   float64
	upAt     float64
}

func (s script) validate() error {
	if s.duration <= 0 || math.IsInf(s.duration, 0) {
		return fmt.Errorf("invalid duration %v", s.duration)
	}
	if s.downAt < 0 || s.upAt < s.downAt || s.upAt > s.duration {
		return fmt.Errorf("fade times must satisfy 0 <= down-at <= up-at <= duration, got %v, %v, %v",
			s.downAt, s.upAt, s.duration)
	}
	return nil
}

// clickCheck configures the spectral click scan.
type clickCheck struct {
	cutoff    float64
	frameSize int
	threshold float64
}

func runRender(args []string) error {
	var (
		cfg   config
		sc    script
		check clickCheck
	)
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	cfg.register(fs)
	out := fs.String("o", "fade.wav", "output WAV path")
	fs.Float64Var(&sc.duration, "duration", 4, "length of the render in seconds")
	fs.Float64Var(&sc.downAt, "down-at", 0.5, "time of the fade down in seconds")
	fs.Float64Var(&sc.upAt, "up-at", 2, "time of the fade up in seconds")
	fs.Float64Var(&check.cutoff, "cutoff", 5000, "click scan cutoff frequency in Hz")
	fs.IntVar(&check.frameSize, "frame", 1024, "click scan frame size (power of two)")
	fs.Float64Var(&check.threshold, "threshold", 1e-6, "energy share above the cutoff that counts as a click")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.apply(); err != nil {
		return err
	}
	if err := sc.validate(); err != nil {
		return err
	}

	p, err := cfg.newProcessor(renderChannels)
	if err != nil {
		return err
	}
	buf, err := render(p, cfg, sc)
	if err != nil {
		return err
	}
	if err := writeWAV(*out, buf); err != nil {
		return err
	}
	debug.Info("wrote %s (%.2f s, %d Hz, 16 bit)", *out, sc.duration, cfg.sampleRate)

	clicks, err := report(os.Stdout, buf, check)
	if err != nil {
		return err
	}
	if clicks > 0 {
		return fmt.Errorf("%d frames with clicks", clicks)
	}
	return nil
}

// render fills a stereo buffer with the test tone and runs the script
// through p.
func render(p *fader.Processor, cfg config, sc script) (*audio.FloatBuffer, error) {
	rate := float64(cfg.sampleRate)
	frames := int(math.Round(sc.duration * rate))
	buf := &audio.FloatBuffer{
		Format: &audio.Format{NumChannels: renderChannels, SampleRate: cfg.sampleRate},
		Data:   make([]float64, frames*renderChannels),
	}
	host.NewTone(cfg.frequency, cfg.amplitude, rate).Fill(buf)

	off, err := host.NewOffline(p, rate, cfg.blockSize, renderChannels)
	if err != nil {
		return nil, err
	}

	events := []struct {
		at  int
		dir fade.Direction
	}{
		{int(math.Round(sc.downAt * rate)), fade.Down},
		{int(math.Round(sc.upAt * rate)), fade.Up},
	}

	pos := 0
	for _, ev := range events {
		if err := off.Process(segment(buf, pos, ev.at)); err != nil {
			return nil, err
		}
		if !p.FadeTo(ev.dir) {
			return nil, fmt.Errorf("fade %s refused", ev.dir)
		}
		pos = ev.at
	}
	if err := off.Process(segment(buf, pos, frames)); err != nil {
		return nil, err
	}
	return buf, nil
}

// segment returns frames [from, to) of buf sharing its storage.
func segment(buf *audio.FloatBuffer, from, to int) *audio.FloatBuffer {
	ch := buf.Format.NumChannels
	return &audio.FloatBuffer{Format: buf.Format, Data: buf.Data[from*ch : to*ch]}
}

// writeWAV encodes buf as 16-bit PCM.
func writeWAV(path string, buf *audio.FloatBuffer) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("write wav: %w", cerr)
		}
	}()

	ints := &audio.IntBuffer{
		Format:         buf.Format,
		Data:           make([]int, len(buf.Data)),
		SourceBitDepth: 16,
	}
	for i, v := range buf.Data {
		v = math.Max(-1, math.Min(1, v))
		ints.Data[i] = int(math.Round(v * math.MaxInt16))
	}

	enc := wav.NewEncoder(f, buf.Format.SampleRate, 16, buf.Format.NumChannels, 1)
	if err := enc.Write(ints); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return nil
}

// report prints level statistics and the click scan of the first channel
// and returns the number of frames flagged as clicks.
func report(w io.Writer, buf *audio.FloatBuffer, check clickCheck) (int, error) {
	if buf.Format == nil || buf.Format.NumChannels <= 0 {
		return 0, errors.New("report: buffer has no format")
	}
	ch := buf.Format.NumChannels
	left := make([]float32, len(buf.Data)/ch)
	for i := range left {
		left[i] = float32(buf.Data[i*ch])
	}

	stats := debug.AnalyzeBuffer(left)
	fmt.Fprintf(w, "peak %.3f  rms %.3f  max step %.5f at frame %d\n",
		stats.Peak, stats.RMS, stats.MaxJump, stats.MaxJumpIdx)
	for _, issue := range debug.CheckBuffer(left, "left") {
		fmt.Fprintln(w, issue)
	}

	clicks, err := debug.DetectClicks(left, float64(buf.Format.SampleRate), check.cutoff, check.frameSize, check.threshold)
	if err != nil {
		return 0, fmt.Errorf("report: %w", err)
	}
	if clicks.WorstFrame < 0 {
		fmt.Fprintln(w, "click scan: signal shorter than one frame")
		return 0, nil
	}
	fmt.Fprintf(w, "click scan: %d frames, worst %.3g at %.3f s, %d above %.g\n",
		len(clicks.Ratios), clicks.WorstRatio,
		float64(clicks.FrameStart(clicks.WorstFrame))/float64(buf.Format.SampleRate),
		len(clicks.Clicks), check.threshold)
	return len(clicks.Clicks), nil
}
