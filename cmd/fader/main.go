// Command fader runs the fader plugin outside a DAW. "play" sends a test
// tone to the speakers and reads fade commands from the terminal; "render"
// writes a scripted fade to a WAV file and checks it for clicks.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/justyntemme/fadervst/pkg/fader"
	"github.com/justyntemme/fadervst/pkg/framework/debug"
	"github.com/justyntemme/fadervst/pkg/framework/plugin"
	"github.com/justyntemme/fadervst/pkg/host"
)

func init() {
	plugin.SetFactoryInfo(plugin.FactoryInfo{
		Vendor: "FaderVST",
		URL:    "https://github.com/justyntemme/fadervst",
	})
	plugin.Register(fader.Plugin{})
}

// config holds the flags shared by every subcommand.
type config struct {
	sampleRate int
	blockSize  int
	frequency  float64
	amplitude  float64
	low        float64
	high       float64
	downTime   float64
	upTime     float64
	level      string
}

func (c *config) register(fs *flag.FlagSet) {
	fs.IntVar(&c.sampleRate, "rate", 48000, "sample rate in Hz")
	fs.IntVar(&c.blockSize, "block", 512, "maximum block size in frames")
	fs.Float64Var(&c.frequency, "freq", 440, "test tone frequency in Hz")
	fs.Float64Var(&c.amplitude, "amp", 0.5, "test tone peak amplitude")
	fs.Float64Var(&c.low, "low", 0, "low gain bound (linear)")
	fs.Float64Var(&c.high, "high", 1, "high gain bound (linear)")
	fs.Float64Var(&c.downTime, "down", 1, "fade down time in seconds")
	fs.Float64Var(&c.upTime, "up", 1, "fade up time in seconds")
	fs.StringVar(&c.level, "v", "info", "log level: debug, info, warn, error or off")
}

// apply validates the flags and sets the log level.
func (c *config) apply() error {
	level, err := debug.ParseLevel(c.level)
	if err != nil {
		return err
	}
	debug.SetLevel(level)

	if c.sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", c.sampleRate)
	}
	if c.blockSize <= 0 {
		return fmt.Errorf("invalid block size %d", c.blockSize)
	}
	if c.frequency <= 0 || c.frequency >= float64(c.sampleRate)/2 {
		return fmt.Errorf("tone frequency %.1f Hz outside (0, %d)", c.frequency, c.sampleRate/2)
	}
	return nil
}

// newProcessor creates the registered fader and prepares it for channels.
func (c *config) newProcessor(channels int) (*fader.Processor, error) {
	pl, ok := plugin.Lookup(fader.PluginID)
	if !ok {
		return nil, fmt.Errorf("plugin %q is not registered", fader.PluginID)
	}
	p, ok := pl.CreateProcessor().(*fader.Processor)
	if !ok {
		return nil, errors.New("registered fader has an unexpected processor type")
	}

	p.SetGainRange(c.low, c.high)
	p.SetFadeTimes(c.downTime, c.upTime)
	if err := host.Prepare(p, float64(c.sampleRate), c.blockSize, channels); err != nil {
		return nil, err
	}
	return p, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: fader <command> [flags]

commands:
  play     play a test tone and control the fader interactively
  render   render a scripted fade to a WAV file and check it for clicks
  params   list the plugin parameters

run "fader <command> -h" for the flags of a command
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "play":
		err = runPlay(args)
	case "render":
		err = runRender(args)
	case "params":
		err = runParams(args)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "fader: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		debug.Error("%v", err)
		os.Exit(1)
	}
}
