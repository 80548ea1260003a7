package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/justyntemme/fadervst/pkg/fade"
	"github.com/justyntemme/fadervst/pkg/fader"
)

var errQuit = errors.New("quit")

const consoleHelp = `commands:
  down | up | toggle      fade using the configured time
  fade [seconds]          reverse the fade, optionally over a given time
  range <low> <high>      set the gain bounds (linear, 0-1)
  time <down|up> <s>      set a fade time in seconds
  status                  show the fader state
  help                    show this help
  quit                    stop playback`

var completer = readline.NewPrefixCompleter(
	readline.PcItem("down"),
	readline.PcItem("up"),
	readline.PcItem("toggle"),
	readline.PcItem("fade"),
	readline.PcItem("range"),
	readline.PcItem("time", readline.PcItem("down"), readline.PcItem("up")),
	readline.PcItem("status"),
	readline.PcItem("help"),
	readline.PcItem("quit"),
)

// console turns text commands into fader calls.
type console struct {
	p   *fader.Processor
	out io.Writer
}

// exec runs one command line. It returns errQuit when the user asks to stop.
func (c *console) exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	cmd, args := strings.ToLower(fields[0]), fields[1:]
	if dir, ok := fade.ParseDirection(cmd); ok {
		if !c.p.FadeTo(dir) {
			return errors.New("fade refused")
		}
		c.printStatus()
		return nil
	}

	switch cmd {
	case "fade", "f":
		return c.fade(args)
	case "range", "r":
		return c.setRange(args)
	case "time":
		return c.setTime(args)
	case "status", "s":
		c.printStatus()
		return nil
	case "help", "h", "?":
		fmt.Fprintln(c.out, consoleHelp)
		return nil
	case "quit", "q", "exit":
		return errQuit
	}
	return fmt.Errorf("unknown command %q, try help", cmd)
}

func (c *console) fade(args []string) error {
	ok := false
	switch len(args) {
	case 0:
		ok = c.p.Fade()
	case 1:
		seconds, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("fade: %w", err)
		}
		ok = c.p.FadeFor(seconds)
	default:
		return errors.New("usage: fade [seconds]")
	}
	if !ok {
		return errors.New("fade refused")
	}
	c.printStatus()
	return nil
}

func (c *console) setRange(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: range <low> <high>")
	}
	low, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("range: low: %w", err)
	}
	high, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("range: high: %w", err)
	}
	c.p.SetGainRange(low, high)
	c.printStatus()
	return nil
}

func (c *console) setTime(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: time <down|up> <seconds>")
	}
	dir, ok := fade.ParseDirection(strings.ToLower(args[0]))
	if !ok || dir == fade.Toggle {
		return fmt.Errorf("time: direction must be down or up, got %q", args[0])
	}
	seconds, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("time: %w", err)
	}

	down, up := c.p.FadeTime(fade.Down), c.p.FadeTime(fade.Up)
	if dir == fade.Down {
		down = seconds
	} else {
		up = seconds
	}
	c.p.SetFadeTimes(down, up)
	c.printStatus()
	return nil
}

func (c *console) printStatus() {
	low, high := c.p.GainRange()
	state := "settled"
	if c.p.Fading() {
		state = fmt.Sprintf("fading, %d samples left", c.p.Remaining())
	}
	fmt.Fprintf(c.out, "gain %.3f  %s (%s)  range [%.3f, %.3f]  times down %.2fs up %.2fs\n",
		c.p.Gain(), c.p.Direction(), state, low, high,
		c.p.FadeTime(fade.Down), c.p.FadeTime(fade.Up))
	fmt.Fprintf(c.out, "audio %s\n", c.p.Stats())
}
