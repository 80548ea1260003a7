package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/chzyer/readline"
	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"github.com/justyntemme/fadervst/pkg/framework/debug"
	"github.com/justyntemme/fadervst/pkg/host"
)

func runPlay(args []string) error {
	var cfg config
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	cfg.register(fs)
	latency := fs.Duration("latency", 100*time.Millisecond, "speaker buffer length")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.apply(); err != nil {
		return err
	}

	p, err := cfg.newProcessor(2)
	if err != nil {
		return err
	}

	sr := beep.SampleRate(cfg.sampleRate)
	tone := host.NewTone(cfg.frequency, cfg.amplitude, float64(sr))
	stream, err := host.NewStreamer(tone, p, sr, cfg.blockSize)
	if err != nil {
		return err
	}

	if err := speaker.Init(sr, sr.N(*latency)); err != nil {
		return fmt.Errorf("speaker: %w", err)
	}
	defer speaker.Close()
	speaker.Play(stream)
	debug.Info("playing %.0f Hz at %d Hz, block %d", cfg.frequency, cfg.sampleRate, cfg.blockSize)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "fader> ",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	c := &console{p: p, out: rl.Stdout()}
	fmt.Fprintln(c.out, consoleHelp)
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("readline: %w", err)
		}

		if err := c.exec(line); errors.Is(err, errQuit) {
			return nil
		} else if err != nil {
			fmt.Fprintln(c.out, err)
		}
	}
}
