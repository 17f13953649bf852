// Package config handles command line configuration
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/nevisdale/chipvip/internal/chip8"
)

const (
	FrontendWindow   = "window"
	FrontendTerminal = "term"

	ProfileCPU = "cpu"
	ProfileMem = "mem"

	DefaultIPS      = 700
	DefaultScale    = 10
	DefaultFadeRate = 64
)

type Config struct {
	ROM string

	Preset string
	Quirks chip8.Quirks

	// instructions per second
	IPS      int
	Scale    int
	Fade     bool
	FadeRate uint8
	Frontend string

	SnapshotDir string
	WavFile     string
	Mute        bool

	Profile   string
	StatsView bool

	// seed of the random byte source, 0 picks a random seed
	Seed uint64
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage(w io.Writer) {
	fmt.Fprintf(w, "usage: chipvip [options] <rom file>\n\n")
	e.flags.SetOutput(w)
	e.flags.PrintDefaults()
	fmt.Fprintln(w)
}

type quirkFlags struct {
	flagsReset     bool
	indexIncrement bool
	vblankWait     bool
	clipping       bool
	shiftIgnoresY  bool
	jumpX          bool
}

// Parse reads the configuration from args, without the program name.
// The ROM is given with -rom or as the single positional argument.
func Parse(args []string) (Config, error) {
	flags := flag.NewFlagSet("chipvip", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var cfg Config
	var quirks quirkFlags
	var fadeRate uint
	readOptionFlags(flags, &cfg, &fadeRate)
	readQuirkFlags(flags, &quirks)

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cfg, &UsageError{flags: flags}
		}
		return cfg, &UsageError{flags: flags, msg: err.Error()}
	}

	positional := flags.Args()
	switch {
	case len(positional) > 1:
		return cfg, &UsageError{flags: flags, msg: fmt.Sprintf("unexpected arguments: %s", strings.Join(positional[1:], " "))}
	case len(positional) == 1 && cfg.ROM != "":
		return cfg, &UsageError{flags: flags, msg: "rom given twice"}
	case len(positional) == 1:
		cfg.ROM = positional[0]
	}
	if cfg.ROM == "" {
		return cfg, &UsageError{flags: flags, msg: "no rom file given"}
	}

	preset, err := chip8.QuirksPreset(cfg.Preset)
	if err != nil {
		return cfg, err
	}
	cfg.Quirks = applyQuirkFlags(flags, preset, quirks)

	if fadeRate < 1 || fadeRate > 0xff {
		return cfg, fmt.Errorf("fade rate must be within 1..255, got %d", fadeRate)
	}
	cfg.FadeRate = uint8(fadeRate)

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.IPS < 1 {
		return fmt.Errorf("instructions per second must be positive, got %d", cfg.IPS)
	}
	if cfg.Scale < 1 {
		return fmt.Errorf("scale must be positive, got %d", cfg.Scale)
	}

	switch cfg.Frontend {
	case FrontendWindow, FrontendTerminal:
	default:
		return fmt.Errorf("unsupported frontend: %s. Valid options: %s, %s", cfg.Frontend, FrontendWindow, FrontendTerminal)
	}

	switch cfg.Profile {
	case "", ProfileCPU, ProfileMem:
	default:
		return fmt.Errorf("unsupported profile mode: %s. Valid options: %s, %s", cfg.Profile, ProfileCPU, ProfileMem)
	}
	return nil
}

// applyQuirkFlags overrides the preset with the quirk flags actually given.
func applyQuirkFlags(flags *flag.FlagSet, preset chip8.Quirks, in quirkFlags) chip8.Quirks {
	q := preset
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "quirk-flags-reset":
			q.FlagsReset = in.flagsReset
		case "quirk-index-increment":
			q.IndexIncrement = in.indexIncrement
		case "quirk-vblank-wait":
			q.VblankWait = in.vblankWait
		case "quirk-clipping":
			q.SpriteClipping = in.clipping
		case "quirk-shift-ignores-y":
			q.ShiftIgnoresY = in.shiftIgnoresY
		case "quirk-jump-x":
			q.JumpUsesX = in.jumpX
		}
	})
	return q
}

func readOptionFlags(flags *flag.FlagSet, cfg *Config, fadeRate *uint) {
	flags.StringVar(&cfg.ROM, "rom", "", "name of the ROM file to run")
	flags.StringVar(&cfg.Preset, "quirks", "vip", "quirk preset (vip/schip/modern)")
	flags.IntVar(&cfg.IPS, "ips", DefaultIPS, "instructions executed per second")
	flags.IntVar(&cfg.Scale, "scale", DefaultScale, "window and PNG snapshot scale factor")
	flags.BoolVar(&cfg.Fade, "fade", true, "slowly fade unlit pixels to reduce flickering")
	flags.UintVar(fadeRate, "fade-rate", DefaultFadeRate, "brightness lost per frame by a fading pixel (1-255)")
	flags.StringVar(&cfg.Frontend, "frontend", FrontendWindow, "frontend to run (window/term)")
	flags.StringVar(&cfg.SnapshotDir, "snapshots", "snapshots", "directory for frame and crash snapshots")
	flags.StringVar(&cfg.WavFile, "wav", "", "record the tone to a WAV file")
	flags.BoolVar(&cfg.Mute, "mute", false, "do not open the audio device")
	flags.StringVar(&cfg.Profile, "profile", "", "write a profile (cpu/mem)")
	flags.BoolVar(&cfg.StatsView, "statsview", false, "serve runtime statistics charts")
	flags.Uint64Var(&cfg.Seed, "seed", 0, "seed of the random byte source, 0 for a random seed")
}

func readQuirkFlags(flags *flag.FlagSet, q *quirkFlags) {
	flags.BoolVar(&q.flagsReset, "quirk-flags-reset", false, "OR, AND and XOR reset VF")
	flags.BoolVar(&q.indexIncrement, "quirk-index-increment", false, "register store and load advance the index register")
	flags.BoolVar(&q.vblankWait, "quirk-vblank-wait", false, "sprite drawing waits for the vertical blank")
	flags.BoolVar(&q.clipping, "quirk-clipping", false, "sprites are clipped at the screen edges instead of wrapping")
	flags.BoolVar(&q.shiftIgnoresY, "quirk-shift-ignores-y", false, "shifts operate on VX in place")
	flags.BoolVar(&q.jumpX, "quirk-jump-x", false, "BNNN jumps to NNN plus VX")
}
