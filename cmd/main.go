package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/nevisdale/chipvip/internal/beeper"
	"github.com/nevisdale/chipvip/internal/bus"
	"github.com/nevisdale/chipvip/internal/chip8"
	"github.com/nevisdale/chipvip/internal/config"
	"github.com/nevisdale/chipvip/internal/snapshot"
	"github.com/nevisdale/chipvip/internal/statsview"
	"github.com/nevisdale/chipvip/internal/term"
	"github.com/nevisdale/chipvip/internal/ui"
	"github.com/pkg/profile"
)

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		var usageErr *config.UsageError
		if errors.As(err, &usageErr) {
			if usageErr.Error() != "" {
				log.Println(usageErr)
			}
			usageErr.ShowUsage(os.Stderr)
			return 2
		}
		log.Println(err)
		return 2
	}

	switch cfg.Profile {
	case config.ProfileCPU:
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case config.ProfileMem:
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	}

	if cfg.StatsView {
		stop := statsview.Launch(os.Stderr, statsview.DefaultAddress)
		defer stop()
	}

	rom, err := chip8.ReadROMFile(cfg.ROM)
	if err != nil {
		log.Printf("couldn't load rom %s: %s", cfg.ROM, err)
		return 1
	}

	var src rand.Source
	if cfg.Seed != 0 {
		src = rand.NewPCG(cfg.Seed, cfg.Seed)
	}
	system := chip8.NewSystem(cfg.Quirks, src)
	if err := system.LoadROM(rom); err != nil {
		log.Println(err)
		return 1
	}
	log.Printf("running %s, %d bytes, quirks %s", filepath.Base(cfg.ROM), len(rom), cfg.Quirks)

	snaps := snapshot.NewWriter(cfg.SnapshotDir, cfg.Scale)
	opts := []bus.Option{bus.WithCrashReporter(snaps)}

	if !cfg.Mute {
		bp, err := beeper.New(beeper.SampleRate)
		if err != nil {
			log.Printf("sound disabled: %s", err)
		} else {
			defer bp.Close()
			opts = append(opts, bus.WithBeeper(bp))
		}
	}

	if cfg.WavFile != "" {
		rec, err := beeper.NewRecorder(cfg.WavFile, beeper.SampleRate, bus.FrameRate)
		if err != nil {
			log.Println(err)
			return 1
		}
		defer func() {
			if err := rec.Close(); err != nil {
				log.Println(err)
			}
		}()
		opts = append(opts, bus.WithRecorder(rec))
	}

	b := bus.New(system, cfg.IPS, opts...)

	switch cfg.Frontend {
	case config.FrontendTerminal:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err = term.New(b, os.Stdin, os.Stdout).Run(ctx)
	default:
		err = ui.RunUI(ui.New(b, ui.Options{
			Scale:     cfg.Scale,
			Fade:      cfg.Fade,
			FadeRate:  cfg.FadeRate,
			Snapshots: snaps,
		}))
	}

	if err != nil {
		var chipErr *chip8.Error
		if errors.As(err, &chipErr) {
			fmt.Fprint(os.Stderr, chipErr.CrashDump())
			log.Printf("crash snapshot written to %s", snaps.Dir())
			return 1
		}
		log.Println(err)
		return 1
	}
	return 0
}
