package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/thelolagemann/gbcore/internal/config"
	"github.com/thelolagemann/gbcore/internal/gameboy"
	"github.com/thelolagemann/gbcore/pkg/saves"
	"github.com/thelolagemann/gbcore/pkg/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "goboy:", err)
		os.Exit(1)
	}
}

func run() error {
	configFile := flag.String("config", "", "YAML configuration file")
	romFile := flag.String("rom", "", "The rom file to load")
	bootROM := flag.String("boot", "", "The boot rom file to load")
	saveDir := flag.String("saves", "", "Directory for battery saves")
	asModel := flag.String("model", "", "The model to emulate. Can be auto, dmg or cgb")
	cycles := flag.Uint64("cycles", 0, "Clock cycles to run for, 0 runs until interrupted")
	logLevel := flag.String("log", "", "Log level (debug, info, warn, error)")
	serial := flag.Bool("serial", false, "Print serial output to stdout")
	trace := flag.Bool("trace", false, "Log every executed instruction")
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			return err
		}
	}

	// flags set on the command line override the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "rom":
			cfg.ROM = *romFile
		case "boot":
			cfg.Boot = *bootROM
		case "saves":
			cfg.Saves = *saveDir
		case "model":
			cfg.Model = *asModel
		case "cycles":
			cfg.Cycles = *cycles
		case "log":
			cfg.LogLevel = *logLevel
		case "serial":
			cfg.Serial = *serial
		case "trace":
			cfg.Trace = *trace
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.ROM == "" {
		flag.Usage()
		return errors.New("no rom given")
	}

	logger := cfg.Logger()
	rom, err := utils.LoadFile(cfg.ROM)
	if err != nil {
		return err
	}

	opts := []gameboy.Opt{
		gameboy.WithLogger(logger),
		gameboy.AsModel(cfg.EmulatedModel()),
	}
	if cfg.Boot != "" {
		boot, err := utils.LoadFile(cfg.Boot)
		if err != nil {
			return err
		}
		opts = append(opts, gameboy.WithBootROM(boot))
	}
	if cfg.Saves != "" {
		opts = append(opts, gameboy.WithPersistence(saves.NewStore(cfg.Saves)))
	}
	if cfg.Serial {
		opts = append(opts, gameboy.SerialDebugger(os.Stdout))
	}
	if cfg.Trace {
		opts = append(opts, gameboy.Debug())
	}

	gb, err := gameboy.New(rom, opts...)
	if err != nil {
		return err
	}
	logger.Infof("running %s as %s", gb.Cartridge.Title, gb.Model())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := gb.Run(ctx, cfg.Cycles)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}
	logger.Infof("stopped after %d cycles", gb.Cycles())

	if err := gb.Close(); err != nil {
		logger.Errorf("saving battery RAM: %v", err)
	}
	return runErr
}
