package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tarm/serial"

	"github.com/coreman2200/funtimes-segmentlight/internal/config"
	"github.com/coreman2200/funtimes-segmentlight/internal/firmware"
	"github.com/coreman2200/funtimes-segmentlight/internal/led"
	"github.com/coreman2200/funtimes-segmentlight/internal/selftest"
	"github.com/coreman2200/funtimes-segmentlight/internal/strip"
)

func main() {
	// ---- Flags (config.yaml fills whatever is left at its zero value) ----
	var (
		port       = flag.String("port", "", "serial device to read commands from, - for stdin")
		baud       = flag.Int("baud", 0, "serial baud rate (default 9600)")
		driver     = flag.String("driver", "", "driver: sim | nrz | spidev | console")
		spiDev     = flag.String("spi", "", "SPI device or periph port name")
		colorOrder = flag.String("color", "", "LED color order for spidev (e.g. GRB, RGB)")
		lineMax    = flag.Int("line-max", 0, "input line buffer in bytes")
		queue      = flag.Int("queue", 0, "lines buffered between reader and handler")
		configPath = flag.String("config", "segments.yaml", "path to YAML config")
		selfTest   = flag.String("selftest", "", "run a self test at boot: segment_sweep | rgb_channels | index_sweep")
		debug      = flag.Bool("debug", false, "log dropped commands")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	// ---- Config ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
		cfg = config.Default()
	}
	if *port != "" {
		cfg.Serial.Port = *port
	}
	if *baud > 0 {
		cfg.Serial.Baud = *baud
	}
	if *driver != "" {
		cfg.Driver = *driver
	}
	if *spiDev != "" {
		cfg.SPI.Dev = *spiDev
	}
	if *colorOrder != "" {
		cfg.ColorOrder = *colorOrder
	}
	if *lineMax > 0 {
		cfg.LineMax = *lineMax
	}
	if *queue > 0 {
		cfg.QueueDepth = *queue
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid settings")
	}

	level := zerolog.InfoLevel
	if l, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		level = l
	}
	if *debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	// ---- Strip ----
	drv, kind, err := led.Open(led.Options{
		Kind:       cfg.Driver,
		Count:      strip.NumPixels,
		ColorOrder: cfg.ColorOrder,
		SPIDev:     cfg.SPI.Dev,
		SpeedHz:    cfg.SPI.SpeedHz,
		ResetUs:    cfg.SPI.ResetUs,
	}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Driver).Msg("driver init failed")
	}

	ctl := firmware.New(nil, drv,
		firmware.WithLogger(log.Logger),
		firmware.WithLineMax(cfg.LineMax),
		firmware.WithQueueDepth(cfg.QueueDepth),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *selfTest != "" {
		k, err := selftest.ParseKind(*selfTest)
		if err != nil {
			log.Warn().Err(err).Msg("skipping self test")
		} else if err := ctl.SelfTest(ctx, selftest.Plan{Kind: k}, 150*time.Millisecond); err != nil {
			log.Warn().Err(err).Msg("self test aborted")
		}
	}
	if err := ctl.Clear(); err != nil {
		log.Warn().Err(err).Msg("initial clear failed")
	}

	// ---- Input ----
	in, err := openInput(cfg.Serial)
	if err != nil {
		log.Fatal().Err(err).Str("port", cfg.Serial.Port).Msg("serial open failed")
	}
	go func() {
		<-ctx.Done()
		_ = in.Close()
	}()

	log.Info().
		Str("port", cfg.Serial.Port).
		Int("baud", cfg.Serial.Baud).
		Str("driver", kind).
		Int("pixels", strip.NumPixels).
		Msg("controller ready")

	runErr := ctl.Run(ctx, in)
	st := ctl.Stats()
	log.Info().
		Uint64("applied", st.Applied).
		Uint64("dropped", st.Dropped).
		Uint64("overlong", st.Overlong).
		Uint64("refresh_errors", st.RefreshErrors).
		Msg("shutting down")

	if runErr != nil && ctx.Err() == nil {
		log.Error().Err(runErr).Msg("input closed")
	}
	_ = ctl.Clear()
	_ = drv.Close()
}

func openInput(s config.Serial) (io.ReadCloser, error) {
	if s.Port == "" || s.Port == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return serial.OpenPort(&serial.Config{Name: s.Port, Baud: s.Baud})
}
