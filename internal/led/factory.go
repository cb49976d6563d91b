package led

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Driver kinds accepted by Open.
const (
	KindSim     = "sim"
	KindNRZ     = "nrz"
	KindSPIDev  = "spidev"
	KindConsole = "console"
)

type Options struct {
	Kind       string
	Count      int
	ColorOrder string
	SPIDev     string
	SpeedHz    int
	ResetUs    int
}

// Open builds the requested driver. Hardware that fails to initialize falls back
// to the console drawer with a warning; the returned kind is what actually runs.
func Open(o Options, log zerolog.Logger) (Driver, string, error) {
	switch o.Kind {
	case KindSim, "":
		return NewSim(o.Count), KindSim, nil

	case KindConsole:
		return NewConsole(o.Count), KindConsole, nil

	case KindNRZ:
		dev := o.SPIDev
		d, err := OpenNRZ(dev, o.Count, o.SpeedHz)
		if err != nil {
			log.Warn().Err(err).
				Str("driver", KindNRZ).
				Str("dev", dev).
				Msg("Failed to find a SPI port, printing at the console")
			return NewConsole(o.Count), KindConsole, nil
		}
		return d, KindNRZ, nil

	case KindSPIDev:
		order, err := ParseOrder(o.ColorOrder)
		if err != nil {
			return nil, "", err
		}
		dev := o.SPIDev
		if dev == "" {
			dev = "/dev/spidev0.0"
		}
		d, err := NewSPI(dev, o.Count, order, o.SpeedHz, o.ResetUs)
		if err != nil {
			log.Warn().Err(err).
				Str("driver", KindSPIDev).
				Str("dev", dev).
				Int("speed_hz", o.SpeedHz).
				Msg("SPI init failed; falling back to console")
			return NewConsole(o.Count), KindConsole, nil
		}
		return d, KindSPIDev, nil
	}
	return nil, "", fmt.Errorf("unknown driver %q", o.Kind)
}
