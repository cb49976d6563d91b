package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaud       = 9600
	DefaultSettleMs   = 2000
	DefaultLineMax    = 64
	DefaultQueueDepth = 16
)

type Serial struct {
	Port     string `yaml:"port"`      // e.g. /dev/ttyACM0, COM3, "-" for stdin
	Baud     int    `yaml:"baud"`      // 9600
	SettleMs int    `yaml:"settle_ms"` // wait after open; boards reset on DTR
}

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0, or a spireg name for nrz
	SpeedHz int    `yaml:"speed_hz"` // e.g. 2400000
	ResetUs int    `yaml:"reset_us"` // e.g. 300
}

type Config struct {
	Serial     Serial `yaml:"serial"`
	Driver     string `yaml:"driver"` // "sim" | "nrz" | "spidev" | "console"
	ColorOrder string `yaml:"color_order"`
	SPI        SPI    `yaml:"spi,omitempty"`
	LineMax    int    `yaml:"line_max"`
	QueueDepth int    `yaml:"queue_depth"`
	LogLevel   string `yaml:"log_level"`
}

// Default returns the stock settings for an Uno-style board at 9600 baud.
func Default() *Config {
	return &Config{
		Serial: Serial{
			Baud:     DefaultBaud,
			SettleMs: DefaultSettleMs,
		},
		Driver:     "sim",
		ColorOrder: "GRB",
		LineMax:    DefaultLineMax,
		QueueDepth: DefaultQueueDepth,
		LogLevel:   "info",
	}
}

// Load reads path over Default, so omitted keys keep their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("serial.baud must be positive, got %d", c.Serial.Baud)
	}
	if c.Serial.SettleMs < 0 {
		return fmt.Errorf("serial.settle_ms must not be negative")
	}
	if c.LineMax < 8 {
		return fmt.Errorf("line_max must be at least 8, got %d", c.LineMax)
	}
	if c.QueueDepth < 1 {
		return fmt.Errorf("queue_depth must be at least 1, got %d", c.QueueDepth)
	}
	switch c.Driver {
	case "", "sim", "nrz", "spidev", "console":
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	return nil
}

func (s Serial) Settle() time.Duration { return time.Duration(s.SettleMs) * time.Millisecond }
