package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-segmentlight/internal/client"
	"github.com/coreman2200/funtimes-segmentlight/internal/config"
	"github.com/coreman2200/funtimes-segmentlight/internal/protocol"
	"github.com/coreman2200/funtimes-segmentlight/internal/strip"
	"github.com/coreman2200/funtimes-segmentlight/internal/tui"
)

var (
	portFlag   string
	baudFlag   int
	configFlag string
	settleFlag time.Duration
	verbose    bool
)

// session is the open bridge and panel for one command invocation.
type session struct {
	bridge *client.Bridge
	panel  *client.Panel
}

var current *session

var rootCmd = &cobra.Command{
	Use:           "segctl",
	Short:         "Send segment colours to a 44-LED strip controller over serial",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := zerolog.WarnLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		zerolog.SetGlobalLevel(level)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

		cfg, err := config.Load(configFlag)
		if err != nil {
			if cmd.Flags().Changed("config") {
				return err
			}
			cfg = config.Default()
		}
		if cmd.Flags().Changed("port") {
			cfg.Serial.Port = portFlag
		}
		if cmd.Flags().Changed("baud") {
			cfg.Serial.Baud = baudFlag
		}
		settle := cfg.Serial.Settle()
		if cmd.Flags().Changed("settle") {
			settle = settleFlag
		}
		if cfg.Serial.Port == "" {
			return fmt.Errorf("no serial port: pass --port or set serial.port in %s", configFlag)
		}

		b := client.NewBridge(client.WithSettle(settle), client.WithLogger(log.Logger))
		if err := b.Open(cfg.Serial.Port, cfg.Serial.Baud); err != nil {
			return err
		}
		current = &session{bridge: b, panel: client.NewPanel(b)}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current != nil {
			_ = current.bridge.Close()
		}
	},
}

var setCmd = &cobra.Command{
	Use:   "set SEG R G B",
	Short: "Set one segment to a colour",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := ints(args)
		if err != nil {
			return err
		}
		return report(cmd, current.panel.Set(n[0], n[1], n[2], n[3]))
	},
}

var pixelCmd = &cobra.Command{
	Use:   "pixel SEG IDX R G B",
	Short: "Set one LED, indexed within its segment",
	Args:  cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := ints(args)
		if err != nil {
			return err
		}
		c := strip.RGB{R: client.Clamp(n[2]), G: client.Clamp(n[3]), B: client.Clamp(n[4])}
		line, err := current.bridge.Send(protocol.SetPixel(n[0], n[1], c))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Sent:", line)
		return nil
	},
}

var allCmd = &cobra.Command{
	Use:   "all R G B",
	Short: "Set every LED to a colour",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := ints(args)
		if err != nil {
			return err
		}
		return report(cmd, current.panel.AllColor(n[0], n[1], n[2]))
	},
}

var onCmd = &cobra.Command{
	Use:   "on",
	Short: "Turn every LED full white",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return report(cmd, current.panel.AllWhite())
	},
}

var offCmd = &cobra.Command{
	Use:   "off",
	Short: "Turn every LED off",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return report(cmd, current.panel.AllOff())
	},
}

var segOnCmd = &cobra.Command{
	Use:   "segment-on SEG",
	Short: "Turn one segment full white",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := ints(args)
		if err != nil {
			return err
		}
		return report(cmd, current.panel.On(n[0]))
	},
}

var segOffCmd = &cobra.Command{
	Use:   "segment-off SEG",
	Short: "Turn one segment off",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := ints(args)
		if err != nil {
			return err
		}
		return report(cmd, current.panel.Off(n[0]))
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive segment colour picker",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Keep log lines from tearing the picker.
		zerolog.SetGlobalLevel(zerolog.Disabled)
		return tui.Run(current.panel, "segctl on "+current.bridge.Name())
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&portFlag, "port", "p", "", "serial port (e.g. /dev/ttyACM0, COM3)")
	pf.IntVarP(&baudFlag, "baud", "b", 9600, "baud rate")
	pf.StringVarP(&configFlag, "config", "c", "segments.yaml", "path to YAML config")
	pf.DurationVar(&settleFlag, "settle", 2*time.Second, "wait after opening for the board to reset")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log every line sent")

	rootCmd.AddCommand(setCmd, pixelCmd, allCmd, onCmd, offCmd, segOnCmd, segOffCmd, tuiCmd)
}

func ints(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d (%q) is not an integer", i+1, a)
		}
		out[i] = n
	}
	return out, nil
}

func report(cmd *cobra.Command, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), current.panel.Status())
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
