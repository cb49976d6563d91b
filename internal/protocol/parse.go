package protocol

import (
	"fmt"
	"strings"

	"github.com/coreman2200/funtimes-segmentlight/internal/strip"
)

const maxDigits = 3

func isSep(r rune) bool {
	return r == ' ' || r == '\t' || r == ','
}

// Parse turns one line into a validated Command. Trailing CR/LF is ignored.
// Nothing is applied here; callers apply only on a nil error.
func Parse(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.FieldsFunc(line, isSep)
	if len(fields) == 0 {
		return Command{}, ErrEmpty
	}

	var (
		cmd Command
		err error
	)
	switch strings.ToUpper(fields[0]) {
	case "S":
		cmd, err = parseSegment(fields[1:])
	case "P":
		cmd, err = parsePixel(fields[1:])
	case "A":
		cmd, err = parseAll(fields[1:])
	default:
		switch {
		case len(fields) == 1 && fields[0] == "0":
			cmd = AllOff()
		case len(fields) == 1 && fields[0] == "1":
			cmd = AllWhite()
		case len(fields) == 4:
			cmd, err = parseSegment(fields)
		default:
			err = fmt.Errorf("%d tokens: %w", len(fields), ErrMalformed)
		}
	}
	if err != nil {
		return Command{}, err
	}
	if err := cmd.Validate(); err != nil {
		return Command{}, err
	}
	return cmd, nil
}

func parseSegment(tok []string) (Command, error) {
	if len(tok) != 4 {
		return Command{}, fmt.Errorf("segment wants 4 values, got %d: %w", len(tok), ErrMalformed)
	}
	seg, err := parseNum(tok[0], strip.NumSegments-1)
	if err != nil {
		return Command{}, fmt.Errorf("segment: %w", err)
	}
	c, err := parseRGB(tok[1:])
	if err != nil {
		return Command{}, err
	}
	return SetSegment(seg, c), nil
}

func parsePixel(tok []string) (Command, error) {
	if len(tok) != 5 {
		return Command{}, fmt.Errorf("pixel wants 5 values, got %d: %w", len(tok), ErrMalformed)
	}
	seg, err := parseNum(tok[0], strip.NumSegments-1)
	if err != nil {
		return Command{}, fmt.Errorf("segment: %w", err)
	}
	idx, err := parseNum(tok[1], strip.NumPixels-1)
	if err != nil {
		return Command{}, fmt.Errorf("pixel: %w", err)
	}
	c, err := parseRGB(tok[2:])
	if err != nil {
		return Command{}, err
	}
	return SetPixel(seg, idx, c), nil
}

func parseAll(tok []string) (Command, error) {
	if len(tok) != 3 {
		return Command{}, fmt.Errorf("all wants 3 values, got %d: %w", len(tok), ErrMalformed)
	}
	c, err := parseRGB(tok)
	if err != nil {
		return Command{}, err
	}
	return SetAll(c), nil
}

func parseRGB(tok []string) (strip.RGB, error) {
	var ch [3]uint8
	for i, name := range [3]string{"red", "green", "blue"} {
		v, err := parseNum(tok[i], 255)
		if err != nil {
			return strip.RGB{}, fmt.Errorf("%s: %w", name, err)
		}
		ch[i] = uint8(v)
	}
	return strip.RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
}

// parseNum accepts plain decimal digits only: no sign, no spaces, no hex.
func parseNum(s string, max int) (int, error) {
	if s == "" {
		return 0, ErrMalformed
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%q: %w", s, ErrMalformed)
		}
	}
	if len(s) > maxDigits {
		return 0, fmt.Errorf("%q: %w", s, ErrOutOfRange)
	}
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	if n > max {
		return 0, fmt.Errorf("%d > %d: %w", n, max, ErrOutOfRange)
	}
	return n, nil
}
