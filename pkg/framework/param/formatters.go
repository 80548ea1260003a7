package param

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/justyntemme/fadervst/pkg/dsp/gain"
)

// Common parameter formatters and parsers

// LinearGainFormatter formats a linear gain factor with its level in dB.
func LinearGainFormatter(value float64) string {
	if value <= 0 {
		return "0.00 (-∞ dB)"
	}
	return fmt.Sprintf("%.2f (%.1f dB)", value, gain.LinearToDb(value))
}

// LinearGainParser parses a linear gain factor, or a level with a dB suffix.
func LinearGainParser(str string) (float64, error) {
	str = strings.TrimSpace(str)
	if i := strings.IndexByte(str, '('); i >= 0 {
		str = strings.TrimSpace(str[:i])
	}

	lower := strings.ToLower(str)
	if strings.HasSuffix(lower, "db") {
		numStr := strings.TrimSpace(str[:len(str)-2])
		if strings.Contains(numStr, "∞") || strings.EqualFold(numStr, "-inf") {
			return 0, nil
		}
		db, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return 0, err
		}
		return gain.DbToLinear(db), nil
	}
	return strconv.ParseFloat(str, 64)
}

// PercentFormatter formats a 0-1 value as a percentage
func PercentFormatter(value float64) string {
	return fmt.Sprintf("%.0f%%", value*100)
}

// PercentParser parses percentage strings back to 0-1
func PercentParser(str string) (float64, error) {
	str = strings.TrimSuffix(strings.TrimSpace(str), "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return 0, err
	}
	return v / 100, nil
}

// SecondsFormatter formats a duration given in seconds
func SecondsFormatter(seconds float64) string {
	if seconds < 1 {
		return fmt.Sprintf("%.0f ms", seconds*1000)
	}
	return fmt.Sprintf("%.2f s", seconds)
}

// SecondsParser parses "1.5", "1.5 s" or "250 ms" into seconds
func SecondsParser(str string) (float64, error) {
	str = strings.TrimSpace(str)

	if strings.HasSuffix(str, "ms") {
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(str, "ms")), 64)
		if err != nil {
			return 0, err
		}
		return v / 1000, nil
	}

	str = strings.TrimSuffix(str, "s")
	return strconv.ParseFloat(strings.TrimSpace(str), 64)
}

// OnOffFormatter formats toggle values
func OnOffFormatter(value float64) string {
	if value >= 0.5 {
		return "On"
	}
	return "Off"
}

// OnOffParser parses toggle strings
func OnOffParser(str string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "on", "true", "yes", "1":
		return 1, nil
	case "off", "false", "no", "0":
		return 0, nil
	}
	return 0, fmt.Errorf("invalid on/off value %q", str)
}
