package param

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/justyntemme/wreath/pkg/dsp/gain"
)

// FrequencyFormatter formats frequency values with Hz/kHz
func FrequencyFormatter(hz float64) string {
	if hz >= 1000 {
		return fmt.Sprintf("%.2f kHz", hz/1000)
	}
	return fmt.Sprintf("%.1f Hz", hz)
}

// FrequencyParser parses frequency strings such as "440", "440 Hz" or "2.5kHz"
func FrequencyParser(str string) (float64, error) {
	str = strings.ToLower(strings.TrimSpace(str))
	if num, ok := strings.CutSuffix(str, "khz"); ok {
		val, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return 0, err
		}
		return val * 1000, nil
	}
	str = strings.TrimSuffix(str, "hz")
	return strconv.ParseFloat(strings.TrimSpace(str), 64)
}

// PercentFormatter formats a 0-1 amount as a percentage
func PercentFormatter(value float64) string {
	return fmt.Sprintf("%.0f%%", value*100)
}

// PercentParser parses "50%" as 0.5. Values without a percent sign are taken as-is.
func PercentParser(str string) (float64, error) {
	str = strings.TrimSpace(str)
	if num, ok := strings.CutSuffix(str, "%"); ok {
		val, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return 0, err
		}
		return val / 100, nil
	}
	return strconv.ParseFloat(str, 64)
}

// SecondsFormatter formats seconds, switching to ms below one second
func SecondsFormatter(seconds float64) string {
	if seconds < 1 {
		return fmt.Sprintf("%.1f ms", seconds*1000)
	}
	return fmt.Sprintf("%.2f s", seconds)
}

// SecondsParser parses "250ms", "1.5s" or a bare number of seconds
func SecondsParser(str string) (float64, error) {
	str = strings.ToLower(strings.TrimSpace(str))
	if num, ok := strings.CutSuffix(str, "ms"); ok {
		val, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return 0, err
		}
		return val / 1000, nil
	}
	str = strings.TrimSuffix(str, "s")
	return strconv.ParseFloat(strings.TrimSpace(str), 64)
}

// RateFormatter formats a playback speed multiplier
func RateFormatter(rate float64) string {
	return fmt.Sprintf("%.2fx", rate)
}

// RateParser parses "0.5x" or "0.5"
func RateParser(str string) (float64, error) {
	str = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(str)), "x")
	return strconv.ParseFloat(strings.TrimSpace(str), 64)
}

// GainFormatter formats a linear gain in decibels
func GainFormatter(linear float64) string {
	if linear <= 0 {
		return "-inf dB"
	}
	return fmt.Sprintf("%.1f dB", gain.LinearToDb(linear))
}

// GainParser parses "-6 dB" as a linear gain of about 0.5. Values without a
// dB suffix are taken as linear.
func GainParser(str string) (float64, error) {
	str = strings.ToLower(strings.TrimSpace(str))
	num, ok := strings.CutSuffix(str, "db")
	if !ok {
		return strconv.ParseFloat(str, 64)
	}
	num = strings.TrimSpace(num)
	if num == "-inf" {
		return 0, nil
	}
	db, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, err
	}
	return gain.DbToLinear(db), nil
}

// SamplesFormatter formats a sample count
func SamplesFormatter(samples float64) string {
	return fmt.Sprintf("%.0f smp", samples)
}

// OnOffFormatter formats boolean as On/Off
func OnOffFormatter(value float64) string {
	if value > 0.5 {
		return "On"
	}
	return "Off"
}

// OnOffParser parses On/Off strings
func OnOffParser(str string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "on", "yes", "true", "1":
		return 1, nil
	case "off", "no", "false", "0":
		return 0, nil
	default:
		return 0, fmt.Errorf("expected 'on' or 'off', got: %s", str)
	}
}
