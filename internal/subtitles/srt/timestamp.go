package srt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const rangeSeparator = " --> "

// FormatTimestamp renders seconds as HH:MM:SS,mmm. Hours are not capped.
// Milliseconds are round((s - floor(s)) * 1000); a rounded value of 1000
// carries into the seconds field so the millisecond field stays three digits.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	whole := math.Floor(seconds)
	millis := int64(math.Round((seconds - whole) * 1000))
	total := int64(whole)
	if millis >= 1000 {
		total++
		millis -= 1000
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// ParseTimestamp parses HH:MM:SS,mmm into seconds. A '.' millisecond
// separator is accepted as well.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.Replace(value, ".", ",", 1)
	clock, fraction, ok := strings.Cut(value, ",")
	if !ok {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(clock, ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := parseField(hms[0])
	minutes, errM := parseField(hms[1])
	secs, errS := parseField(hms[2])
	millis, errMS := parseField(fraction)
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if minutes > 59 || secs > 59 || millis > 999 {
		return 0, fmt.Errorf("timestamp %q out of range", value)
	}
	totalMillis := ((hours*60+minutes)*60+secs)*1000 + millis
	// Dividing the exact millisecond count keeps the value identical to the
	// decimal literal it was rendered from.
	return float64(totalMillis) / 1000, nil
}

func parseField(value string) (int64, error) {
	if value == "" {
		return 0, fmt.Errorf("empty field")
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-digit %q", r)
		}
	}
	return strconv.ParseInt(value, 10, 64)
}

// ParseRange parses a "start --> end" line.
func ParseRange(line string) (float64, float64, error) {
	left, right, ok := strings.Cut(line, "-->")
	if !ok {
		return 0, 0, fmt.Errorf("missing range separator in %q", line)
	}
	start, err := ParseTimestamp(left)
	if err != nil {
		return 0, 0, err
	}
	// Cue settings may follow the end timestamp.
	right = strings.TrimSpace(right)
	if fields := strings.Fields(right); len(fields) > 0 {
		right = fields[0]
	}
	end, err := ParseTimestamp(right)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// FormatRange renders a cue time range line.
func FormatRange(start, end float64) string {
	return FormatTimestamp(start) + rangeSeparator + FormatTimestamp(end)
}
