package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Odometer rules run in fixed priority: a number next to a distance unit is
// trusted most, a labeled number second, a bare 4-6 digit run last. The bare
// run is a best-effort fallback and can false-positive on years or VIN
// fragments elsewhere in the frame, which is why it must never shadow the
// qualified rules.
var odometerRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)*)\s*(?:км|km|к\.м\.)`),
	regexp.MustCompile(`(?i)(?:пробег|одометр|odo)\s*:?\s*(\d+(?:[.,]\d+)*)`),
	regexp.MustCompile(`\b(\d{4,6})\b`),
}

// ParseOdometer extracts a reading from instrument-panel text. A nil result
// means no rule matched, which is not an error.
func ParseOdometer(text string) *int {
	for _, rule := range odometerRules {
		m := rule.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		digits := strings.NewReplacer(".", "", ",", "").Replace(m[1])
		value, err := strconv.Atoi(digits)
		if err != nil {
			continue
		}
		return &value
	}
	return nil
}

// ContainsDigits reports whether the recognized text has any digit at all.
// Panel photos with zero digits are almost always misaimed shots.
func ContainsDigits(text string) bool {
	return strings.ContainsAny(text, "0123456789")
}
