package extract

import (
	"regexp"
	"strings"
)

// Fields holds whatever the document rules managed to pull out of recognized
// text. Absent keys mean no rule matched; partial matches are never stored.
type Fields struct {
	VIN                string `json:"vin,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	Year               string `json:"year,omitempty"`
	Brand              string `json:"brand,omitempty"`
	Model              string `json:"model,omitempty"`
}

var (
	// 17 characters over the VIN alphabet (I, O, Q excluded), bounded so an
	// 18-character run does not match on its first 17 characters.
	vinRe = regexp.MustCompile(`(?:^|[^A-HJ-NPR-Z0-9])([A-HJ-NPR-Z0-9]{17})(?:[^A-HJ-NPR-Z0-9]|$)`)

	// Russian civilian plate: letter, 3 digits, 2 letters, 2-3 digit region
	// code, letters restricted to the 12 Cyrillic glyphs with Latin twins.
	plateRe = regexp.MustCompile(`[АВЕКМНОРСТУХ]\d{3}[АВЕКМНОРСТУХ]{2}\d{2,3}`)

	yearRe = regexp.MustCompile(`\b(19\d{2}|20[0-2]\d)\b`)

	dateRe = regexp.MustCompile(`\b(\d{2}\.\d{2}\.\d{4})\b`)
)

// ParseDocumentFields applies every field rule to the flattened text. Rules
// are independent: one field failing to match never blocks the others.
func ParseDocumentFields(text string) Fields {
	upper := strings.ToUpper(text)

	var fields Fields

	if m := vinRe.FindStringSubmatch(upper); m != nil {
		fields.VIN = m[1]
	}

	if m := plateRe.FindString(upper); m != "" {
		fields.RegistrationNumber = m
	}

	if m := yearRe.FindString(upper); m != "" {
		fields.Year = m
	}

	fields.Brand, fields.Model = parseBrandModel(text)

	return fields
}

// parseBrandModel scans line by line for labeled values. A keyword line
// without a colon contributes nothing; the first labeled line per field wins.
func parseBrandModel(text string) (brand, model string) {
	for _, line := range strings.Split(text, "\n") {
		upper := strings.ToUpper(line)

		if model == "" && (strings.Contains(upper, "МОДЕЛЬ") || strings.Contains(upper, "MODEL")) {
			model = valueAfterColon(line)
		}
		if brand == "" && (strings.Contains(upper, "МАРКА") || strings.Contains(upper, "BRAND")) {
			brand = valueAfterColon(line)
		}
	}
	return brand, model
}

func valueAfterColon(line string) string {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(line[idx+1:])
}

// ParseFirstDate returns the first dd.mm.yyyy token found in the text, or
// an empty string. Registration certificates print the issue date in this
// format.
func ParseFirstDate(text string) string {
	return dateRe.FindString(text)
}

// Missing lists the required document fields the parser failed to populate.
func (f Fields) Missing() []string {
	missing := []string{}
	if f.VIN == "" {
		missing = append(missing, "vin")
	}
	if f.RegistrationNumber == "" {
		missing = append(missing, "registration_number")
	}
	if f.Year == "" {
		missing = append(missing, "year")
	}
	if f.Brand == "" {
		missing = append(missing, "brand")
	}
	if f.Model == "" {
		missing = append(missing, "model")
	}
	return missing
}

// Count reports how many fields are populated.
func (f Fields) Count() int {
	return 5 - len(f.Missing())
}
