// Package province canonicalizes free-text province names to the codes the
// FBR gateway expects. Seller and buyer records arrive with inconsistent
// spellings ("KPK", "Khyber PakhtunKhwa", "Sindh "), so resolution is tiered:
// exact, case-insensitive, alias table, then substring either direction.
package province

import "strings"

// Province is one entry of the gateway's known-province list.
type Province struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// DefaultList mirrors the gateway's province reference data. Callers that
// fetch a fresher list from the gateway pass it to Resolve instead.
func DefaultList() []Province {
	return []Province{
		{Code: "2", Name: "Balochistan"},
		{Code: "4", Name: "Azad Jammu and Kashmir"},
		{Code: "5", Name: "Capital Territory"},
		{Code: "6", Name: "Khyber Pakhtunkhwa"},
		{Code: "7", Name: "Punjab"},
		{Code: "8", Name: "Sindh"},
		{Code: "9", Name: "Gilgit Baltistan"},
	}
}

var aliases = map[string]string{
	"kpk":               "Khyber Pakhtunkhwa",
	"kp":                "Khyber Pakhtunkhwa",
	"nwfp":              "Khyber Pakhtunkhwa",
	"ict":               "Capital Territory",
	"islamabad":         "Capital Territory",
	"federal":           "Capital Territory",
	"ajk":               "Azad Jammu and Kashmir",
	"kashmir":           "Azad Jammu and Kashmir",
	"gb":                "Gilgit Baltistan",
	"gilgit":            "Gilgit Baltistan",
	"gilgit-baltistan":  "Gilgit Baltistan",
	"baluchistan":       "Balochistan",
}

// Resolve maps a free-text province name to its canonical code. It returns
// "" when nothing matches; callers surface a warning, resolution failure is
// not an error.
func Resolve(input string, known []Province) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	// exact
	for _, p := range known {
		if p.Name == input {
			return p.Code
		}
	}

	// case-insensitive
	for _, p := range known {
		if strings.EqualFold(p.Name, input) {
			return p.Code
		}
	}

	// alias table
	if canonical, ok := aliases[strings.ToLower(input)]; ok {
		for _, p := range known {
			if strings.EqualFold(p.Name, canonical) {
				return p.Code
			}
		}
	}

	// substring, either direction
	lower := strings.ToLower(input)
	for _, p := range known {
		name := strings.ToLower(p.Name)
		if strings.Contains(name, lower) || strings.Contains(lower, name) {
			return p.Code
		}
	}

	return ""
}
