package conflict

import (
	"strings"
	"time"

	"github.com/ppiankov/rightscan/internal/model"
)

// dateLayouts are tried in order when parsing free-form license dates.
// LLM extractions are asked for ISO dates but real responses drift.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"01-02-2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2006-01-02T15:04:05Z07:00",
}

// notSpecified matches the placeholder values LLMs return for absent fields
var notSpecified = map[string]bool{
	"":              true,
	"not specified": true,
	"n/a":           true,
	"na":            true,
	"none":          true,
	"null":          true,
	"unknown":       true,
	"nan":           true,
}

// Normalize converts raw extraction output into typed rights records. Date
// parsing is best effort: an unparseable date degrades to nil, never an
// error. Output preserves input order and cardinality; the input is not
// mutated. Field casing is kept as-is.
func (e *Engine) Normalize(raw []model.RawRecord) []model.RightsRecord {
	records := make([]model.RightsRecord, 0, len(raw))

	for _, r := range raw {
		records = append(records, model.RightsRecord{
			ContractID:     strings.TrimSpace(r.Contract),
			RightsType:     cleanField(r.RightsType),
			Territory:      cleanField(r.Territory),
			Exclusivity:    model.ParseExclusivity(r.Exclusivity),
			LicenseStart:   ParseDate(r.LicenseStart),
			LicenseEnd:     ParseDate(r.LicenseEnd),
			Holdback:       cleanField(r.Holdback),
			MusicClearance: cleanField(r.MusicClearance),
			Options:        cleanField(r.Options),
		})
	}

	return records
}

// cleanField trims a field and collapses "Not specified"-style placeholders
// to empty so the engine treats them as absent
func cleanField(s string) string {
	s = strings.TrimSpace(s)
	if notSpecified[strings.ToLower(s)] {
		return ""
	}
	return s
}

// ParseDate parses a free-form date string, returning nil when the value is
// absent, a placeholder, or matches no known layout.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if notSpecified[strings.ToLower(s)] {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	return nil
}
