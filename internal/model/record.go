package model

import (
	"strings"
	"time"
)

// RawRecord holds the licensing-rights fields exactly as they come back from
// an LLM extraction (or a pre-structured JSON file): all string-valued, any
// field may be missing. It is deliberately kept apart from the typed
// RightsRecord so untrusted external JSON never reaches the engine directly.
type RawRecord struct {
	Contract       string `json:"contract"`
	RightsType     string `json:"rights_type,omitempty"`
	Territory      string `json:"territory,omitempty"`
	Exclusivity    string `json:"exclusivity,omitempty"`
	LicenseStart   string `json:"license_start,omitempty"`
	LicenseEnd     string `json:"license_end,omitempty"`
	Holdback       string `json:"holdback,omitempty"`
	MusicClearance string `json:"music_clearance,omitempty"`
	Options        string `json:"options,omitempty"`
}

// RightsRecord is one contract's extracted licensing-rights attributes after
// normalization. Optional string fields use "" for absent; dates are nil when
// missing or unparseable. Strings keep their original casing - comparisons
// are case-insensitive at comparison time, not at storage time.
type RightsRecord struct {
	ContractID     string      `json:"contract_id"`
	RightsType     string      `json:"rights_type,omitempty"`
	Territory      string      `json:"territory,omitempty"`
	Exclusivity    Exclusivity `json:"exclusivity"`
	LicenseStart   *time.Time  `json:"license_start,omitempty"`
	LicenseEnd     *time.Time  `json:"license_end,omitempty"`
	Holdback       string      `json:"holdback,omitempty"`
	MusicClearance string      `json:"music_clearance,omitempty"`
	Options        string      `json:"options,omitempty"`
}

// Exclusivity classifies a license grant
type Exclusivity string

const (
	ExclusivityExclusive    Exclusivity = "exclusive"
	ExclusivityNonExclusive Exclusivity = "non-exclusive"
	ExclusivityUnknown      Exclusivity = "unknown"
)

// ParseExclusivity maps free-form exclusivity strings onto the closed enum.
// Unrecognized values (including "Not specified" placeholders) fall back to
// unknown rather than erroring.
func ParseExclusivity(s string) Exclusivity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exclusive":
		return ExclusivityExclusive
	case "non-exclusive", "non exclusive", "nonexclusive":
		return ExclusivityNonExclusive
	default:
		return ExclusivityUnknown
	}
}

// ConflictFinding is an unordered pair of contracts whose exclusive license
// windows overlap in the same territory. Findings are computed fresh on every
// run and never persisted.
type ConflictFinding struct {
	ContractA string `json:"contract_a"`
	ContractB string `json:"contract_b"`
	Territory string `json:"territory"`
}

// String renders the finding the way reports display it
func (f ConflictFinding) String() string {
	return f.ContractA + " ↔ " + f.ContractB + " (Exclusive overlap in " + f.Territory + ")"
}

// Involves reports whether the finding references the given contract
func (f ConflictFinding) Involves(contractID string) bool {
	return f.ContractA == contractID || f.ContractB == contractID
}

// Label is the per-record classification
type Label string

const (
	LabelConflict Label = "CONFLICT" // appears in at least one finding
	LabelHoldback Label = "HOLDBACK" // no conflict, but a holdback window applies
	LabelClear    Label = "CLEAR"    // neither
)
