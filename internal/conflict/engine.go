// Package conflict implements the rights-conflict detection engine: given a
// batch of normalized rights records it finds pairwise exclusive-window
// overlaps, classifies each record, and computes aggregate counts. Every
// operation is a stateless pure transform - no I/O, no mutation of inputs.
package conflict

import (
	"strings"

	"github.com/ppiankov/rightscan/internal/model"
)

// Engine detects licensing-rights conflicts over a record batch
type Engine struct{}

// NewEngine creates a new conflict engine
func NewEngine() *Engine {
	return &Engine{}
}

// DetectConflicts scans every unordered record pair (i < j, input order) and
// reports a finding when all three hold:
//   - both territories present and equal under case-insensitive comparison
//   - all four window dates present and the windows overlap
//     (start1 <= end2 && start2 <= end1, inclusive)
//   - at least one side is an exclusive grant
//
// Records with a missing territory or an incomplete window never match
// anything; absence of data yields no finding rather than an error. The
// returned list follows discovery order, so it is deterministic for a given
// input order.
func (e *Engine) DetectConflicts(records []model.RightsRecord) []model.ConflictFinding {
	var findings []model.ConflictFinding

	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			r1, r2 := records[i], records[j]

			if !territoriesMatch(r1.Territory, r2.Territory) {
				continue
			}
			if !windowsOverlap(r1, r2) {
				continue
			}
			if r1.Exclusivity != model.ExclusivityExclusive && r2.Exclusivity != model.ExclusivityExclusive {
				continue
			}

			findings = append(findings, model.ConflictFinding{
				ContractA: r1.ContractID,
				ContractB: r2.ContractID,
				Territory: r1.Territory,
			})
		}
	}

	return findings
}

// territoriesMatch requires both sides present; two unknown territories are
// never considered the same territory.
func territoriesMatch(t1, t2 string) bool {
	if t1 == "" || t2 == "" {
		return false
	}
	return strings.EqualFold(t1, t2)
}

// windowsOverlap requires all four dates. A present start with a missing end
// is insufficient data, not an open-ended grant - no overlap is asserted.
// Inverted ranges (start after end) are tolerated, not validated: the two
// inequalities simply both have to hold.
func windowsOverlap(r1, r2 model.RightsRecord) bool {
	if r1.LicenseStart == nil || r1.LicenseEnd == nil || r2.LicenseStart == nil || r2.LicenseEnd == nil {
		return false
	}
	return !r1.LicenseStart.After(*r2.LicenseEnd) && !r2.LicenseStart.After(*r1.LicenseEnd)
}

// Classify assigns every record exactly one label with precedence
// CONFLICT > HOLDBACK > CLEAR. A record is CONFLICT iff it appears in at
// least one finding; otherwise HOLDBACK iff its holdback field is present.
func (e *Engine) Classify(records []model.RightsRecord, findings []model.ConflictFinding) map[string]model.Label {
	conflicted := make(map[string]bool, len(findings)*2)
	for _, f := range findings {
		conflicted[f.ContractA] = true
		conflicted[f.ContractB] = true
	}

	labels := make(map[string]model.Label, len(records))
	for _, r := range records {
		switch {
		case conflicted[r.ContractID]:
			labels[r.ContractID] = model.LabelConflict
		case HasHoldback(r.Holdback):
			labels[r.ContractID] = model.LabelHoldback
		default:
			labels[r.ContractID] = model.LabelClear
		}
	}

	return labels
}

// HasHoldback reports whether a holdback field carries an actual holdback.
// "none", "nan" and empty values mean no holdback applies.
func HasHoldback(holdback string) bool {
	switch strings.ToLower(strings.TrimSpace(holdback)) {
	case "", "none", "nan":
		return false
	default:
		return true
	}
}

// Summarize computes the aggregate counters for a record batch. The holdback
// count uses the same presence rule as classification, so the two numbers
// can never disagree.
func (e *Engine) Summarize(records []model.RightsRecord, findings []model.ConflictFinding) model.Summary {
	summary := model.Summary{
		TotalContracts: len(records),
		Conflicts:      len(findings),
	}

	for _, r := range records {
		if r.Exclusivity == model.ExclusivityExclusive {
			summary.ExclusiveDeals++
		}
		if HasHoldback(r.Holdback) {
			summary.Holdbacks++
		}
	}

	return summary
}
