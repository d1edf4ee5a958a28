package model

import "time"

// Report represents the complete rightscan analysis output for one batch
type Report struct {
	AnalyzedAt time.Time `json:"analyzed_at"` // When the analysis ran
	Sources    []string  `json:"sources"`     // Documents that fed the batch

	Records         []RightsRecord    `json:"records"`         // Normalized rights records
	Findings        []ConflictFinding `json:"findings"`        // Detected exclusive overlaps
	Classifications map[string]Label  `json:"classifications"` // contract_id -> label
	Summary         Summary           `json:"summary"`         // Aggregate counts

	Failures []DocumentFailure `json:"failures,omitempty"` // Per-document extraction failures

	LLM *LLMInfo `json:"llm,omitempty"` // Extraction provenance (nil when records came pre-structured)
}

// Summary holds the four aggregate counters shown at the top of every report
type Summary struct {
	TotalContracts int `json:"total_contracts"`
	ExclusiveDeals int `json:"exclusive_deals"`
	Holdbacks      int `json:"holdbacks"`
	Conflicts      int `json:"conflicts"`
}

// DocumentFailure records a single document that could not be processed.
// The rest of the batch continues; failures never abort a run.
type DocumentFailure struct {
	Source string `json:"source"`          // File path or identifier
	Stage  string `json:"stage"`           // "read", "extract", "llm"
	Error  string `json:"error,omitempty"` // Human-readable cause
}

// LLMInfo records which provider produced the structured fields
type LLMInfo struct {
	Provider string   `json:"provider"`           // openai, anthropic, ollama
	Model    string   `json:"model,omitempty"`    // Model name
	Cached   int      `json:"cached"`             // Extractions served from cache
	Warnings []string `json:"warnings,omitempty"` // Non-fatal extraction issues
}
