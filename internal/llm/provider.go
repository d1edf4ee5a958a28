// Package llm turns free-form contract text into structured rights fields
// using a pluggable language-model provider. Everything downstream of the
// RawRecord boundary is deterministic; this package owns the one
// nondeterministic, failure-prone step.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/rightscan/internal/model"
)

// Provider defines the interface for LLM field-extraction providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Extract pulls structured licensing-rights fields out of contract text
	Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ExtractRequest contains the input for one field extraction
type ExtractRequest struct {
	// ContractID identifies the source document (becomes the record's contract_id)
	ContractID string

	// Text is the contract text to analyze
	Text string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ExtractResponse contains the structured fields the model produced
type ExtractResponse struct {
	// Record holds the extracted fields, still loosely typed
	Record model.RawRecord

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "",
		Timeout:   30,
		MaxTokens: 1000,
	}
}

// systemPrompt frames every extraction call
const systemPrompt = "You are a contract analyst that extracts licensing-rights fields from media contracts and answers with a single JSON object, nothing else."

// BuildPrompt constructs the default extraction prompt for one contract
func BuildPrompt(contractID, text string) string {
	return fmt.Sprintf(`Extract the licensing-rights fields from the contract below.

Answer with ONLY a JSON object with exactly these keys:
{
  "rights_type": "...",
  "territory": "...",
  "exclusivity": "...",
  "license_start": "...",
  "license_end": "...",
  "holdback": "...",
  "music_clearance": "...",
  "options": "..."
}

Rules:
1. Dates must be in YYYY-MM-DD format.
2. "exclusivity" must be "exclusive" or "non-exclusive" when the contract says so.
3. Use the string "Not specified" for any field the contract does not state.
4. Do not invent values. Do not add keys. Do not wrap the JSON in prose.

Contract (%s):
---
%s
---`, contractID, text)
}

// ParseRecord extracts a RawRecord from a raw model response. Models wrap
// JSON in code fences or prose often enough that we locate the outermost
// object instead of unmarshaling the response directly. Missing keys simply
// stay empty; a response with no parseable JSON object is an error for this
// one contract only.
func ParseRecord(contractID, response string) (model.RawRecord, error) {
	record := model.RawRecord{Contract: contractID}

	payload := extractJSONObject(response)
	if payload == "" {
		return record, fmt.Errorf("no JSON object in model response")
	}

	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return record, fmt.Errorf("unmarshal model response: %w", err)
	}

	// The model must not override the document identity
	record.Contract = contractID
	return record, nil
}

// extractJSONObject returns the first balanced top-level {...} in the text,
// or "" when none exists. Braces inside JSON strings are accounted for.
func extractJSONObject(text string) string {
	text = stripCodeFences(text)

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if escaped {
			escaped = false
			continue
		}

		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}

	return ""
}

// stripCodeFences removes markdown ``` fences around a response
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
