package llm

import (
	"context"
	"testing"
	"time"

	"github.com/ppiankov/rightscan/internal/cache"
	"github.com/ppiankov/rightscan/internal/model"
)

// MockProvider implements the Provider interface for testing
type MockProvider struct {
	name      string
	available bool
	response  *ExtractResponse
	err       error
	calls     int
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	resp := *m.response
	resp.Record.Contract = req.ContractID
	return &resp, nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return m.available
}

func TestNewExtractor_DisabledProvider(t *testing.T) {
	extractor, err := NewExtractor(Config{Provider: ""}, nil, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if extractor.IsEnabled() {
		t.Error("expected extractor to be disabled")
	}
	if extractor.ProviderName() != "" {
		t.Error("expected empty provider name when disabled")
	}

	if _, _, err := extractor.ExtractRecord(context.Background(), "a.pdf", "text"); err == nil {
		t.Error("expected error when extracting with no provider")
	}
}

func TestNewExtractor_UnknownProvider(t *testing.T) {
	if _, err := NewExtractor(Config{Provider: "bard"}, nil, nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestExtractor_CachesResults(t *testing.T) {
	mock := &MockProvider{
		name: "mock",
		response: &ExtractResponse{
			Record: model.RawRecord{Territory: "Germany", Exclusivity: "exclusive"},
			Model:  "mock-1",
		},
	}

	extractor := &Extractor{
		provider: mock,
		store:    cache.NewMemoryCache(time.Minute),
		config:   Config{Model: "mock-1"},
	}

	text := "Exclusive SVOD rights in Germany."

	record, cached, err := extractor.ExtractRecord(context.Background(), "a.pdf", text)
	if err != nil {
		t.Fatalf("first extract failed: %v", err)
	}
	if cached {
		t.Error("first call must not be cached")
	}
	if record.Territory != "Germany" {
		t.Errorf("expected Germany, got %s", record.Territory)
	}

	// Same text under a different filename hits the cache with the new id
	record2, cached2, err := extractor.ExtractRecord(context.Background(), "b.pdf", text)
	if err != nil {
		t.Fatalf("second extract failed: %v", err)
	}
	if !cached2 {
		t.Error("second call should be served from cache")
	}
	if record2.Contract != "b.pdf" {
		t.Errorf("expected cached record rebound to b.pdf, got %s", record2.Contract)
	}
	if mock.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", mock.calls)
	}
}

func TestExtractor_NoCacheCallsProviderEachTime(t *testing.T) {
	mock := &MockProvider{
		name:     "mock",
		response: &ExtractResponse{Record: model.RawRecord{Territory: "US"}},
	}

	extractor := &Extractor{provider: mock}

	for i := 0; i < 2; i++ {
		if _, _, err := extractor.ExtractRecord(context.Background(), "a.pdf", "text"); err != nil {
			t.Fatalf("extract %d failed: %v", i, err)
		}
	}

	if mock.calls != 2 {
		t.Errorf("expected 2 provider calls without cache, got %d", mock.calls)
	}
}

func TestConfigFromModel(t *testing.T) {
	cfg := ConfigFromModel(model.LLMConfig{
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		APIKey:    "sk-test",
		Timeout:   15,
		MaxTokens: 500,
	})

	if cfg.Provider != "openai" || cfg.Model != "gpt-4o-mini" || cfg.APIKey != "sk-test" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Timeout != 15 || cfg.MaxTokens != 500 {
		t.Errorf("unexpected limits: %+v", cfg)
	}
}

func TestNewProvider_Factory(t *testing.T) {
	cases := []struct {
		provider  string
		apiKey    string
		expectErr bool
		expectNil bool
	}{
		{"", "", false, true},
		{"openai", "", true, false},
		{"openai", "sk-test", false, false},
		{"anthropic", "sk-ant", false, false},
		{"claude", "sk-ant", false, false},
		{"ollama", "", false, false},
		{"bard", "", true, false},
	}

	for _, tc := range cases {
		p, err := NewProvider(Config{Provider: tc.provider, APIKey: tc.apiKey})
		if tc.expectErr && err == nil {
			t.Errorf("provider %q: expected error", tc.provider)
		}
		if !tc.expectErr && err != nil {
			t.Errorf("provider %q: unexpected error %v", tc.provider, err)
		}
		if tc.expectNil && p != nil {
			t.Errorf("provider %q: expected nil provider", tc.provider)
		}
	}
}
