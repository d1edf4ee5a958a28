package conflict

import (
	"testing"
	"time"

	"github.com/ppiankov/rightscan/internal/model"
)

func TestParseDate_KnownLayouts(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"2026-01-02", "2026-01-02"},
		{"2026/01/02", "2026-01-02"},
		{"01/02/2026", "2026-01-02"},
		{"January 2, 2026", "2026-01-02"},
		{"Jan 2, 2026", "2026-01-02"},
		{"2 January 2026", "2026-01-02"},
		{"  2026-01-02  ", "2026-01-02"},
	}

	for _, tc := range cases {
		got := ParseDate(tc.input)
		if got == nil {
			t.Errorf("ParseDate(%q) = nil, expected %s", tc.input, tc.want)
			continue
		}
		if got.Format("2006-01-02") != tc.want {
			t.Errorf("ParseDate(%q) = %s, expected %s", tc.input, got.Format("2006-01-02"), tc.want)
		}
	}
}

func TestParseDate_UnparseableDegradesToNil(t *testing.T) {
	for _, input := range []string{"", "Not specified", "N/A", "unknown", "sometime in 2026", "Q3 2026", "nan"} {
		if got := ParseDate(input); got != nil {
			t.Errorf("ParseDate(%q) = %v, expected nil", input, got)
		}
	}
}

func TestNormalize_PreservesOrderAndCardinality(t *testing.T) {
	engine := NewEngine()

	raw := []model.RawRecord{
		{Contract: "first.pdf", Territory: "US"},
		{Contract: "second.pdf"},
		{Contract: "third.pdf", LicenseStart: "garbage"},
	}

	records := engine.Normalize(raw)
	if len(records) != len(raw) {
		t.Fatalf("Expected %d records, got %d", len(raw), len(records))
	}
	for i, r := range records {
		if r.ContractID != raw[i].Contract {
			t.Errorf("Record %d: expected id %s, got %s", i, raw[i].Contract, r.ContractID)
		}
	}
	if records[2].LicenseStart != nil {
		t.Error("Expected unparseable date to normalize to nil")
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	engine := NewEngine()

	raw := []model.RawRecord{{Contract: "a.pdf", Exclusivity: "EXCLUSIVE", Territory: "Germany"}}
	before := raw[0]

	_ = engine.Normalize(raw)

	if raw[0] != before {
		t.Errorf("Normalize mutated its input: %+v vs %+v", raw[0], before)
	}
}

func TestNormalize_ExclusivityFallback(t *testing.T) {
	cases := []struct {
		input string
		want  model.Exclusivity
	}{
		{"exclusive", model.ExclusivityExclusive},
		{"Exclusive", model.ExclusivityExclusive},
		{" EXCLUSIVE ", model.ExclusivityExclusive},
		{"non-exclusive", model.ExclusivityNonExclusive},
		{"Non Exclusive", model.ExclusivityNonExclusive},
		{"nonexclusive", model.ExclusivityNonExclusive},
		{"sole and exclusive", model.ExclusivityUnknown},
		{"Not specified", model.ExclusivityUnknown},
		{"", model.ExclusivityUnknown},
	}

	for _, tc := range cases {
		if got := model.ParseExclusivity(tc.input); got != tc.want {
			t.Errorf("ParseExclusivity(%q) = %s, expected %s", tc.input, got, tc.want)
		}
	}
}

func TestNormalize_PlaceholderFieldsCollapseToEmpty(t *testing.T) {
	engine := NewEngine()

	raw := []model.RawRecord{{
		Contract:  "a.pdf",
		Territory: "Not specified",
		Holdback:  "N/A",
		Options:   "null",
	}}

	records := engine.Normalize(raw)
	r := records[0]

	if r.Territory != "" {
		t.Errorf("Expected placeholder territory to collapse, got %q", r.Territory)
	}
	if r.Holdback != "" {
		t.Errorf("Expected placeholder holdback to collapse, got %q", r.Holdback)
	}
	if r.Options != "" {
		t.Errorf("Expected placeholder options to collapse, got %q", r.Options)
	}
}

func TestNormalize_KeepsCasing(t *testing.T) {
	engine := NewEngine()

	raw := []model.RawRecord{{Contract: "a.pdf", Territory: "UniTed StaTes"}}
	records := engine.Normalize(raw)

	if records[0].Territory != "UniTed StaTes" {
		t.Errorf("Normalize must not rewrite casing, got %q", records[0].Territory)
	}
}

func TestNormalize_ISOTimestampLayout(t *testing.T) {
	got := ParseDate("2026-03-15T00:00:00Z")
	if got == nil {
		t.Fatal("Expected RFC3339 timestamp to parse")
	}
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
