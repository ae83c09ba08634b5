package extract

import (
	"strings"
	"testing"
)

func TestParseExtraction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    map[string]string
		wantErr string
	}{
		{
			name:    "plain object",
			content: `{"lossDate": "2026-03-14", "lossType": "PropertyDamage"}`,
			want:    map[string]string{"lossDate": "2026-03-14", "lossType": "PropertyDamage"},
		},
		{
			name: "fenced json",
			content: "```json\n" + `{"lossDate": "2026-03-14"}` + "\n```",
			want: map[string]string{"lossDate": "2026-03-14"},
		},
		{
			name:    "prose around json",
			content: `Here is the extraction: {"claimantName": "Jane Doe"} Hope that helps.`,
			want:    map[string]string{"claimantName": "Jane Doe"},
		},
		{
			name:    "nulls dropped",
			content: `{"lossDate": null, "lossType": "Liability", "contactPhone": null}`,
			want:    map[string]string{"lossType": "Liability"},
		},
		{
			name:    "number formatting",
			content: `{"estimatedDamageAmount": 15000.50}`,
			want:    map[string]string{"estimatedDamageAmount": "15000.5"},
		},
		{
			name:    "whole number",
			content: `{"estimatedDamageAmount": 15000}`,
			want:    map[string]string{"estimatedDamageAmount": "15000"},
		},
		{
			name:    "unknown field rejected",
			content: `{"lossDate": "2026-03-14", "policyLimit": "100000"}`,
			wantErr: "unknown field",
		},
		{
			name:    "unsupported type rejected",
			content: `{"lossDate": ["2026-03-14"]}`,
			wantErr: "unsupported type",
		},
		{
			name:    "not json",
			content: "I could not find any fields in the document.",
			wantErr: "parse extraction response",
		},
		{
			name:    "empty object",
			content: `{}`,
			want:    map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseExtraction(tt.content)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error %q does not contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseExtraction: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d values, want %d: %v", len(got), len(tt.want), got)
			}
			for name, want := range tt.want {
				if got[name] != want {
					t.Errorf("%s = %q, want %q", name, got[name], want)
				}
			}
		})
	}
}

func TestConfidenceFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		field string
		value string
		want  float64
	}{
		{"parseable date", "lossDate", "2026-03-14", 0.95},
		{"unparseable date", "lossDate", "mid March", 0.85},
		{"damage amount", "estimatedDamageAmount", "15000", 0.90},
		{"short text", "claimantName", "Jane Doe", 0.85},
		{"medium text", "lossLocation", strings.Repeat("a", 60), 0.80},
		{"long text", "lossDescription", strings.Repeat("a", 250), 0.75},
	}
	for _, tt := range tests {
		if got := confidenceFor(tt.field, tt.value); got != tt.want {
			t.Errorf("%s: confidenceFor = %v, want %v", tt.name, got, tt.want)
		}
	}
}
