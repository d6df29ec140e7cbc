package openai_provider

import (
	"testing"
)

func TestParseSummaryJSON(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		in        string
		wantTitle string
		wantErr   bool
	}{
		{
			name:      "plain json",
			in:        `{"title":"T","key_points":["a","b"],"concise_summary":"s"}`,
			wantTitle: "T",
		},
		{
			name:      "fenced json",
			in:        "```json\n{\"title\":\"T\",\"key_points\":[],\"concise_summary\":\"s\"}\n```",
			wantTitle: "T",
		},
		{
			name:      "json with leading prose",
			in:        "Here is the summary:\n{\"title\":\"T\",\"key_points\":[\"a\"],\"concise_summary\":\"s\"}",
			wantTitle: "T",
		},
		{
			name:    "not json",
			in:      "sorry, I cannot do that",
			wantErr: true,
		},
		{
			name:    "empty object",
			in:      `{}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSummaryJSON(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSummaryJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got.Title != tt.wantTitle {
				t.Fatalf("parseSummaryJSON() title = %q, want %q", got.Title, tt.wantTitle)
			}
		})
	}
}
