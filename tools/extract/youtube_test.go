package extract

import (
	"strings"
	"testing"
)

func TestLongestDescription(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		candidates []string
		want       string
	}{
		{
			name:       "longest wins regardless of order",
			candidates: []string{"short", "a much longer description text"},
			want:       "a much longer description text",
		},
		{
			name:       "ties broken by earliest source",
			candidates: []string{"first", "fifth"},
			want:       "first",
		},
		{
			name:       "failed attempts contribute empty candidates",
			candidates: []string{"", "only survivor", ""},
			want:       "only survivor",
		},
		{
			name:       "whitespace-only candidates are empty",
			candidates: []string{"   \n\t  ", "real"},
			want:       "real",
		},
		{
			name:       "all empty",
			candidates: []string{"", ""},
			want:       "",
		},
		{
			name:       "no candidates",
			candidates: nil,
			want:       "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := longestDescription(tt.candidates); got != tt.want {
				t.Errorf("longestDescription(%v) = %q, want %q", tt.candidates, got, tt.want)
			}
		})
	}
}

func TestRenderVideoText(t *testing.T) {
	t.Parallel()

	full := renderVideoText("How It Works", "A demo video.", "hello and welcome")
	for _, want := range []string{"Title: How It Works", "Description:\nA demo video.", "Transcript:\nhello and welcome"} {
		if !strings.Contains(full, want) {
			t.Errorf("rendered text missing %q:\n%s", want, full)
		}
	}

	// Absent sections leave no headers behind.
	noTranscript := renderVideoText("T", "D", "")
	if strings.Contains(noTranscript, "Transcript") {
		t.Errorf("empty transcript should not render a header:\n%s", noTranscript)
	}
	if renderVideoText("", "", "") != "" {
		t.Error("all-empty render should be empty")
	}
}

func TestDecodeJSONString(t *testing.T) {
	t.Parallel()

	if got := decodeJSONString(`line one\nline two`); got != "line one\nline two" {
		t.Errorf("decoded = %q", got)
	}
	if got := decodeJSONString(`broken \q escape`); got != "" {
		t.Errorf("invalid escape should decode to empty, got %q", got)
	}
}
