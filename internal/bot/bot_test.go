package bot

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkMessage(t *testing.T) {
	t.Parallel()

	t.Run("short text passes through", func(t *testing.T) {
		t.Parallel()
		chunks := ChunkMessage("hello", 4096)
		if len(chunks) != 1 || chunks[0] != "hello" {
			t.Errorf("chunks = %v", chunks)
		}
	})

	t.Run("every chunk respects the limit", func(t *testing.T) {
		t.Parallel()
		text := strings.Repeat("word and more text here\n", 500)
		chunks := ChunkMessage(text, 4096)
		if len(chunks) < 2 {
			t.Fatalf("expected multiple chunks, got %d", len(chunks))
		}
		for i, chunk := range chunks {
			if len(chunk) > 4096 {
				t.Errorf("chunk %d is %d bytes", i, len(chunk))
			}
		}
	})

	t.Run("chunks reassemble to the original", func(t *testing.T) {
		t.Parallel()
		text := strings.Repeat("a paragraph of summary text. ", 400)
		chunks := ChunkMessage(text, 1000)
		if got := strings.Join(chunks, ""); got != text {
			t.Error("joined chunks differ from the input")
		}
	})

	t.Run("prefers newline boundaries", func(t *testing.T) {
		t.Parallel()
		text := strings.Repeat("line of text in the message body\n", 40)
		chunks := ChunkMessage(text, 500)
		for i, chunk := range chunks[:len(chunks)-1] {
			if !strings.HasSuffix(chunk, "\n") {
				t.Errorf("chunk %d does not end at a line boundary: %q", i, chunk[len(chunk)-20:])
			}
		}
	})

	t.Run("multi-byte text never splits mid-rune", func(t *testing.T) {
		t.Parallel()
		text := strings.Repeat("要約", 3000)
		chunks := ChunkMessage(text, 4096)
		if len(chunks) < 2 {
			t.Fatalf("expected multiple chunks, got %d", len(chunks))
		}
		for i, chunk := range chunks {
			if !utf8.ValidString(chunk) {
				t.Errorf("chunk %d is not valid UTF-8 (ends %q)", i, chunk[len(chunk)-2:])
			}
			if n := utf8.RuneCountInString(chunk); n > 4096 {
				t.Errorf("chunk %d holds %d characters", i, n)
			}
		}
		if got := strings.Join(chunks, ""); got != text {
			t.Error("joined chunks differ from the input")
		}
	})

	t.Run("character limit counts runes not bytes", func(t *testing.T) {
		t.Parallel()
		// 2000 characters of three-byte runes exceed 4096 bytes but fit
		// the character cap in one message.
		text := strings.Repeat("要約", 1000)
		chunks := ChunkMessage(text, 4096)
		if len(chunks) != 1 {
			t.Errorf("chunks = %d, want 1 for %d characters", len(chunks), utf8.RuneCountInString(text))
		}
	})

	t.Run("unbreakable text falls back to hard cuts", func(t *testing.T) {
		t.Parallel()
		text := strings.Repeat("x", 9000)
		chunks := ChunkMessage(text, 4096)
		if len(chunks) != 3 {
			t.Errorf("chunks = %d, want 3", len(chunks))
		}
		for i, chunk := range chunks {
			if len(chunk) > 4096 {
				t.Errorf("chunk %d is %d bytes", i, len(chunk))
			}
		}
	})
}
