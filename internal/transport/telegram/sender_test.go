package telegram

import (
	"strings"
	"testing"
)

func TestSplitHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		text      string
		maxLen    int
		numChunks int
	}{
		{
			name:      "short text stays whole",
			text:      "hello",
			maxLen:    100,
			numChunks: 1,
		},
		{
			name:      "long text is split",
			text:      strings.Repeat("x", 250),
			maxLen:    100,
			numChunks: 3,
		},
		{
			name:      "prefers newline break",
			text:      strings.Repeat("a", 60) + "\n" + strings.Repeat("b", 60),
			maxLen:    100,
			numChunks: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := splitHTML(tt.text, tt.maxLen)
			if len(chunks) != tt.numChunks {
				t.Fatalf("got %d chunks, want %d: %q", len(chunks), tt.numChunks, chunks)
			}
			for i, c := range chunks {
				if len(c) > tt.maxLen {
					t.Errorf("chunk %d exceeds limit: %d > %d", i, len(c), tt.maxLen)
				}
			}
		})
	}
}

func TestSplitHTML_NewlineBreakKeepsContent(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("a", 60) + "\n" + strings.Repeat("b", 60)
	chunks := splitHTML(text, 100)

	joined := strings.Join(chunks, "")
	if !strings.Contains(joined, strings.Repeat("a", 60)) || !strings.Contains(joined, strings.Repeat("b", 60)) {
		t.Errorf("content lost during split: %q", chunks)
	}
}
