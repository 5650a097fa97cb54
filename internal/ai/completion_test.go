package ai

import (
	"strings"
	"testing"
)

func TestSlicesReassemblesText(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
	}{
		{"long text", strings.Repeat("the quick brown fox ", 30), 20},
		{"exact multiple", strings.Repeat("x", 40), 20},
		{"shorter than n", "short", 20},
		{"single chunk", "hello world", 1},
		{"arabic text", "مرحبا بكم في منصة الأمان الخاصة بالعائلات", 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Completion{Text: tt.text}
			chunks := c.Slices(tt.n)

			if strings.Join(chunks, "") != tt.text {
				t.Errorf("chunks do not reassemble to the original text")
			}
			if len(chunks) > tt.n {
				t.Errorf("got %d chunks, want at most %d", len(chunks), tt.n)
			}
			for i, chunk := range chunks {
				if chunk == "" {
					t.Errorf("chunk %d is empty", i)
				}
			}
		})
	}
}

func TestSlicesMultiByteSafe(t *testing.T) {
	c := &Completion{Text: strings.Repeat("é", 41)}
	for _, chunk := range c.Slices(20) {
		if !strings.HasPrefix(chunk, "é") {
			t.Fatalf("chunk %q split a multi-byte character", chunk)
		}
	}
}

func TestSlicesEdgeCases(t *testing.T) {
	empty := &Completion{Text: ""}
	if chunks := empty.Slices(20); chunks != nil {
		t.Errorf("empty text must yield no chunks, got %v", chunks)
	}

	c := &Completion{Text: "abc"}
	if chunks := c.Slices(0); chunks != nil {
		t.Errorf("n=0 must yield no chunks, got %v", chunks)
	}
}

func TestSlicesIsRestartable(t *testing.T) {
	c := &Completion{Text: "a deterministic split"}
	first := c.Slices(5)
	second := c.Slices(5)

	if len(first) != len(second) {
		t.Fatalf("repeated calls differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs: %q vs %q", i, first[i], second[i])
		}
	}
}
