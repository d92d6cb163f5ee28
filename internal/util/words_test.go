package util

import "testing"

func TestTrimWords(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		n        int
		suffix   string
		expected string
	}{
		{
			name:     "shorter than limit",
			input:    "one two three",
			n:        10,
			suffix:   "...",
			expected: "one two three",
		},
		{
			name:     "trimmed with suffix",
			input:    "one two three four five",
			n:        3,
			suffix:   "...",
			expected: "one two three...",
		},
		{
			name:     "exact length keeps no suffix",
			input:    "one two three",
			n:        3,
			suffix:   "...",
			expected: "one two three",
		},
		{
			name:     "collapses whitespace",
			input:    "  one   two  ",
			n:        5,
			suffix:   "",
			expected: "one two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimWords(tt.input, tt.n, tt.suffix); got != tt.expected {
				t.Errorf("TrimWords() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestStripTags(t *testing.T) {
	in := "<p>Hello <strong>World</strong></p>"
	if got := StripTags(in); got != "Hello World" {
		t.Errorf("StripTags(%q) = %q", in, got)
	}
}
