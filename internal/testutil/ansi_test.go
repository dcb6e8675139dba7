package testutil

import "testing"

func TestStripAnsiCodes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "No codes",
			input:    "Hello World",
			expected: "Hello World",
		},
		{
			name:     "Simple color",
			input:    "\x1b[31mRed\x1b[0m",
			expected: "Red",
		},
		{
			name:     "Bold and color",
			input:    "\x1b[1;32mGreen Bold\x1b[0m",
			expected: "Green Bold",
		},
		{
			name:     "Multiple codes",
			input:    "Normal \x1b[33mYellow\x1b[0m \x1b[34mBlue\x1b[0m",
			expected: "Normal Yellow Blue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := StripAnsiCodes(tt.input)
			if got != tt.expected {
				t.Errorf("StripAnsiCodes(%q) = %q; want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestReferencePrimes(t *testing.T) {
	t.Parallel()
	got := ReferencePrimes(30)
	want := []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}
	if len(got) != len(want) {
		t.Fatalf("ReferencePrimes(30) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ReferencePrimes(30) = %v, want %v", got, want)
		}
	}
	if n := len(ReferencePrimes(100)); n != 25 {
		t.Errorf("len(ReferencePrimes(100)) = %d, want 25", n)
	}
}

func TestParseLines(t *testing.T) {
	t.Parallel()
	got, err := ParseLines("2\n3\n\n5\n")
	if err != nil || len(got) != 3 || got[2] != 5 {
		t.Errorf("ParseLines() = %v, %v", got, err)
	}
	if _, err := ParseLines("2\nx\n"); err == nil {
		t.Error("ParseLines() accepted a malformed line")
	}
}
