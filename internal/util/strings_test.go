package util

import "testing"

func TestTrimAndLower(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  GET  ", "get"},
		{"Post", "post"},
		{"", ""},
		{"\tMiXeD\n", "mixed"},
	}
	for _, tt := range tests {
		if got := TrimAndLower(tt.in); got != tt.want {
			t.Errorf("TrimAndLower(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitKeyValue(t *testing.T) {
	tests := []struct {
		in      string
		key     string
		value   string
		wantSep bool
	}{
		{"a=b", "a", "b", true},
		{"key=", "key", "", true},
		{"k=v=w", "k", "v=w", true},
		{" spaced =  raw value ", "spaced", "  raw value ", true},
		{"novalue", "novalue", "", false},
		{"  bare  ", "bare", "", false},
		{"=leading", "", "leading", true},
	}
	for _, tt := range tests {
		key, value, ok := SplitKeyValue(tt.in)
		if key != tt.key || value != tt.value || ok != tt.wantSep {
			t.Errorf("SplitKeyValue(%q) = (%q, %q, %t), want (%q, %q, %t)",
				tt.in, key, value, ok, tt.key, tt.value, tt.wantSep)
		}
	}
}
