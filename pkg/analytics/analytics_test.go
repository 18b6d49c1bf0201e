package analytics

import "testing"

func TestCountWords(t *testing.T) {
	a := &Analytics{}

	tests := []struct {
		name string
		text string
		want uint32
	}{
		{name: "empty", text: "", want: 0},
		{name: "only spaces", text: "   \t\n ", want: 0},
		{name: "single token", text: "1", want: 1},
		{name: "several tokens", text: "4 5 6 7", want: 4},
		{name: "mixed whitespace", text: "  hola\tmundo\n  chau ", want: 3},
		{name: "punctuation stays attached", text: "what's up, doc?", want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.CountWords(tt.text); got != tt.want {
				t.Errorf("CountWords(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestCountAll(t *testing.T) {
	a := &Analytics{}

	if got := a.CountAll([]string{"3", "4 5 6 7"}); got != 5 {
		t.Errorf("CountAll() = %d, want 5", got)
	}
	if got := a.CountAll(nil); got != 0 {
		t.Errorf("CountAll(nil) = %d, want 0", got)
	}
}
