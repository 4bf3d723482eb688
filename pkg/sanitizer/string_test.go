package sanitizer

import (
	"slices"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  José Testador  ",
			want:  "José Testador",
		},
		{
			name:  "multiple spaces between words",
			input: "Ana    Bolsista",
			want:  "Ana Bolsista",
		},
		{
			name:  "tabs and newlines",
			input: "Ginásio\t\nPrincipal A",
			want:  "Ginásio Principal A",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeName(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := NormalizeName(got); again != got {
				t.Errorf("NormalizeName is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeNationalID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"111.222.333-44", "11122233344"},
		{" 11122233344 ", "11122233344"},
		{"abc", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeNationalID(tt.input); got != tt.want {
				t.Errorf("NormalizeNationalID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Admin@Sistema.COM "); got != "admin@sistema.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}

func TestNormalizeText(t *testing.T) {
	got := NormalizeText("  A rede da quadra\x00 está   rasgada.\n")
	if got != "A rede da quadra está rasgada." {
		t.Errorf("NormalizeText() = %q", got)
	}
}

func TestNormalizeIDs(t *testing.T) {
	tests := []struct {
		name  string
		input []int
		want  []int
	}{
		{"nil", nil, []int{}},
		{"dedupe keeps order", []int{3, 1, 3, 2, 1}, []int{3, 1, 2}},
		{"drops non-positive", []int{0, -1, 2}, []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeIDs(tt.input); !slices.Equal(got, tt.want) {
				t.Errorf("NormalizeIDs(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
