package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reNonDigits = regexp.MustCompile(`[^0-9]+`)
)

func trimAndLower(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return s
}

func dropControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func NormalizeEmail(input string) string {
	return trimAndLower(input)
}

func NormalizeNationalID(input string) string {
	return reNonDigits.ReplaceAllString(input, "")
}

// NormalizeText is used for descriptions and reasons: control characters
// are dropped and whitespace is collapsed.
func NormalizeText(input string) string {
	p := Pipeline{
		dropControl,
		TrimAndNormalize,
	}
	return p.Apply(input)
}

// NormalizeLabel is used for short enumerations typed by operators, like a
// floor type or a brand.
func NormalizeLabel(input string) string {
	p := Pipeline{
		dropControl,
		TrimAndNormalize,
	}
	return p.Apply(input)
}
