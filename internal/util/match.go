package util

import (
	"regexp"
	"strings"
)

var reNonAlnum = regexp.MustCompile(`[^A-Z0-9\s]`)

// NormalizeName uppercases a product name and strips punctuation so
// commissary and retail spellings of the same item compare equal.
func NormalizeName(input string) string {
	s := strings.ToUpper(input)
	s = reNonAlnum.ReplaceAllString(s, " ")
	return NormalizeSpaces(s)
}

// Tokenize splits a normalized name into words of two or more characters.
func Tokenize(input string) []string {
	parts := strings.Split(NormalizeName(input), " ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) >= 2 {
			out = append(out, p)
		}
	}
	return out
}

// DiceCoefficient scores two strings by shared character bigrams, 0..1.
func DiceCoefficient(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	pairs := func(s string) []string {
		r := []rune(s)
		if len(r) < 2 {
			return nil
		}
		out := make([]string, 0, len(r)-1)
		for i := 0; i < len(r)-1; i++ {
			out = append(out, string(r[i:i+2]))
		}
		return out
	}

	aPairs := pairs(a)
	bPairs := pairs(b)
	if len(aPairs) == 0 || len(bPairs) == 0 {
		return 0
	}

	bCount := map[string]int{}
	for _, p := range bPairs {
		bCount[p]++
	}
	inter := 0
	for _, p := range aPairs {
		if bCount[p] > 0 {
			inter++
			bCount[p]--
		}
	}

	return float64(2*inter) / float64(len(aPairs)+len(bPairs))
}
