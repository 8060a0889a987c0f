package matching

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reNonAlnum = regexp.MustCompile(`[^a-z0-9\s]+`)
	reSpaces   = regexp.MustCompile(`\s+`)

	ampersands = strings.NewReplacer("&", " and ", "+", " and ")
)

// noiseTokens are dropped when building the core of an operator name, so
// "Acme Airways Ltd" and "ACME Air" compare on "acme".
var noiseTokens = map[string]struct{}{
	"air": {}, "airways": {}, "airlines": {}, "airline": {}, "aviation": {}, "aero": {},
	"the": {}, "and": {}, "co": {}, "company": {}, "inc": {}, "ltd": {}, "limited": {},
	"llc": {}, "plc": {}, "corp": {}, "corporation": {}, "group": {}, "sa": {}, "ag": {}, "gmbh": {},
}

func stripMarks(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize folds case and diacritics, spells out ampersands and turns any
// punctuation into a single space.
func Normalize(s string) string {
	s = strings.ToLower(stripMarks(s))
	s = ampersands.Replace(s)
	s = reNonAlnum.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokens splits a normalized name and drops noise words.
func Tokens(normalized string) []string {
	parts := strings.Fields(normalized)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if _, noise := noiseTokens[p]; noise {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Core is the normalized name without noise words. A name made only of noise
// words keeps its normalized form.
func Core(normalized string) string {
	tokens := Tokens(normalized)
	if len(tokens) == 0 {
		return normalized
	}
	return strings.Join(tokens, " ")
}

// Dice is the bigram Dice coefficient of a and b.
func Dice(a, b string) float64 {
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

func tokenOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(b))
	for _, t := range b {
		set[t] = struct{}{}
	}
	shared := 0
	seen := map[string]struct{}{}
	for _, t := range a {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			shared++
		}
	}
	return float64(shared) / float64(max(len(a), len(b)))
}
