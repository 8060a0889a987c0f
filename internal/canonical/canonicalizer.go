package canonical

import (
	"regexp"
	"strings"

	"skyline/opsboard/internal/constants"
)

type Confidence string

const (
	ConfidenceExact    Confidence = "exact"
	ConfidencePattern  Confidence = "pattern"
	ConfidenceFallback Confidence = "fallback"
)

// DefaultExactPriorityMark is the lowest priority at which a literal,
// full-string match is reported as exact.
const DefaultExactPriorityMark = 100

type Result struct {
	Raw          string     `json:"raw"`
	Registration string     `json:"registration,omitempty"`
	Canonical    string     `json:"canonical"`
	Confidence   Confidence `json:"confidence"`
	RuleID       uint       `json:"ruleId,omitempty"`
	Pattern      string     `json:"pattern,omitempty"`
}

// Canonicalizer maps raw aircraft type strings onto canonical families. It
// holds an immutable rule snapshot and is safe for concurrent use.
type Canonicalizer struct {
	rules     SortedRules
	exactMark int
}

func New(rules SortedRules, exactMark int) *Canonicalizer {
	if exactMark <= 0 {
		exactMark = DefaultExactPriorityMark
	}
	return &Canonicalizer{rules: rules, exactMark: exactMark}
}

var reSpaces = regexp.MustCompile(`\s+`)

func cleanInput(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// Canonicalize resolves rawType (and optionally the registration) against
// the rule snapshot. No match yields Unknown with fallback confidence.
func (c *Canonicalizer) Canonicalize(rawType, registration string) Result {
	raw := cleanInput(rawType)
	reg := strings.ToUpper(cleanInput(registration))

	res := Result{Raw: raw, Registration: reg}
	rule, ok := ResolveFirstMatch(c.rules, raw, reg)
	if !ok {
		res.Canonical = string(constants.TypeUnknown)
		res.Confidence = ConfidenceFallback
		return res
	}

	res.Canonical = rule.CanonicalType
	res.RuleID = rule.ID
	res.Pattern = rule.Pattern
	res.Confidence = ConfidencePattern

	input := raw
	if rule.Target == TargetRegistration {
		input = reg
	}
	if rule.Literal != "" && rule.Priority >= c.exactMark && strings.EqualFold(input, rule.Literal) {
		res.Confidence = ConfidenceExact
	}
	return res
}
