package canonical

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"skyline/opsboard/internal/constants"
)

var ErrInvalidRule = errors.New("invalid mapping rule")

const registrationPrefix = "reg:"

// A pattern shaped like a nationality-prefixed registration (G-EZ??, D-AI*)
// is tested against the registration instead of the type string.
var reRegistrationShape = regexp.MustCompile(`^[A-Za-z]{1,2}-[A-Za-z0-9*?]+$`)

// Target is the aircraft field a rule pattern is tested against.
type Target string

const (
	TargetType         Target = "type"
	TargetRegistration Target = "registration"
)

// Rule is the storage-independent view of a mapping rule. ID doubles as
// insertion order.
type Rule struct {
	ID            uint   `json:"id" yaml:"-"`
	Pattern       string `json:"pattern" yaml:"pattern"`
	CanonicalType string `json:"canonicalType" yaml:"canonicalType"`
	Priority      int    `json:"priority" yaml:"priority"`
	IsActive      bool   `json:"isActive" yaml:"isActive"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
}

// CompiledRule is a Rule with its pattern turned into a case-insensitive
// regular expression.
type CompiledRule struct {
	Rule
	Target  Target
	Literal string // pattern body when it has no wildcards, else ""
	re      *regexp.Regexp
}

// Matches tests the rule against whichever field it targets.
func (c CompiledRule) Matches(rawType, registration string) bool {
	input := rawType
	if c.Target == TargetRegistration {
		input = registration
	}
	if input == "" {
		return false
	}
	return c.re.MatchString(input)
}

// ValidateRule checks everything a rule needs before it can be stored.
func ValidateRule(r Rule) error {
	if !constants.IsCanonicalType(r.CanonicalType) {
		return fmt.Errorf("%w: unknown canonical type %q", ErrInvalidRule, r.CanonicalType)
	}
	if _, err := Compile(r); err != nil {
		return err
	}
	return nil
}

// Compile parses the rule pattern. `*` matches any run of characters, `?`
// exactly one, `^`/`$` anchor; without anchors the pattern matches anywhere.
func Compile(r Rule) (CompiledRule, error) {
	pattern := strings.TrimSpace(r.Pattern)
	target := TargetType
	if strings.HasPrefix(strings.ToLower(pattern), registrationPrefix) {
		pattern = strings.TrimSpace(pattern[len(registrationPrefix):])
		target = TargetRegistration
	}

	anchorStart := strings.HasPrefix(pattern, "^")
	body := strings.TrimPrefix(pattern, "^")
	anchorEnd := strings.HasSuffix(body, "$")
	body = strings.TrimSpace(strings.TrimSuffix(body, "$"))
	if body == "" {
		return CompiledRule{}, fmt.Errorf("%w: empty pattern", ErrInvalidRule)
	}
	if target == TargetType && reRegistrationShape.MatchString(body) {
		target = TargetRegistration
	}

	var expr strings.Builder
	expr.WriteString("(?i)")
	if anchorStart {
		expr.WriteString("^")
	}
	for _, ch := range body {
		switch ch {
		case '*':
			expr.WriteString(".*")
		case '?':
			expr.WriteString(".")
		default:
			expr.WriteString(regexp.QuoteMeta(string(ch)))
		}
	}
	if anchorEnd {
		expr.WriteString("$")
	}

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return CompiledRule{}, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}

	compiled := CompiledRule{Rule: r, Target: target, re: re}
	if !strings.ContainsAny(body, "*?") {
		compiled.Literal = body
	}
	return compiled, nil
}

// SortedRules holds active, compiled rules in evaluation order: priority
// descending, then insertion order ascending.
type SortedRules []CompiledRule

// SortRules compiles and orders rules. Inactive rules are dropped; rules
// whose pattern does not compile are returned as skipped.
func SortRules(rules []Rule) (SortedRules, []Rule) {
	out := make(SortedRules, 0, len(rules))
	var skipped []Rule
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		c, err := Compile(r)
		if err != nil {
			skipped = append(skipped, r)
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, skipped
}

// ResolveFirstMatch returns the first rule in evaluation order that matches.
func ResolveFirstMatch(rules SortedRules, rawType, registration string) (CompiledRule, bool) {
	for _, r := range rules {
		if r.Matches(rawType, registration) {
			return r, true
		}
	}
	return CompiledRule{}, false
}
