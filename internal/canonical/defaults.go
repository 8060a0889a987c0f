package canonical

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultRulesYAML []byte

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// DefaultRules returns the seed rule table used by reset-to-defaults. IDs
// are left zero; the store assigns them in file order.
func DefaultRules() ([]Rule, error) {
	var f ruleFile
	if err := yaml.Unmarshal(defaultRulesYAML, &f); err != nil {
		return nil, fmt.Errorf("failed to parse default mapping rules: %w", err)
	}
	for i, r := range f.Rules {
		if err := ValidateRule(r); err != nil {
			return nil, fmt.Errorf("default rule %d (%q): %w", i, r.Pattern, err)
		}
	}
	return f.Rules, nil
}
