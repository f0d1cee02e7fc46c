package segment

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ParseRules decodes a YAML rule list with a strict schema: unknown fields
// are rejected so malformed tenant configuration fails at the boundary
// instead of silently misclassifying customers.
//
// Expected shape:
//
//	- priority: 1
//	  segment_id: vip
//	  min_lifetime_value: "1000"
//	- priority: 2
//	  segment_id: dormant
//	  min_days_since_last_order: 90
func ParseRules(raw []byte, opts ...RulesetOption) (*Ruleset, error) {
	var rules []Rule
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&rules); err != nil {
		return nil, errors.Join(ErrFailedToParseRules, err)
	}

	return NewRuleset(rules, opts...)
}
