package models

import (
	"github.com/go-playground/validator/v10"

	"github.com/alvaroquispe1998/email-generator/internal/mapping"
)

// RuleSpec is one field rule on the wire: {"kind": "col", "value": "NOMBRES"}.
type RuleSpec struct {
	Kind  string `json:"kind" validate:"required,oneof=fixed col gen"`
	Value string `json:"value"`
}

// MappingUpdate replaces rules per field; fields left out keep their current
// rule.
type MappingUpdate struct {
	Rules map[string]RuleSpec `json:"rules" validate:"required,dive"`
}

func (m *MappingUpdate) Validate() error {
	validate := validator.New()
	return validate.Struct(m)
}

// ToMapping converts the wire rules to engine rules, rejecting unknown
// generated kinds.
func (m *MappingUpdate) ToMapping() (mapping.Mapping, error) {
	out := make(mapping.Mapping, len(m.Rules))
	for field, spec := range m.Rules {
		rule, err := mapping.ParseRule(spec.Kind + ":" + spec.Value)
		if err != nil {
			return nil, err
		}
		out[field] = rule
	}
	return out, nil
}

// RuleSpecs renders a mapping back to wire form for GET responses.
func RuleSpecs(m mapping.Mapping) map[string]RuleSpec {
	out := make(map[string]RuleSpec, len(m))
	for field, rule := range m {
		spec := RuleSpec{Kind: string(rule.Kind), Value: rule.Value}
		if rule.Kind == mapping.KindGenerated {
			spec.Value = string(rule.Gen)
		}
		out[field] = spec
	}
	return out
}
