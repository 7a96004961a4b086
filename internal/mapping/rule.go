package mapping

import (
	"fmt"
	"strings"
)

type RuleKind string

const (
	KindFixed     RuleKind = "fixed"
	KindColumn    RuleKind = "col"
	KindGenerated RuleKind = "gen"
)

type GeneratedKind string

const (
	GenUsername    GeneratedKind = "usuario"
	GenDisplayName GeneratedKind = "nombre_completo"
)

// Rule tells the projector where one output column's value comes from.
type Rule struct {
	Kind  RuleKind
	Value string        // literal for fixed, source column for col
	Gen   GeneratedKind // set only when Kind is gen
}

func Fixed(value string) Rule {
	return Rule{Kind: KindFixed, Value: value}
}

func FromColumn(column string) Rule {
	return Rule{Kind: KindColumn, Value: column}
}

func Generated(kind GeneratedKind) Rule {
	return Rule{Kind: KindGenerated, Gen: kind}
}

// Row is the cell access Resolve needs from a parsed sheet row.
type Row interface {
	Cell(column string) string
}

// Resolve is total: a missing column resolves to "", and gen rules resolve
// to "" because generation needs inputs a single rule does not have.
func (r Rule) Resolve(row Row) string {
	switch r.Kind {
	case KindFixed:
		return strings.TrimSpace(r.Value)
	case KindColumn:
		if row == nil {
			return ""
		}
		return strings.TrimSpace(row.Cell(r.Value))
	default:
		return ""
	}
}

// String renders the rule in the textual form used by config files and the
// preference store: "fixed:Perú", "col:NOMBRES", "gen:usuario".
func (r Rule) String() string {
	switch r.Kind {
	case KindFixed:
		return string(KindFixed) + ":" + r.Value
	case KindColumn:
		return string(KindColumn) + ":" + r.Value
	case KindGenerated:
		return string(KindGenerated) + ":" + string(r.Gen)
	}
	return ""
}

func ParseRule(s string) (Rule, error) {
	kind, rest, found := strings.Cut(s, ":")
	if !found {
		return Rule{}, fmt.Errorf("rule %q is missing its kind prefix", s)
	}

	switch RuleKind(kind) {
	case KindFixed:
		return Fixed(rest), nil
	case KindColumn:
		if strings.TrimSpace(rest) == "" {
			return Rule{}, fmt.Errorf("col rule %q has no column name", s)
		}
		return FromColumn(rest), nil
	case KindGenerated:
		gen := GeneratedKind(rest)
		if gen != GenUsername && gen != GenDisplayName {
			return Rule{}, fmt.Errorf("unknown generated kind %q", rest)
		}
		return Generated(gen), nil
	default:
		return Rule{}, fmt.Errorf("unknown rule kind %q", kind)
	}
}
