package engine

import (
	"github.com/alvaroquispe1998/email-generator/internal/identity"
	"github.com/alvaroquispe1998/email-generator/internal/mapping"
	"github.com/alvaroquispe1998/email-generator/internal/normalize"
	"github.com/alvaroquispe1998/email-generator/internal/roster"
	"github.com/alvaroquispe1998/email-generator/internal/schema"
)

// Project turns one roster row into an output record. Name fields resolve
// through the mapping first because generation depends on them no matter
// where they end up in the output; phone carriers are digit-filtered last,
// whatever kind of rule produced them.
func (s Session) Project(row roster.Row) schema.Record {
	nombres, apellidos := s.nameParts(row)
	username := s.Generator.Primary(nombres, apellidos)
	display := identity.DisplayName(apellidos, nombres)

	rec := schema.NewRecord(row.Number)
	for _, field := range schema.Columns {
		rule := s.Mapping[field]

		var value string
		if rule.Kind == mapping.KindGenerated {
			switch rule.Gen {
			case mapping.GenUsername:
				value = username
			case mapping.GenDisplayName:
				value = display
			}
		} else {
			value = rule.Resolve(row)
		}

		if schema.DigitFiltered(field) {
			value = normalize.DigitsOnly(value)
		}
		rec.Fields[field] = value
	}
	return rec
}
