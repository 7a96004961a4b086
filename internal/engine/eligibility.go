// internal/engine/eligibility.go
package engine

import (
	"github.com/alvaroquispe1998/email-generator/internal/mapping"
	"github.com/alvaroquispe1998/email-generator/internal/normalize"
	"github.com/alvaroquispe1998/email-generator/internal/roster"
	"github.com/alvaroquispe1998/email-generator/internal/schema"
)

// Report is everything one evaluation derives from a Session. Derived from
// scratch on every call; two evaluations of the same Session are identical.
type Report struct {
	Projected  []schema.Record
	Eligible   []schema.Record
	Invalid    []InvalidRow
	DNIMatches []DNIMatch
	Conflicts  []Conflict

	// rows silently dropped as batch-internal duplicates
	DuplicateTally int
}

// InvalidRow marks a row the user can still fix: wrong enrollment condition
// or required fields left empty. Collision-excluded rows never show up here.
type InvalidRow struct {
	RowNumber     int      `json:"rowNumber"`
	MissingFields []string `json:"missingFields"`
}

// DNIMatch is a row whose identity number is already provisioned in the
// directory. These are reported as matches, not as invalid data.
type DNIMatch struct {
	RowNumber   int    `json:"rowNumber"`
	DNI         string `json:"dni"`
	DisplayName string `json:"displayName"`
}

type candidate struct {
	row        roster.Row
	rec        schema.Record
	generated  string
	effective  string
	canonical  string
	overridden bool

	inDirectory    bool
	genInDirectory bool
	sharesDup      bool
	droppedDup     bool
}

// Evaluate runs the eligibility pipeline over the whole sheet. Gate order
// matters: enrollment condition, directory DNI collision, required fields,
// directory email collision, then batch-internal duplicates with the lowest
// row number winning.
func (s Session) Evaluate() Report {
	var rep Report
	if s.Sheet == nil {
		return rep
	}

	var candidates []*candidate
	for _, row := range s.Sheet.Rows {
		rec := s.Project(row)
		rep.Projected = append(rep.Projected, rec)

		if !s.conditionOK(row) {
			rep.Invalid = append(rep.Invalid, InvalidRow{
				RowNumber:     row.Number,
				MissingFields: []string{s.ConditionColumn},
			})
			continue
		}

		if s.Directory.HasDNI(rec.DNI()) {
			rep.DNIMatches = append(rep.DNIMatches, DNIMatch{
				RowNumber:   row.Number,
				DNI:         rec.DNI(),
				DisplayName: rec.Fields[schema.FieldDisplayName],
			})
			continue
		}

		if missing := s.missingRequired(rec); len(missing) > 0 {
			rep.Invalid = append(rep.Invalid, InvalidRow{
				RowNumber:     row.Number,
				MissingFields: missing,
			})
			continue
		}

		generated := s.generatedFor(row)
		effective := generated
		override, overridden := s.Overrides[row.Number]
		if overridden {
			effective = override
		}

		candidates = append(candidates, &candidate{
			row:        row,
			rec:        rec,
			generated:  generated,
			effective:  effective,
			canonical:  normalize.CanonicalEmail(effective),
			overridden: overridden,
		})
	}

	for _, c := range candidates {
		c.inDirectory = s.Directory.HasEmail(c.canonical)
		c.genInDirectory = s.Directory.HasEmail(normalize.CanonicalEmail(c.generated))
	}

	// duplicates only count among rows that survived the directory gate; an
	// empty address is not a duplicate key
	seen := make(map[string]bool)
	shared := make(map[string]int)
	for _, c := range candidates {
		if c.inDirectory || c.canonical == "" {
			continue
		}
		shared[c.canonical]++
		if seen[c.canonical] {
			c.droppedDup = true
			rep.DuplicateTally++
			continue
		}
		seen[c.canonical] = true
	}
	for _, c := range candidates {
		c.sharesDup = !c.inDirectory && c.canonical != "" && shared[c.canonical] > 1
	}

	for _, c := range candidates {
		if c.inDirectory || c.droppedDup {
			continue
		}
		rec := c.rec
		if c.overridden {
			rec = s.withEffectiveUsername(rec, c.effective)
		}
		rep.Eligible = append(rep.Eligible, rec)
	}

	rep.Conflicts = s.buildConflicts(candidates)
	return rep
}

func (s Session) missingRequired(rec schema.Record) []string {
	var missing []string
	if s.Policy.DNI && rec.DNI() == "" {
		missing = append(missing, "DNI")
	}
	if s.Policy.Celular && rec.Mobile() == "" {
		missing = append(missing, "Celular")
	}
	if s.Policy.Codigo && rec.StudentCode() == "" {
		missing = append(missing, "Código")
	}
	return missing
}

// withEffectiveUsername copies the record with the override in place of the
// generated address, wherever the mapping generates one.
func (s Session) withEffectiveUsername(rec schema.Record, value string) schema.Record {
	out := schema.NewRecord(rec.RowNumber)
	for k, v := range rec.Fields {
		out.Fields[k] = v
	}
	for _, field := range schema.Columns {
		rule := s.Mapping[field]
		if rule.Kind == mapping.KindGenerated && rule.Gen == mapping.GenUsername {
			out.Fields[field] = value
		}
	}
	return out
}
