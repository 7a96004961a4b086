package engine

import (
	"strings"

	"github.com/alvaroquispe1998/email-generator/internal/directory"
	"github.com/alvaroquispe1998/email-generator/internal/identity"
	"github.com/alvaroquispe1998/email-generator/internal/mapping"
	"github.com/alvaroquispe1998/email-generator/internal/normalize"
	"github.com/alvaroquispe1998/email-generator/internal/roster"
	"github.com/alvaroquispe1998/email-generator/internal/schema"
)

const DefaultConditionValue = "INGRESO"

// RequiredPolicy says which projected fields must be present for a row to
// export. Each flag gates independently.
type RequiredPolicy struct {
	DNI     bool
	Celular bool
	Codigo  bool
}

func DefaultPolicy() RequiredPolicy {
	return RequiredPolicy{DNI: true, Celular: true, Codigo: true}
}

// Session is the full state one working session evaluates: the loaded sheet,
// the column mapping, the directory snapshot and the user's choices. Treated
// as a value: the With* helpers return an updated copy and Evaluate derives
// everything else from scratch, so the same Session always yields the same
// report.
type Session struct {
	Sheet     *roster.Sheet
	Mapping   mapping.Mapping
	Directory *directory.Snapshot
	Policy    RequiredPolicy
	Overrides map[int]string
	Generator identity.Generator

	ConditionColumn string
	ConditionValue  string
}

func NewSession(sheet *roster.Sheet, m mapping.Mapping, gen identity.Generator) Session {
	return Session{
		Sheet:           sheet,
		Mapping:         mapping.Sanitize(m, sheet.Headers),
		Policy:          DefaultPolicy(),
		Overrides:       map[int]string{},
		Generator:       gen,
		ConditionColumn: mapping.ConditionColumn(sheet.Headers),
		ConditionValue:  DefaultConditionValue,
	}
}

func (s Session) WithDirectory(snap *directory.Snapshot) Session {
	s.Directory = snap
	return s
}

func (s Session) WithMapping(m mapping.Mapping) Session {
	s.Mapping = mapping.Sanitize(m, s.Sheet.Headers)
	return s
}

func (s Session) WithPolicy(p RequiredPolicy) Session {
	s.Policy = p
	return s
}

// WithOverride records a replacement address for one row. A bare local part
// is completed with the institutional domain. Setting an empty value, or one
// that canonicalizes to the generated address, clears the entry instead, so
// the override map only ever holds real deviations.
func (s Session) WithOverride(rowNumber int, value string) Session {
	row, ok := s.rowByNumber(rowNumber)
	if !ok {
		return s
	}

	overrides := cloneOverrides(s.Overrides)

	value = strings.TrimSpace(value)
	if value != "" && !strings.Contains(value, "@") {
		value += "@" + s.Generator.Domain
	}

	generated := s.generatedFor(row)
	if value == "" || normalize.CanonicalEmail(value) == normalize.CanonicalEmail(generated) {
		delete(overrides, rowNumber)
	} else {
		overrides[rowNumber] = value
	}

	s.Overrides = overrides
	return s
}

// WithAlternates is the bulk action of the conflict screen: every still
// colliding, un-overridden row whose subject has a second given name gets
// the alternate address as its override. Rows without a usable alternate,
// and rows the user already touched, stay as they are.
func (s Session) WithAlternates() Session {
	report := s.Evaluate()
	overrides := cloneOverrides(s.Overrides)

	for _, c := range report.Conflicts {
		if c.Overridden {
			continue
		}
		if c.Status != StatusInUse && c.Status != StatusDuplicate {
			continue
		}
		row, ok := s.rowByNumber(c.RowNumber)
		if !ok {
			continue
		}
		nombres, apellidos := s.nameParts(row)
		alt := s.Generator.Alternate(nombres, apellidos)
		if alt == "" {
			continue
		}
		if normalize.CanonicalEmail(alt) == normalize.CanonicalEmail(c.Generated) {
			continue
		}
		overrides[c.RowNumber] = alt
	}

	s.Overrides = overrides
	return s
}

func (s Session) rowByNumber(number int) (roster.Row, bool) {
	if s.Sheet == nil {
		return roster.Row{}, false
	}
	for _, row := range s.Sheet.Rows {
		if row.Number == number {
			return row, true
		}
	}
	return roster.Row{}, false
}

func (s Session) nameParts(row roster.Row) (nombres, apellidos string) {
	return s.Mapping[schema.FieldFirstName].Resolve(row), s.Mapping[schema.FieldLastName].Resolve(row)
}

func (s Session) generatedFor(row roster.Row) string {
	nombres, apellidos := s.nameParts(row)
	return s.Generator.Primary(nombres, apellidos)
}

func (s Session) conditionOK(row roster.Row) bool {
	if s.ConditionColumn == "" {
		return true
	}
	return normalize.IdentityKey(row.Cell(s.ConditionColumn)) == normalize.IdentityKey(s.ConditionValue)
}

func cloneOverrides(src map[int]string) map[int]string {
	out := make(map[int]string, len(src)+1)
	for k, v := range src {
		out[k] = v
	}
	return out
}
