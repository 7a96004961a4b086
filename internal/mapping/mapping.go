package mapping

import (
	"strings"

	"github.com/alvaroquispe1998/email-generator/internal/normalize"
	"github.com/alvaroquispe1998/email-generator/internal/schema"
)

// Mapping assigns one Rule to every output column. Helpers in this package
// always return total mappings; a partial map is only ever an intermediate
// state between Merge and Sanitize.
type Mapping map[string]Rule

// columnHints drive header inference, most specific hint first. Keys the
// roster usually carries: NOMBRES, APELLIDOS, DNI, CELULAR, CODIGO, CORREO.
var columnHints = map[string][]string{
	schema.FieldFirstName:   {"nombres", "nombre"},
	schema.FieldLastName:    {"apellidos", "apellido"},
	schema.FieldJobNumber:   {"codigo", "cod"},
	schema.FieldMobilePhone: {"celular", "movil", "telefono"},
	schema.FieldFax:         {"dni", "nrodocumento", "documento"},
	schema.FieldAltEmail:    {"correo", "email"},
	schema.FieldDepartment:  {"escuela", "carrera", "programa", "facultad"},
	schema.FieldJobTitle:    {"puesto", "cargo"},
	schema.FieldOfficePhone: {"telefonofijo", "fijo"},
	schema.FieldAddress:     {"direccion", "domicilio"},
	schema.FieldCity:        {"ciudad", "distrito"},
	schema.FieldState:       {"provincia", "departamento", "region"},
	schema.FieldPostalCode:  {"codigopostal", "postal"},
	schema.FieldCountry:     {"pais"},
}

// headerKey folds a header to its comparable form: "Nro. Documento" -> "nrodocumento".
func headerKey(s string) string {
	return strings.Join(normalize.Tokenize(s), "")
}

// Infer builds the default mapping for a fresh sheet. Username and display
// name are always generated; the rest is matched against the headers in two
// passes, exact keys before substrings, so "CODIGO POSTAL" cannot steal the
// postal field from a literal "CODIGO" column. Unmatched fields map to an
// empty fixed value.
func Infer(headers []string) Mapping {
	keys := make([]string, len(headers))
	for i, h := range headers {
		keys[i] = headerKey(h)
	}
	used := make([]bool, len(headers))

	match := func(hints []string, exact bool) string {
		for _, hint := range hints {
			for i, key := range keys {
				if used[i] || key == "" {
					continue
				}
				if (exact && key == hint) || (!exact && strings.Contains(key, hint)) {
					used[i] = true
					return headers[i]
				}
			}
		}
		return ""
	}

	m := make(Mapping, len(schema.Columns))
	for _, field := range schema.Columns {
		switch field {
		case schema.FieldUsername:
			m[field] = Generated(GenUsername)
		case schema.FieldDisplayName:
			m[field] = Generated(GenDisplayName)
		default:
			if col := match(columnHints[field], true); col != "" {
				m[field] = FromColumn(col)
			}
		}
	}
	for _, field := range schema.Columns {
		if _, done := m[field]; done {
			continue
		}
		if col := match(columnHints[field], false); col != "" {
			m[field] = FromColumn(col)
		} else {
			m[field] = Fixed("")
		}
	}
	return m
}

// Sanitize makes m total against the current headers: missing fields and col
// rules whose column vanished fall back to the inferred default for that
// field, never to silence.
func Sanitize(m Mapping, headers []string) Mapping {
	inferred := Infer(headers)
	known := make(map[string]bool, len(headers))
	for _, h := range headers {
		known[h] = true
	}

	out := make(Mapping, len(schema.Columns))
	for _, field := range schema.Columns {
		rule, ok := m[field]
		switch {
		case !ok:
			out[field] = inferred[field]
		case rule.Kind == KindColumn && !known[rule.Value]:
			out[field] = inferred[field]
		case rule.Kind == KindGenerated && rule.Gen != GenUsername && rule.Gen != GenDisplayName:
			out[field] = inferred[field]
		default:
			out[field] = rule
		}
	}
	return out
}

// Merge overlays rules onto a base mapping. Overlay wins per field; fields
// outside the output schema are dropped.
func Merge(base, overlay Mapping) Mapping {
	out := make(Mapping, len(schema.Columns))
	for _, field := range schema.Columns {
		if rule, ok := overlay[field]; ok {
			out[field] = rule
			continue
		}
		if rule, ok := base[field]; ok {
			out[field] = rule
		}
	}
	return out
}

// ConditionColumn finds the enrollment-condition header, "" when the sheet
// has none.
func ConditionColumn(headers []string) string {
	for _, h := range headers {
		if strings.Contains(headerKey(h), "condicion") {
			return h
		}
	}
	return ""
}
