package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvaroquispe1998/email-generator/internal/directory"
	"github.com/alvaroquispe1998/email-generator/internal/identity"
	"github.com/alvaroquispe1998/email-generator/internal/mapping"
	"github.com/alvaroquispe1998/email-generator/internal/roster"
	"github.com/alvaroquispe1998/email-generator/internal/schema"
)

var testHeaders = []string{"CODIGO", "NOMBRES", "APELLIDOS", "DNI", "CELULAR", "CONDICION"}

// cells in testHeaders order; row numbers start at 2 like a real sheet
func testSheet(rows ...[]string) *roster.Sheet {
	sheet := &roster.Sheet{Headers: testHeaders}
	for i, cells := range rows {
		sheet.Rows = append(sheet.Rows, roster.NewRow(i+2, testHeaders, cells))
	}
	return sheet
}

func newTestSession(rows ...[]string) Session {
	sheet := testSheet(rows...)
	return NewSession(sheet, mapping.Infer(sheet.Headers), identity.NewGenerator(""))
}

func snapshotWith(dnis []string, emails []string) *directory.Snapshot {
	snap := directory.Empty()
	for _, d := range dnis {
		snap.DNIs[d] = true
	}
	for _, e := range emails {
		snap.Emails[e] = true
	}
	return snap
}

func eligibleRows(rep Report) []int {
	var out []int
	for _, rec := range rep.Eligible {
		out = append(out, rec.RowNumber)
	}
	return out
}

func TestSession_Evaluate_AllValid(t *testing.T) {
	s := newTestSession(
		[]string{"A001", "Ana Maria", "Lopez Diaz", "11111111", "999111222", "INGRESO"},
		[]string{"A002", "José", "Pérez Rojas", "22222222", "988777666", "INGRESO"},
	)

	rep := s.Evaluate()

	assert.Equal(t, []int{2, 3}, eligibleRows(rep))
	assert.Empty(t, rep.Invalid)
	assert.Empty(t, rep.DNIMatches)
	assert.Empty(t, rep.Conflicts)
	assert.Equal(t, 0, rep.DuplicateTally)
	assert.Len(t, rep.Projected, 2)

	rec := rep.Eligible[0]
	assert.Equal(t, "ana.lopez@autonomadeica.edu.pe", rec.Username())
	assert.Equal(t, "Lopez Diaz Ana Maria", rec.Fields[schema.FieldDisplayName])
	assert.Equal(t, "11111111", rec.DNI())
	assert.Equal(t, "999111222", rec.Mobile())
	assert.Equal(t, "A001", rec.StudentCode())
}

func TestSession_Evaluate_IsIdempotent(t *testing.T) {
	s := newTestSession(
		[]string{"A001", "Ana Maria", "Lopez Diaz", "11111111", "999111222", "INGRESO"},
		[]string{"A002", "Ana Maria", "Lopez Diaz", "22222222", "988777666", "INGRESO"},
	)

	assert.Equal(t, s.Evaluate(), s.Evaluate())
}

func TestSession_ConditionGate(t *testing.T) {
	testCases := []struct {
		name      string
		condition string
		eligible  bool
	}{
		{
			name:      "literal match",
			condition: "INGRESO",
			eligible:  true,
		},
		{
			name:      "accents and case do not matter",
			condition: " ingresó ",
			eligible:  true,
		},
		{
			name:      "other condition is filtered",
			condition: "RESERVA",
			eligible:  false,
		},
		{
			name:      "empty condition is filtered",
			condition: "",
			eligible:  false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestSession(
				[]string{"A001", "Ana", "Lopez", "11111111", "999111222", tc.condition},
			)
			rep := s.Evaluate()

			if tc.eligible {
				assert.Equal(t, []int{2}, eligibleRows(rep))
				assert.Empty(t, rep.Invalid)
				return
			}
			assert.Empty(t, rep.Eligible)
			require.Len(t, rep.Invalid, 1)
			assert.Equal(t, 2, rep.Invalid[0].RowNumber)
			assert.Equal(t, []string{"CONDICION"}, rep.Invalid[0].MissingFields)
		})
	}
}

func TestSession_NoConditionColumnPassesThrough(t *testing.T) {
	headers := []string{"CODIGO", "NOMBRES", "APELLIDOS", "DNI", "CELULAR"}
	sheet := &roster.Sheet{Headers: headers}
	sheet.Rows = append(sheet.Rows, roster.NewRow(2, headers, []string{"A001", "Ana", "Lopez", "11111111", "999111222"}))

	s := NewSession(sheet, mapping.Infer(headers), identity.NewGenerator(""))
	rep := s.Evaluate()

	assert.Equal(t, "", s.ConditionColumn)
	assert.Equal(t, []int{2}, eligibleRows(rep))
	assert.Empty(t, rep.Invalid)
}

func TestSession_DNIMatchGate(t *testing.T) {
	s := newTestSession(
		// sin celular: aun así se reporta como match, no como inválida
		[]string{"A001", "Ana", "Lopez", "11111111", "", "INGRESO"},
		[]string{"A002", "José", "Pérez", "22222222", "988777666", "INGRESO"},
	)
	s = s.WithDirectory(snapshotWith([]string{"11111111"}, nil))

	rep := s.Evaluate()

	assert.Equal(t, []int{3}, eligibleRows(rep))
	assert.Empty(t, rep.Invalid)
	require.Len(t, rep.DNIMatches, 1)
	assert.Equal(t, 2, rep.DNIMatches[0].RowNumber)
	assert.Equal(t, "11111111", rep.DNIMatches[0].DNI)
	assert.Equal(t, "Lopez Ana", rep.DNIMatches[0].DisplayName)
}

func TestSession_RequiredGate(t *testing.T) {
	s := newTestSession(
		[]string{"", "Ana", "Lopez", "", "", "INGRESO"},
	)

	rep := s.Evaluate()

	assert.Empty(t, rep.Eligible)
	require.Len(t, rep.Invalid, 1)
	assert.Equal(t, []string{"DNI", "Celular", "Código"}, rep.Invalid[0].MissingFields)
}

func TestSession_RequiredPolicyToggleIsMonotonic(t *testing.T) {
	s := newTestSession(
		[]string{"A001", "Ana", "Lopez", "11111111", "", "INGRESO"},
		[]string{"A002", "José", "Pérez", "", "988777666", "INGRESO"},
	)

	rep := s.Evaluate()
	assert.Empty(t, rep.Eligible)
	require.Len(t, rep.Invalid, 2)
	assert.Equal(t, []string{"Celular"}, rep.Invalid[0].MissingFields)
	assert.Equal(t, []string{"DNI"}, rep.Invalid[1].MissingFields)

	// apagar celular libera la fila 2 sin tocar las demás puertas
	policy := s.Policy
	policy.Celular = false
	rep = s.WithPolicy(policy).Evaluate()

	assert.Equal(t, []int{2}, eligibleRows(rep))
	require.Len(t, rep.Invalid, 1)
	assert.Equal(t, 3, rep.Invalid[0].RowNumber)
	assert.Equal(t, []string{"DNI"}, rep.Invalid[0].MissingFields)
}

func TestSession_DirectoryEmailGate(t *testing.T) {
	s := newTestSession(
		[]string{"A001", "Ana Maria", "Lopez Diaz", "11111111", "999111222", "INGRESO"},
		[]string{"A002", "José", "Pérez", "22222222", "988777666", "INGRESO"},
	)
	s = s.WithDirectory(snapshotWith(nil, []string{"ana.lopez@autonomadeica.edu.pe"}))

	rep := s.Evaluate()

	assert.Equal(t, []int{3}, eligibleRows(rep))
	assert.Empty(t, rep.Invalid, "la colisión de correo no es un error de datos")

	require.Len(t, rep.Conflicts, 1)
	c := rep.Conflicts[0]
	assert.Equal(t, 2, c.RowNumber)
	assert.Equal(t, StatusInUse, c.Status)
	assert.Equal(t, "ana.lopez@autonomadeica.edu.pe", c.Generated)
	assert.Equal(t, c.Generated, c.Effective, "sin override el campo editable arranca con el generado")
	assert.False(t, c.Overridden)
	assert.Equal(t, "Ana Maria", c.Nombres)
	assert.Equal(t, "Lopez Diaz", c.Apellidos)
}

func TestSession_OverrideResolvesCollision(t *testing.T) {
	s := newTestSession(
		[]string{"A001", "Ana Maria", "Lopez Diaz", "11111111", "999111222", "INGRESO"},
	)
	s = s.WithDirectory(snapshotWith(nil, []string{"ana.lopez@autonomadeica.edu.pe"}))

	// parte local sola: se completa con el dominio institucional
	s = s.WithOverride(2, "ana.lopez2")
	require.Equal(t, "ana.lopez2@autonomadeica.edu.pe", s.Overrides[2])

	rep := s.Evaluate()

	require.Equal(t, []int{2}, eligibleRows(rep))
	assert.Equal(t, "ana.lopez2@autonomadeica.edu.pe", rep.Eligible[0].Username())

	require.Len(t, rep.Conflicts, 1)
	assert.Equal(t, StatusAvailable, rep.Conflicts[0].Status)
	assert.True(t, rep.Conflicts[0].Overridden)
	assert.Equal(t, "ana.lopez@autonomadeica.edu.pe", rep.Conflicts[0].Generated)
	assert.Equal(t, "ana.lopez2@autonomadeica.edu.pe", rep.Conflicts[0].Effective)
}

func TestSession_DuplicateGate(t *testing.T) {
	// mismas personas, DNI distinto: mismo correo generado
	s := newTestSession(
		[]string{"A001", "Ana Maria", "Lopez Diaz", "11111111", "999111222", "INGRESO"},
		[]string{"A002", "Ana Maria", "Lopez Diaz", "22222222", "988777666", "INGRESO"},
	)

	rep := s.Evaluate()

	assert.Equal(t, []int{2}, eligibleRows(rep), "gana la fila con número menor")
	assert.Empty(t, rep.Invalid, "el duplicado se descarta en silencio, no es inválido")
	assert.Equal(t, 1, rep.DuplicateTally)

	require.Len(t, rep.Conflicts, 2)
	assert.Equal(t, StatusAvailable, rep.Conflicts[0].Status)
	assert.Equal(t, StatusDuplicate, rep.Conflicts[1].Status)
	assert.Equal(t, 3, rep.Conflicts[1].RowNumber)
}

func TestSession_EmptyEmailIsNotADuplicateKey(t *testing.T) {
	// sin apellidos no hay correo generable; ambas filas salen igual
	s := newTestSession(
		[]string{"A001", "Ana", "", "11111111", "999111222", "INGRESO"},
		[]string{"A002", "José", "", "22222222", "988777666", "INGRESO"},
	)

	rep := s.Evaluate()

	assert.Equal(t, []int{2, 3}, eligibleRows(rep))
	assert.Equal(t, 0, rep.DuplicateTally)

	require.Len(t, rep.Conflicts, 2)
	for _, c := range rep.Conflicts {
		assert.Equal(t, StatusNoEmail, c.Status)
		assert.Equal(t, "", c.Generated)
	}
}

func TestSession_WithOverride(t *testing.T) {
	s := newTestSession(
		[]string{"A001", "Ana Maria", "Lopez Diaz", "11111111", "999111222", "INGRESO"},
	)

	t.Run("set then clear by typing the generated value", func(t *testing.T) {
		s2 := s.WithOverride(2, "maria.lopez")
		require.Equal(t, "maria.lopez@autonomadeica.edu.pe", s2.Overrides[2])

		// escribir el valor generado (con mayúsculas) vuelve al estado por defecto
		s2 = s2.WithOverride(2, "ANA.LOPEZ@AUTONOMADEICA.EDU.PE")
		_, ok := s2.Overrides[2]
		assert.False(t, ok)
	})

	t.Run("empty value clears", func(t *testing.T) {
		s2 := s.WithOverride(2, "maria.lopez").WithOverride(2, "  ")
		_, ok := s2.Overrides[2]
		assert.False(t, ok)
	})

	t.Run("unknown row is a no-op", func(t *testing.T) {
		s2 := s.WithOverride(99, "x")
		assert.Empty(t, s2.Overrides)
	})

	t.Run("original session is untouched", func(t *testing.T) {
		_ = s.WithOverride(2, "maria.lopez")
		assert.Empty(t, s.Overrides)
	})
}

func TestSession_WithAlternates(t *testing.T) {
	s := newTestSession(
		[]string{"A001", "Ana Maria", "Lopez Diaz", "11111111", "999111222", "INGRESO"},
		[]string{"A002", "José", "Pérez Rojas", "22222222", "988777666", "INGRESO"},
		[]string{"A003", "Luis Alberto", "Quispe Mamani", "33333333", "977666555", "INGRESO"},
	)
	s = s.WithDirectory(snapshotWith(nil, []string{
		"ana.lopez@autonomadeica.edu.pe",
		"jose.perez@autonomadeica.edu.pe",
		"luis.quispe@autonomadeica.edu.pe",
	}))
	// la fila 4 ya la resolvió el usuario a mano
	s = s.WithOverride(4, "lquispe")

	s = s.WithAlternates()

	assert.Equal(t, "maria.lopez@autonomadeica.edu.pe", s.Overrides[2], "segundo nombre + primer apellido")
	_, ok := s.Overrides[3]
	assert.False(t, ok, "sin segundo nombre no hay alternativa")
	assert.Equal(t, "lquispe@autonomadeica.edu.pe", s.Overrides[4], "las filas ya resueltas no se tocan")

	rep := s.Evaluate()
	assert.Equal(t, []int{2, 4}, eligibleRows(rep))
}

func TestSession_Project(t *testing.T) {
	s := newTestSession(
		[]string{"A001", "Ana Maria", "Lopez Diaz", "DNI 11.111.111", "999-111 222", "INGRESO"},
	)
	s = s.WithMapping(mapping.Merge(s.Mapping, mapping.Mapping{
		schema.FieldCountry: mapping.Fixed("Perú"),
	}))

	rec := s.Project(s.Sheet.Rows[0])

	assert.Equal(t, "ana.lopez@autonomadeica.edu.pe", rec.Username())
	assert.Equal(t, "Lopez Diaz Ana Maria", rec.Fields[schema.FieldDisplayName])
	assert.Equal(t, "11111111", rec.DNI(), "el DNI viaja en Fax y se filtra a dígitos")
	assert.Equal(t, "999111222", rec.Mobile())
	assert.Equal(t, "Perú", rec.Fields[schema.FieldCountry])
	assert.Equal(t, "", rec.Fields[schema.FieldJobTitle])

	values := rec.Values()
	require.Len(t, values, len(schema.Columns))
	assert.Equal(t, rec.Username(), values[0])
}
