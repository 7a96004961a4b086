package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	data := []byte("CODIGO,NOMBRES,APELLIDOS\nA001, Ana María ,López\nA002,José,Ñañez\n")

	sheet, err := Load(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"CODIGO", "NOMBRES", "APELLIDOS"}, sheet.Headers)
	require.Len(t, sheet.Rows, 2)

	assert.Equal(t, 2, sheet.Rows[0].Number, "la primera fila de datos es la 2, el header es la 1")
	assert.Equal(t, 3, sheet.Rows[1].Number)
	assert.Equal(t, "Ana María", sheet.Rows[0].Cell("NOMBRES"), "celdas llegan sin espacios")
	assert.Equal(t, "", sheet.Rows[0].Cell("NO EXISTE"))
}

func TestLoad_EmptyRowsDropped(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{
			name: "row of empty cells",
			data: "CODIGO,NOMBRES\n,\nA1,Ana\n",
		},
		{
			name: "blank line",
			data: "CODIGO,NOMBRES\n\nA1,Ana\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sheet, err := Load([]byte(tc.data))
			require.NoError(t, err)
			require.Len(t, sheet.Rows, 1)
			// numbering counts the skipped physical line
			assert.Equal(t, 3, sheet.Rows[0].Number)
			assert.Equal(t, "Ana", sheet.Rows[0].Cell("NOMBRES"))
		})
	}
}

func TestLoad_SemicolonDelimiter(t *testing.T) {
	data := []byte("CODIGO;NOMBRES;APELLIDOS\nA001;Ana;López\n")

	sheet, err := Load(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"CODIGO", "NOMBRES", "APELLIDOS"}, sheet.Headers)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "Ana", sheet.Rows[0].Cell("NOMBRES"))
}

func TestLoad_Encodings(t *testing.T) {
	t.Run("utf-8 with BOM", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("DNI\n123\n")...)
		sheet, err := Load(data)
		require.NoError(t, err)
		assert.Equal(t, []string{"DNI"}, sheet.Headers)
		assert.Equal(t, "123", sheet.Rows[0].Cell("DNI"))
	})

	t.Run("utf-16 little endian", func(t *testing.T) {
		var data []byte
		data = append(data, 0xFF, 0xFE)
		for _, r := range "DNI\n123\n" {
			data = append(data, byte(r), 0x00)
		}
		sheet, err := Load(data)
		require.NoError(t, err)
		assert.Equal(t, []string{"DNI"}, sheet.Headers)
		assert.Equal(t, "123", sheet.Rows[0].Cell("DNI"))
	})

	t.Run("latin-1 fallback", func(t *testing.T) {
		data := []byte("NOMBRES\nJOS\xc9\n")
		sheet, err := Load(data)
		require.NoError(t, err)
		assert.Equal(t, "JOSÉ", sheet.Rows[0].Cell("NOMBRES"))
	})
}

func TestLoad_NoHeader(t *testing.T) {
	_, err := Load([]byte(""))
	assert.Error(t, err)
}

func TestLoad_RaggedRows(t *testing.T) {
	data := []byte("CODIGO,NOMBRES\nA1\nA2,Ana,extra\n")

	sheet, err := Load(data)
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 2)

	assert.Equal(t, "A1", sheet.Rows[0].Cell("CODIGO"))
	assert.Equal(t, "", sheet.Rows[0].Cell("NOMBRES"))
	assert.Equal(t, "Ana", sheet.Rows[1].Cell("NOMBRES"))
}

func TestNormalizeHeaders(t *testing.T) {
	testCases := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "blanks become Columna N",
			input:    []string{"", "DNI", " ", ""},
			expected: []string{"Columna", "DNI", "Columna 2", "Columna 3"},
		},
		{
			name:     "duplicates get a suffix",
			input:    []string{"DNI", "DNI", "DNI"},
			expected: []string{"DNI", "DNI (2)", "DNI (3)"},
		},
		{
			name:     "blank then duplicate of the default",
			input:    []string{"", "Columna"},
			expected: []string{"Columna", "Columna (2)"},
		},
		{
			name:     "headers trimmed",
			input:    []string{" CODIGO ", "NOMBRES"},
			expected: []string{"CODIGO", "NOMBRES"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeHeaders(tc.input))
		})
	}
}
