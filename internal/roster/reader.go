// internal/roster/reader.go
package roster

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8  = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16 = [][]byte{{0xFF, 0xFE}, {0xFE, 0xFF}}
)

// Load parses a delimited export into a Sheet. Handles UTF-8 with or without
// BOM, UTF-16 with BOM and Latin-1 input, and both "," and ";" delimiters,
// which covers what the registry office actually sends us.
func Load(data []byte) (*Sheet, error) {
	decoded, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode input: %w", err)
	}

	r := csv.NewReader(bytes.NewReader(decoded))
	r.Comma = sniffDelimiter(decoded)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("input has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	sheet := &Sheet{Headers: NormalizeHeaders(header)}
	for {
		cells, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse row: %w", err)
		}
		// physical line of the record, so blank lines do not shift numbering
		line, _ := r.FieldPos(0)
		row := NewRow(line, sheet.Headers, cells)
		if row.Empty() {
			continue
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	return sheet, nil
}

func decode(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, bomUTF8) {
		return data[len(bomUTF8):], nil
	}
	for _, bom := range bomUTF16 {
		if bytes.HasPrefix(data, bom) {
			dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
			out, err := dec.Bytes(data)
			if err != nil {
				return nil, fmt.Errorf("utf-16 decode failed: %w", err)
			}
			return out, nil
		}
	}
	if utf8.Valid(data) {
		return data, nil
	}
	return charmap.ISO8859_1.NewDecoder().Bytes(data)
}

// sniffDelimiter looks at the header line only. Spreadsheet exports from
// locales with decimal comma use ";".
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}
