package roster

import (
	"fmt"
	"strings"
)

// Sheet is one parsed roster: normalized headers plus the surviving data
// rows. Immutable after Load; a new upload replaces it wholesale.
type Sheet struct {
	Headers []string
	Rows    []Row
}

// Row keeps the raw cells of one data line. Number is the physical position
// in the file, counting the header as line 1, so it stays stable across
// filtering and can be shown to the user.
type Row struct {
	Number int
	cells  map[string]string
}

func NewRow(number int, headers, cells []string) Row {
	m := make(map[string]string, len(headers))
	for i, h := range headers {
		if i < len(cells) {
			m[h] = cells[i]
		}
	}
	return Row{Number: number, cells: m}
}

// Cell returns the trimmed value under a header, "" when the column does not
// exist or the cell is blank.
func (r Row) Cell(column string) string {
	return strings.TrimSpace(r.cells[column])
}

func (r Row) Empty() bool {
	for _, v := range r.cells {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// NormalizeHeaders fills blank headers and disambiguates repeats. The first
// blank becomes "Columna", later blanks "Columna N" by blank count; after
// that, any name seen again gets a " (k)" suffix: DNI, DNI (2), DNI (3).
func NormalizeHeaders(raw []string) []string {
	out := make([]string, len(raw))
	blanks := 0
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			blanks++
			if blanks == 1 {
				h = "Columna"
			} else {
				h = fmt.Sprintf("Columna %d", blanks)
			}
		}
		out[i] = h
	}

	seen := make(map[string]int, len(out))
	for i, h := range out {
		seen[h]++
		if seen[h] > 1 {
			out[i] = fmt.Sprintf("%s (%d)", h, seen[h])
		}
	}
	return out
}
