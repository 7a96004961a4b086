package engine

type ConflictStatus string

const (
	StatusNoEmail   ConflictStatus = "sin correo"
	StatusInUse     ConflictStatus = "en uso"
	StatusDuplicate ConflictStatus = "duplicado en la lista, no se exporta"
	StatusAvailable ConflictStatus = "disponible"
)

// Conflict is one row of the resolution screen. Effective seeds the editable
// field: the override when one exists, the generated address otherwise.
type Conflict struct {
	RowNumber  int            `json:"rowNumber"`
	Nombres    string         `json:"nombres"`
	Apellidos  string         `json:"apellidos"`
	Generated  string         `json:"generated"`
	Effective  string         `json:"effective"`
	Overridden bool           `json:"overridden"`
	Status     ConflictStatus `json:"status"`
}

// buildConflicts picks the rows the resolution screen shows: address already
// taken or duplicated, address that could not be generated, or an override
// in place (so a resolved row stays visible with its current status).
func (s Session) buildConflicts(candidates []*candidate) []Conflict {
	var out []Conflict
	for _, c := range candidates {
		member := c.canonical == "" ||
			c.inDirectory ||
			c.genInDirectory ||
			c.sharesDup ||
			c.overridden
		if !member {
			continue
		}

		var status ConflictStatus
		switch {
		case c.canonical == "":
			status = StatusNoEmail
		case c.inDirectory:
			status = StatusInUse
		case c.droppedDup:
			status = StatusDuplicate
		default:
			status = StatusAvailable
		}

		nombres, apellidos := s.nameParts(c.row)
		out = append(out, Conflict{
			RowNumber:  c.row.Number,
			Nombres:    nombres,
			Apellidos:  apellidos,
			Generated:  c.generated,
			Effective:  c.effective,
			Overridden: c.overridden,
			Status:     status,
		})
	}
	return out
}
