package directory

import (
	"fmt"
	"strings"

	"github.com/alvaroquispe1998/email-generator/internal/normalize"
	"github.com/alvaroquispe1998/email-generator/internal/roster"
)

// Snapshot is what the mail directory already holds: identity numbers and
// principal addresses, both canonicalized. Loaded once per session from the
// admin-portal export; a nil or empty snapshot rejects nothing.
type Snapshot struct {
	DNIs   map[string]bool
	Emails map[string]bool
}

// SchemaError reports required directory columns that were not found. The
// columns fail independently: a snapshot loaded alongside this error still
// carries the sets whose columns were present.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("directory file is missing required columns: %s", strings.Join(e.Missing, ", "))
}

// ReadError means the file could not be parsed at all; the directory stays
// empty and inert.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read directory file: %v", e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

func Empty() *Snapshot {
	return &Snapshot{
		DNIs:   make(map[string]bool),
		Emails: make(map[string]bool),
	}
}

// Load builds a Snapshot from a directory export. The file must carry a Fax
// column (the directory transports identity numbers there) and a
// "User principal name" column, both matched case- and spacing-tolerantly.
func Load(data []byte) (*Snapshot, error) {
	sheet, err := roster.Load(data)
	if err != nil {
		return Empty(), &ReadError{Err: err}
	}

	var faxCol, upnCol string
	for _, h := range sheet.Headers {
		switch columnKey(h) {
		case "fax":
			if faxCol == "" {
				faxCol = h
			}
		case "userprincipalname":
			if upnCol == "" {
				upnCol = h
			}
		}
	}

	snap := Empty()
	var missing []string

	if faxCol == "" {
		missing = append(missing, "Fax")
	} else {
		for _, row := range sheet.Rows {
			if dni := normalize.DigitsOnly(row.Cell(faxCol)); dni != "" {
				snap.DNIs[dni] = true
			}
		}
	}

	if upnCol == "" {
		missing = append(missing, "User principal name")
	} else {
		for _, row := range sheet.Rows {
			if email := normalize.CanonicalEmail(row.Cell(upnCol)); email != "" {
				snap.Emails[email] = true
			}
		}
	}

	if len(missing) > 0 {
		return snap, &SchemaError{Missing: missing}
	}
	return snap, nil
}

// HasDNI expects a digits-only value; "" never matches.
func (s *Snapshot) HasDNI(dni string) bool {
	if s == nil || dni == "" {
		return false
	}
	return s.DNIs[dni]
}

// HasEmail expects a canonicalized address; "" never matches.
func (s *Snapshot) HasEmail(email string) bool {
	if s == nil || email == "" {
		return false
	}
	return s.Emails[email]
}

func columnKey(header string) string {
	return strings.Join(normalize.Tokenize(header), "")
}
