// Package schema fixes the contact-import layout expected by the mail
// directory. Column names and their order are part of the wire format and
// must not change.
package schema

const (
	FieldUsername    = "Nombre de usuario"
	FieldFirstName   = "Nombre"
	FieldLastName    = "Apellido"
	FieldDisplayName = "Nombre para mostrar"
	FieldJobTitle    = "Puesto"
	FieldDepartment  = "Departamento"
	FieldJobNumber   = "Número del trabajo"
	FieldOfficePhone = "Teléfono de la oficina"
	FieldMobilePhone = "Teléfono móvil"
	FieldFax         = "Fax"
	FieldAltEmail    = "Dirección de correo electrónico alternativa"
	FieldAddress     = "Dirección"
	FieldCity        = "Ciudad"
	FieldState       = "Estado o provincia"
	FieldPostalCode  = "Código postal"
	FieldCountry     = "País o región"
)

// Carrier fields: the directory has no dedicated columns for these, so the
// student values ride along in repurposed contact fields.
const (
	DNICarrier         = FieldFax
	MobileCarrier      = FieldMobilePhone
	StudentCodeCarrier = FieldJobNumber
)

var Columns = []string{
	FieldUsername,
	FieldFirstName,
	FieldLastName,
	FieldDisplayName,
	FieldJobTitle,
	FieldDepartment,
	FieldJobNumber,
	FieldOfficePhone,
	FieldMobilePhone,
	FieldFax,
	FieldAltEmail,
	FieldAddress,
	FieldCity,
	FieldState,
	FieldPostalCode,
	FieldCountry,
}

// DigitFiltered reports whether a column only ever carries digits in the
// import file, whatever the mapping says.
func DigitFiltered(field string) bool {
	return field == FieldMobilePhone || field == FieldFax
}

// Record is one projected output row. Fields is keyed by column name;
// missing keys serialize as empty cells.
type Record struct {
	RowNumber int
	Fields    map[string]string
}

func NewRecord(rowNumber int) Record {
	return Record{
		RowNumber: rowNumber,
		Fields:    make(map[string]string, len(Columns)),
	}
}

// Values returns the cells in export column order.
func (r Record) Values() []string {
	out := make([]string, len(Columns))
	for i, col := range Columns {
		out[i] = r.Fields[col]
	}
	return out
}

func (r Record) Username() string {
	return r.Fields[FieldUsername]
}

func (r Record) DNI() string {
	return r.Fields[DNICarrier]
}

func (r Record) Mobile() string {
	return r.Fields[MobileCarrier]
}

func (r Record) StudentCode() string {
	return r.Fields[StudentCodeCarrier]
}
