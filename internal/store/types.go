package store

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

type DBConfig struct {
	DSN  string
	Type DatabaseType
}

// MappingRule is one persisted field rule in its textual form, e.g.
// rule = "col:NOMBRES" for field = "Nombre".
type MappingRule struct {
	Profile string `db:"profile"`
	Field   string `db:"field"`
	Rule    string `db:"rule"`
}

// RequiredPref is the persisted required-field policy for one profile.
type RequiredPref struct {
	Profile        string `db:"profile"`
	RequireDNI     bool   `db:"require_dni"`
	RequireCelular bool   `db:"require_celular"`
	RequireCodigo  bool   `db:"require_codigo"`
}
