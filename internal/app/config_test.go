package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvaroquispe1998/email-generator/internal/mapping"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[server]
port = ":9999"

[identity]
email_domain = "autonomadeica.edu.pe"

[export]
output = "contactos"

[required]
celular = false

[mapping]
Nombre = "col:NOMBRES"
"País o región" = "fixed:Perú"
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", config.Server.Port)
	assert.Equal(t, "autonomadeica.edu.pe", config.Identity.EmailDomain)
	assert.Equal(t, 249, config.Export.ChunkSize, "chunk size defaults when unset")
	assert.Equal(t, "prefs.db", config.Database.DSN, "DSN defaults to a local sqlite file")
	assert.Equal(t, "./migrations", config.Database.MigrationsDir)

	policy := config.RequiredPolicy()
	assert.True(t, policy.DNI, "flags left out stay required")
	assert.False(t, policy.Celular)
	assert.True(t, policy.Codigo)

	assert.Equal(t, "col:NOMBRES", config.Mapping["Nombre"])
	assert.Equal(t, "fixed:Perú", config.Mapping["País o región"])
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "no-such.toml"))
	assert.Error(t, err)
}

func TestParseRules_DropsMalformed(t *testing.T) {
	rules := parseRules(map[string]string{
		"Nombre":        "col:NOMBRES",
		"Apellido":      "columna sin prefijo",
		"País o región": "fixed:Perú",
		"Fax":           "gen:apodo",
	})

	assert.Equal(t, mapping.Mapping{
		"Nombre":        mapping.FromColumn("NOMBRES"),
		"País o región": mapping.Fixed("Perú"),
	}, rules, "malformed rules fall away, the rest survive")
}
