package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/alvaroquispe1998/email-generator/internal/engine"
	"github.com/alvaroquispe1998/email-generator/internal/export"
)

type Config struct {
	Server struct {
		Port       string `toml:"port"`
		EnableAuth bool   `toml:"enable_auth"`
	} `toml:"server"`

	Auth struct {
		RedisURL         string `toml:"redis_url"`
		TokenHeader      string `toml:"token_header"`
		TokenKeyTemplate string `toml:"token_key_template"`
	} `toml:"auth"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Identity struct {
		EmailDomain    string `toml:"email_domain"`
		ConditionValue string `toml:"condition_value"`
	} `toml:"identity"`

	Roster struct {
		ConditionColumn string `toml:"condition_column"`
	} `toml:"roster"`

	Export struct {
		Output    string `toml:"output"`
		ChunkSize int    `toml:"chunk_size"`
	} `toml:"export"`

	Required struct {
		DNI     *bool `toml:"dni"`
		Celular *bool `toml:"celular"`
		Codigo  *bool `toml:"codigo"`
	} `toml:"required"`

	// per-field rule overrides in textual form, e.g. Nombre = "col:NOMBRES"
	Mapping map[string]string `toml:"mapping"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	if config.Export.ChunkSize == 0 {
		config.Export.ChunkSize = export.DefaultChunkSize
	}
	if config.Database.DSN == "" {
		config.Database.DSN = "prefs.db"
	}
	if config.Database.MigrationsDir == "" {
		config.Database.MigrationsDir = "./migrations"
	}

	logger.Debug.Printf("Loaded config with %d mapping overrides", len(config.Mapping))

	return &config, nil
}

// RequiredPolicy is the configured default; stored per-profile prefs overlay
// it later. Flags left out of the config stay required.
func (c *Config) RequiredPolicy() engine.RequiredPolicy {
	policy := engine.DefaultPolicy()
	if c.Required.DNI != nil {
		policy.DNI = *c.Required.DNI
	}
	if c.Required.Celular != nil {
		policy.Celular = *c.Required.Celular
	}
	if c.Required.Codigo != nil {
		policy.Codigo = *c.Required.Codigo
	}
	return policy
}
