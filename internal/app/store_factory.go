package app

import (
	"strings"

	"github.com/alvaroquispe1998/email-generator/internal/store"
	"github.com/alvaroquispe1998/email-generator/internal/store/postgres"
	"github.com/alvaroquispe1998/email-generator/internal/store/sqlite"
)

func NewStore(dsn, migrationsDir string) (store.PrefStore, error) {
	if strings.HasPrefix(dsn, "postgres") {
		return postgres.NewPostgresStore(dsn, migrationsDir)
	}
	return sqlite.NewSQLiteStore(dsn, migrationsDir)
}
