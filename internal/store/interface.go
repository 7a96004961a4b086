package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
)

type PrefStore interface {
	Close() error
	ApplyMigrations(dir string) error

	SaveMapping(profile string, rules map[string]string) error
	LoadMapping(profile string) (map[string]string, error)
	SavePolicy(pref RequiredPref) error
	LoadPolicy(profile string) (*RequiredPref, error)
	// DeleteProfile(profile string) error
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	if dir == "" {
		return nil
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

// SaveMapping replaces the stored rules for a profile wholesale, one row per
// output field, in the textual rule form.
func (s *BaseStore) SaveMapping(profile string, rules map[string]string) error {
	if _, err := s.DB.Exec(s.Converter(`DELETE FROM mapping_prefs WHERE profile = ?`), profile); err != nil {
		return fmt.Errorf("failed to clear mapping prefs: %w", err)
	}

	for field, rule := range rules {
		_, err := s.DB.NamedExec(`
			INSERT INTO mapping_prefs (profile, field, rule)
			VALUES (:profile, :field, :rule)
		`, MappingRule{Profile: profile, Field: field, Rule: rule})
		if err != nil {
			return fmt.Errorf("failed to save mapping rule for %s: %w", field, err)
		}
	}
	return nil
}

func (s *BaseStore) LoadMapping(profile string) (map[string]string, error) {
	var rows []MappingRule
	query := s.Converter(`
		SELECT profile, field, rule
		FROM mapping_prefs
		WHERE profile = ?
		ORDER BY field
	`)

	if err := s.DB.Select(&rows, query, profile); err != nil {
		return nil, fmt.Errorf("failed to load mapping prefs: %w", err)
	}

	rules := make(map[string]string, len(rows))
	for _, row := range rows {
		rules[row.Field] = row.Rule
	}
	return rules, nil
}

func (s *BaseStore) SavePolicy(pref RequiredPref) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO required_prefs (profile, require_dni, require_celular, require_codigo)
		VALUES (:profile, :require_dni, :require_celular, :require_codigo)
		ON CONFLICT(profile) DO UPDATE SET
		require_dni = :require_dni,
		require_celular = :require_celular,
		require_codigo = :require_codigo
	`, pref)
	if err != nil {
		return fmt.Errorf("failed to save required prefs: %w", err)
	}
	return nil
}

func (s *BaseStore) LoadPolicy(profile string) (*RequiredPref, error) {
	var pref RequiredPref
	query := s.Converter(`
		SELECT profile, require_dni, require_celular, require_codigo
		FROM required_prefs
		WHERE profile = ?
	`)

	err := s.DB.Get(&pref, query, profile)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load required prefs: %w", err)
	}
	return &pref, nil
}
