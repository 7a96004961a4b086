package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/alvaroquispe1998/email-generator/internal/engine"
	"github.com/alvaroquispe1998/email-generator/internal/export"
	"github.com/alvaroquispe1998/email-generator/internal/identity"
	"github.com/alvaroquispe1998/email-generator/internal/mapping"
	"github.com/alvaroquispe1998/email-generator/internal/roster"
	"github.com/alvaroquispe1998/email-generator/internal/store"
)

type Service struct {
	Config *Config
	Store  store.PrefStore
	Auth   *Auth
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	auth, err := NewAuth(config)
	if err != nil {
		return nil, fmt.Errorf("failed to init auth: %w", err)
	}

	return &Service{
		Config: config,
		Store:  store,
		Auth:   auth,
	}, nil
}

func (s *Service) Generator() identity.Generator {
	return identity.NewGenerator(s.Config.Identity.EmailDomain)
}

func (s *Service) Batcher() *export.Batcher {
	return export.NewBatcher(s.Config.Export.Output, s.Config.Export.ChunkSize)
}

// NewSession builds the working state for a freshly loaded sheet. Rule
// precedence per field: config overrides beat stored prefs beat header
// inference; NewSession then sanitizes the result against the actual
// headers, so stale rules degrade to the inferred default instead of
// failing the load.
func (s *Service) NewSession(sheet *roster.Sheet, profile string) engine.Session {
	merged := mapping.Merge(
		mapping.Infer(sheet.Headers),
		mapping.Merge(s.loadStoredMapping(profile), parseRules(s.Config.Mapping)),
	)

	sess := engine.NewSession(sheet, merged, s.Generator())
	sess = sess.WithPolicy(s.loadPolicy(profile))

	if s.Config.Roster.ConditionColumn != "" {
		sess.ConditionColumn = s.Config.Roster.ConditionColumn
	}
	if s.Config.Identity.ConditionValue != "" {
		sess.ConditionValue = s.Config.Identity.ConditionValue
	}

	return sess
}

// SavePrefs persists the session's mapping and policy for the next run.
// Best effort: the session itself never depends on this succeeding.
func (s *Service) SavePrefs(profile string, sess engine.Session) error {
	rules := make(map[string]string, len(sess.Mapping))
	for field, rule := range sess.Mapping {
		rules[field] = rule.String()
	}
	if err := s.Store.SaveMapping(profile, rules); err != nil {
		return fmt.Errorf("failed to save mapping prefs: %w", err)
	}

	pref := store.RequiredPref{
		Profile:        profile,
		RequireDNI:     sess.Policy.DNI,
		RequireCelular: sess.Policy.Celular,
		RequireCodigo:  sess.Policy.Codigo,
	}
	if err := s.Store.SavePolicy(pref); err != nil {
		return fmt.Errorf("failed to save required prefs: %w", err)
	}
	return nil
}

func (s *Service) loadStoredMapping(profile string) mapping.Mapping {
	stored, err := s.Store.LoadMapping(profile)
	if err != nil {
		logger.Debug.Printf("Ignoring stored mapping for %s: %v", profile, err)
		return nil
	}
	return parseRules(stored)
}

func (s *Service) loadPolicy(profile string) engine.RequiredPolicy {
	policy := s.Config.RequiredPolicy()

	pref, err := s.Store.LoadPolicy(profile)
	if err != nil {
		logger.Debug.Printf("Ignoring stored policy for %s: %v", profile, err)
		return policy
	}
	if pref == nil {
		return policy
	}
	return engine.RequiredPolicy{
		DNI:     pref.RequireDNI,
		Celular: pref.RequireCelular,
		Codigo:  pref.RequireCodigo,
	}
}

// parseRules reads textual rules, dropping the malformed ones. A bad stored
// or configured rule means that field falls back to inference.
func parseRules(rules map[string]string) mapping.Mapping {
	m := make(mapping.Mapping, len(rules))
	for field, text := range rules {
		rule, err := mapping.ParseRule(text)
		if err != nil {
			logger.Debug.Printf("Discarding rule for %q: %v", field, err)
			continue
		}
		m[field] = rule
	}
	return m
}

func (s *Service) ValidateAuth(r *http.Request, profile string) error {
	if !s.Config.Server.EnableAuth {
		return nil
	}

	authHeader := r.Header.Get(s.Auth.tokenHeader)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return fmt.Errorf("Invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	return s.Auth.ValidateToken(r.Context(), profile, token)
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Auth.Close(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
