package identity

import (
	"strings"

	"github.com/alvaroquispe1998/email-generator/internal/normalize"
)

const DefaultDomain = "autonomadeica.edu.pe"

// Generator builds institutional addresses from raw name cells.
type Generator struct {
	Domain string
}

func NewGenerator(domain string) Generator {
	if domain == "" {
		domain = DefaultDomain
	}
	return Generator{Domain: domain}
}

// Primary is first given name + first surname: "Ana María" + "López Díaz"
// -> "ana.lopez@...". Empty when either part has no usable token, which
// callers read as "cannot generate".
func (g Generator) Primary(names, surnames string) string {
	n := normalize.Tokenize(names)
	s := normalize.Tokenize(surnames)
	if len(n) == 0 || len(s) == 0 {
		return ""
	}
	return g.address(n[0], s[0])
}

// Alternate swaps in the second given name, the manual fallback offered when
// Primary collides. Empty when there is no second given name.
func (g Generator) Alternate(names, surnames string) string {
	n := normalize.Tokenize(names)
	s := normalize.Tokenize(surnames)
	if len(n) < 2 || len(s) == 0 {
		return ""
	}
	return g.address(n[1], s[0])
}

func (g Generator) address(name, surname string) string {
	return name + "." + surname + "@" + g.Domain
}

// DisplayName joins surname and given names with empty parts omitted, so a
// lone surname never drags a separator along.
func DisplayName(surnames, names string) string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(surnames); s != "" {
		parts = append(parts, s)
	}
	if n := strings.TrimSpace(names); n != "" {
		parts = append(parts, n)
	}
	return strings.Join(parts, " ")
}
