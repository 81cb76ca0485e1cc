package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Slugify lowercases, strips everything outside [a-z0-9] and joins
// the remaining runs with hyphens.
func Slugify(nombre string) string {
	nombre = strings.ToLower(strings.TrimSpace(nombre))
	var b strings.Builder
	lastHyphen := true
	for _, r := range nombre {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// uniqueSlug suffixes the base slug with a fragment of the empresa id
// when the plain form is taken.
func (s *SessionService) uniqueSlug(ctx context.Context, nombre string, id uuid.UUID) (string, error) {
	base := Slugify(nombre)
	if base == "" {
		base = "empresa"
	}
	taken, err := s.Repo.SlugExists(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	return base + "-" + id.String()[:8], nil
}
