package application

import (
	"strings"
	"time"
	"unicode"

	"application-portal/upload/domain"
)

// letras acentuadas aceitas no nome do arquivo, além de [A-Za-z0-9], espaço e '-'.
const allowedDiacritics = "äöüÄÖÜàáâãäåèéêëìíîïòóôõöùúûüýÿñç"

// ObjectPath monta o destino do objeto:
//
//	applications/<timestamp ISO-8601 UTC com ':' e '.' trocados por '-'>_<First Last>.pdf
//
// Ex.: applications/2026-01-15T10-30-00-000Z_Marie Curie.pdf
func ObjectPath(now time.Time, firstName, lastName string) string {
	return domain.PathPrefix + pathTimestamp(now) + "_" + fileName(firstName, lastName)
}

func pathTimestamp(now time.Time) string {
	ts := now.UTC().Format("2006-01-02T15:04:05.000Z")
	return strings.NewReplacer(":", "-", ".", "-").Replace(ts)
}

func fileName(firstName, lastName string) string {
	first := sanitizeName(firstName)
	if first == "" {
		first = domain.FallbackFirst
	}
	last := sanitizeName(lastName)
	if last == "" {
		last = domain.FallbackLast
	}
	return first + " " + last + domain.StoredExtension
}

// sanitizeName descarta tudo fora da lista permitida e apara espaços nas pontas.
func sanitizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if allowedNameRune(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func allowedNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
		return true
	case unicode.IsSpace(r):
		return true
	default:
		return strings.ContainsRune(allowedDiacritics, r)
	}
}
