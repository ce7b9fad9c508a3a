package middleware

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxQueryLength limite da busca de usuário
const MaxQueryLength = 100

var (
	invalidIDChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	validID        = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// SanitizeQuery limpa o texto de busca de usuário: sem espaços nas pontas,
// sem caracteres de controle e com no máximo MaxQueryLength runas
func SanitizeQuery(q string) string {
	q = removeControlChars(strings.TrimSpace(q))
	if runes := []rune(q); len(runes) > MaxQueryLength {
		q = string(runes[:MaxQueryLength])
	}
	return q
}

// SanitizeID remove tudo que não é alfanumérico, hífen ou underscore (IDs do ClickUp)
func SanitizeID(id string) string {
	return invalidIDChars.ReplaceAllString(strings.TrimSpace(id), "")
}

// ValidateID indica se o ID está no formato esperado
func ValidateID(id string) bool {
	return validID.MatchString(id)
}

// SanitizeStatuses limpa a lista de status e descarta entradas vazias
func SanitizeStatuses(statuses []string) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		s = removeControlChars(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func removeControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
