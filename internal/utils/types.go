package utils

import (
	"strings"
	"unicode"
)

// BareTypeName strips pointers, the package qualifier and type arguments
// from a type string: "*services.Repo[int]" becomes "Repo"
func BareTypeName(typeStr string) string {
	name := strings.TrimLeft(strings.TrimSpace(typeStr), "*")

	if i := strings.IndexByte(name, '['); i > 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "."); i != -1 {
		name = name[i+1:]
	}
	return name
}

// LowerFirst lower-cases the leading word of an identifier, treating a run
// of capitals as an acronym: "Repo" -> "repo", "DBConn" -> "dbConn",
// "URL" -> "url".
func LowerFirst(s string) string {
	runes := []rune(s)
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
		return s
	}

	end := 1
	for end < len(runes) && unicode.IsUpper(runes[end]) {
		end++
	}
	// keep the capital that starts the next word
	if end > 1 && end < len(runes) && unicode.IsLower(runes[end]) {
		end--
	}
	for i := 0; i < end; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
