package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBareTypeName(t *testing.T) {
	tests := map[string]string{
		"UserRepository":            "UserRepository",
		"*UserRepository":           "UserRepository",
		"*services.UserRepository":  "UserRepository",
		"services.Cache[string]":    "Cache",
		"*store.Map[string, int]":   "Map",
		"**pkg.Deep":                "Deep",
		" *pkg.Spaced ":             "Spaced",
	}
	for in, want := range tests {
		assert.Equal(t, want, BareTypeName(in), in)
	}
}

func TestLowerFirst(t *testing.T) {
	tests := map[string]string{
		"Repo":    "repo",
		"repo":    "repo",
		"DBConn":  "dbConn",
		"URL":     "url",
		"ID":      "id",
		"A":       "a",
		"GetUser": "getUser",
		"":        "",
	}
	for in, want := range tests {
		assert.Equal(t, want, LowerFirst(in), in)
	}
}
