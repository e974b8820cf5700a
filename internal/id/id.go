// Package id generates opaque string identifiers.
//
// Database rows use integer keys; these IDs label things that never hit a
// table, such as request correlation IDs and token identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// requestAlphabet avoids look-alike characters so IDs survive being read aloud from logs.
const requestAlphabet = "23456789abcdefghjkmnpqrstuvwxyz"

// Generate creates a prefixed unique ID, e.g. "tok-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// RequestID returns a short lowercase ID for correlating log lines of one request.
func RequestID() string {
	id, err := gonanoid.Generate(requestAlphabet, 12)
	if err != nil {
		return "unknown"
	}
	return id
}
