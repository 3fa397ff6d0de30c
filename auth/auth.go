// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// PollCodeLength is the length of the public share code.
const PollCodeLength = 8

var codePattern = regexp.MustCompile(`^[0-9A-F]{8}$`)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GeneratePollCode creates a short public poll code: the first 8 hex
// characters of a UUID, uppercased. Collisions are possible and handled
// by the caller retrying against the code's UNIQUE constraint.
func GeneratePollCode() string {
	u := uuid.New()
	return strings.ToUpper(hex.EncodeToString(u[:]))[:PollCodeLength]
}

// GenerateVoterToken creates the opaque per-browser token. Clients
// persist it (cookie) and re-send it on every vote attempt.
func GenerateVoterToken() string {
	return uuid.NewString()
}

// NormalizeCode uppercases and trims a client-supplied poll code.
// Codes are case-insensitive on the way in, stored uppercase.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether a normalized code is well-formed.
// Malformed codes are rejected before any storage access.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}
