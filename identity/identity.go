// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"errors"
	"net"
	"strings"
)

var (
	ErrMissingAddress = errors.New("source address missing")
	ErrMissingToken   = errors.New("voter token missing")
)

// FairnessKey is the derived (address, token) pair used to detect
// duplicate voting. It is transient - never persisted as its own entity.
type FairnessKey struct {
	SourceAddress string
	VoterToken    string
}

// Resolve normalizes a raw request context into a FairnessKey.
//
// The token must be supplied by the client; Resolve never invents one.
// An empty token would collide across every token-less client and
// defeat the per-browser check, so it is an error, not a default.
func Resolve(sourceAddress, voterToken string) (FairnessKey, error) {
	addr := normalizeAddress(sourceAddress)
	if addr == "" {
		return FairnessKey{}, ErrMissingAddress
	}

	token := strings.TrimSpace(voterToken)
	if token == "" {
		return FairnessKey{}, ErrMissingToken
	}

	return FairnessKey{SourceAddress: addr, VoterToken: token}, nil
}

// normalizeAddress strips an optional port and lowercases the host so
// that "192.0.2.1:5431" and "192.0.2.1:8822" count as the same voter.
func normalizeAddress(raw string) string {
	addr := strings.TrimSpace(raw)
	if addr == "" {
		return ""
	}

	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}

	return strings.ToLower(strings.Trim(addr, "[]"))
}
