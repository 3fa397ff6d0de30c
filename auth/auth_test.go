// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import "testing"

func TestGenerateID(t *testing.T) {
	id, err := GenerateID(16)
	if err != nil {
		t.Fatalf("GenerateID failed: %v", err)
	}
	if len(id) != 32 {
		t.Errorf("Expected 32 hex chars, got %d", len(id))
	}

	other, _ := GenerateID(16)
	if id == other {
		t.Error("Two generated IDs should differ")
	}
}

func TestGeneratePollCode(t *testing.T) {
	code := GeneratePollCode()
	if !ValidCode(code) {
		t.Errorf("Generated code %q is not valid", code)
	}

	// Codes should be effectively unique.
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[GeneratePollCode()] = true
	}
	if len(seen) < 95 {
		t.Errorf("Too many collisions in 100 codes: %d unique", len(seen))
	}
}

func TestGenerateVoterToken(t *testing.T) {
	a := GenerateVoterToken()
	b := GenerateVoterToken()
	if a == "" || a == b {
		t.Error("Voter tokens should be non-empty and unique")
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  3fa2b91c "); got != "3FA2B91C" {
		t.Errorf("Expected 3FA2B91C, got %q", got)
	}
}

func TestValidCode(t *testing.T) {
	valid := []string{"3FA2B91C", "00000000", "ABCDEF12"}
	invalid := []string{"", "3fa2b91c", "3FA2B91", "3FA2B91CX", "GHIJKLMN", "3FA2-91C"}

	for _, code := range valid {
		if !ValidCode(code) {
			t.Errorf("Expected %q to be valid", code)
		}
	}
	for _, code := range invalid {
		if ValidCode(code) {
			t.Errorf("Expected %q to be invalid", code)
		}
	}
}
