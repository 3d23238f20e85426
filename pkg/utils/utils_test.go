package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCalculateStringSHA256(t *testing.T) {
	// Known vector: sha256("") and sha256("abc")
	tests := []struct {
		input    string
		expected string
	}{
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}
	for _, tt := range tests {
		if got := CalculateStringSHA256(tt.input); got != tt.expected {
			t.Errorf("CalculateStringSHA256(%q) = %s, want %s", tt.input, got, tt.expected)
		}
	}
}

func TestCalculateStringSHA256_Deterministic(t *testing.T) {
	input := strings.Repeat("https://example.com/very/long/path?", 20)
	if CalculateStringSHA256(input) != CalculateStringSHA256(input) {
		t.Error("hash of identical input differs between calls")
	}
	if len(CalculateStringSHA256(input)) != 64 {
		t.Errorf("hex digest length = %d, want 64", len(CalculateStringSHA256(input)))
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"PlainHost", "example.com", "example.com"},
		{"HostWithPort", "example.com:8080", "example.com_8080"},
		{"PathSeparators", "a/b\\c", "a_b_c"},
		{"CollapsedUnderscores", "a//b", "a_b"},
		{"Empty", "", "untitled"},
		{"OnlyInvalid", "???", "untitled"},
		{"TrimmedEdges", "_abc_", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Nil", nil, "None"},
		{"Render", fmt.Errorf("%w: navigating", ErrRenderFailed), "Render_Failed"},
		{"HTTP404", fmt.Errorf("%w: status 404", ErrHTTPStatus), "HTTP_404"},
		{"Fetch", fmt.Errorf("%w: %w", ErrFetchFailed, errors.New("boom")), "Fetch_Failed"},
		{"Scope", ErrScopeViolation, "Policy_Scope"},
		{"ParsingURL", fmt.Errorf("%w: bad URL", ErrParsing), "Content_ParsingURL"},
		{"Config", ErrConfigValidation, "Config_Validation"},
		{"Canceled", context.Canceled, "System_ContextCanceled"},
		{"DNS", errors.New("dial tcp: lookup x: no such host"), "Network_DNSLookup"},
		{"Unknown", errors.New("???"), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategorizeError(tt.err); got != tt.expected {
				t.Errorf("CategorizeError(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}
