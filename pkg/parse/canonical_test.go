package parse

import "testing"

func TestCanonicalize_Equivalence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "FragmentStripped",
			input:    "https://a.com/x#frag",
			expected: "https://a.com/x",
		},
		{
			name:     "TrailingSlashStripped",
			input:    "https://a.com/x/",
			expected: "https://a.com/x",
		},
		{
			name:     "Lowercased",
			input:    "HTTPS://A.COM/x",
			expected: "https://a.com/x",
		},
		{
			name:     "EmptyPathBecomesRoot",
			input:    "https://a.com",
			expected: "https://a.com/",
		},
		{
			name:     "RootSlashKept",
			input:    "https://a.com/",
			expected: "https://a.com/",
		},
		{
			name:     "QueryPreserved",
			input:    "https://a.com/x?B=1",
			expected: "https://a.com/x?b=1",
		},
		{
			name:     "PathCaseFolded",
			input:    "https://a.com/About/Team",
			expected: "https://a.com/about/team",
		},
		{
			name:     "AllTrailingSlashesStripped",
			input:    "https://a.com/x//",
			expected: "https://a.com/x",
		},
		{
			name:     "ManyTrailingSlashesStripped",
			input:    "https://a.com/x////",
			expected: "https://a.com/x",
		},
		{
			name:     "DoubleSlashRootBecomesRoot",
			input:    "https://a.com//",
			expected: "https://a.com/",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Canonicalize(tt.input); got != tt.expected {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCanonicalize_CollapsesEquivalentSpellings(t *testing.T) {
	a := Canonicalize("https://a.com/x#frag")
	b := Canonicalize("https://a.com/x/")
	c := Canonicalize("HTTPS://A.COM/x")
	d := Canonicalize("https://a.com/x//")
	if a != b || b != c || c != d {
		t.Errorf("equivalent spellings did not collapse: %q, %q, %q, %q", a, b, c, d)
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []string{
		"https://a.com/x#frag",
		"HTTP://Example.COM:8080/Path/?q=1#top",
		"https://a.com",
		"not a url at all",
		"://malformed",
		"https://a.com/x%2Fy/",
		"https://a.com/x//",
		"https://a.com/x////",
		"https://a.com//",
	}
	for _, in := range inputs {
		once := Canonicalize(in)
		twice := Canonicalize(once)
		if once != twice {
			t.Errorf("Canonicalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestCanonicalize_MalformedPassthrough(t *testing.T) {
	// Unparseable input still gets the string-level transforms.
	got := Canonicalize("HTTP://bad url#frag/")
	if got != "http://bad url" {
		t.Errorf("Canonicalize(malformed) = %q, want %q", got, "http://bad url")
	}
}

func TestHostOf(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://A.COM/x", "a.com"},
		{"https://sub.a.com/y", "sub.a.com"},
		{"https://a.com:8080/y", "a.com"},
		{"/relative/only", ""},
	}
	for _, tt := range tests {
		if got := HostOf(tt.input); got != tt.expected {
			t.Errorf("HostOf(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
