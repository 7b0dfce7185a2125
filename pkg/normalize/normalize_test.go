package normalize

import (
	"testing"
	"time"
)

func TestCanonicalURL(t *testing.T) {
	t.Parallel()

	if got := CanonicalURL("https://Valor.Globo.com/x?utm=1#frag"); got != "https://valor.globo.com/x" {
		t.Fatalf("unexpected canonical url: %q", got)
	}
	if got := CanonicalURL("https://example.com/path/"); got != "https://example.com/path" {
		t.Fatalf("expected trailing slash stripped, got %q", got)
	}
	if got := CanonicalURL(""); got != "" {
		t.Fatalf("expected empty string for empty input, got %q", got)
	}
	if got := CanonicalURL("   "); got != "" {
		t.Fatalf("expected empty string for blank input, got %q", got)
	}
}

func TestCanonicalURL_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"https://Valor.Globo.com/x?utm=1",
		"http://example.com/a/b/",
		"HTTPS://EXAMPLE.COM/?q=1#x",
	}
	for _, in := range inputs {
		once := CanonicalURL(in)
		if twice := CanonicalURL(once); twice != once {
			t.Fatalf("not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestDomainFromURL(t *testing.T) {
	t.Parallel()

	if got := DomainFromURL("https://www.InfoMoney.com.br/ultimas/x"); got != "infomoney.com.br" {
		t.Fatalf("unexpected domain: %q", got)
	}
	if got := DomainFromURL("not a url"); got != "" {
		t.Fatalf("expected empty domain for invalid url, got %q", got)
	}
	if got := DomainFromURL(""); got != "" {
		t.Fatalf("expected empty domain for empty url, got %q", got)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	ts, ok := ParseTimestamp("2025-01-01T10:00:00Z")
	if !ok {
		t.Fatalf("expected RFC3339 to parse")
	}
	want := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("unexpected time: got %v want %v", ts, want)
	}

	ts, ok = ParseTimestamp("2025-01-01 10:00:00")
	if !ok {
		t.Fatalf("expected zoneless date to parse")
	}
	if !ts.Equal(want) {
		t.Fatalf("zoneless date should assume UTC: got %v want %v", ts, want)
	}

	if _, ok := ParseTimestamp("definitely not a date"); ok {
		t.Fatalf("expected garbage to fail parsing")
	}
	if _, ok := ParseTimestamp(""); ok {
		t.Fatalf("expected empty string to fail parsing")
	}
}
