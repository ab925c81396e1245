package domain

import (
	"strings"
	"testing"

	"nurserycore/testutil"
)

// TestDomainImportsOnlyStandardLibrary keeps the inventory model free of
// internal packages and third-party modules so every backend can depend on
// it without cycles.
func TestDomainImportsOnlyStandardLibrary(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", func(path string) bool {
		return testutil.InternalImportForbidden(path) || !isStandardLibrary(path)
	}, "domain package must only import the standard library")
}

// isStandardLibrary treats paths whose first element has no dot as stdlib.
func isStandardLibrary(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}

func TestIsStandardLibrary(t *testing.T) {
	if !isStandardLibrary("weak") || !isStandardLibrary("encoding/json") {
		t.Fatalf("expected stdlib paths to be recognised")
	}
	if isStandardLibrary("github.com/zeebo/blake3") {
		t.Fatalf("expected module path to be rejected")
	}
}
