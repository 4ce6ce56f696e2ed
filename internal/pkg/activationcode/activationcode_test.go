package activationcode

import (
	"regexp"
	"testing"
)

var codeShape = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

func TestGenerate_Shape(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := Generate()
		if !codeShape.MatchString(code) {
			t.Fatalf("code %q does not match XXXX-XXXX-XXXX", code)
		}
	}
}

func TestGenerate_Varies(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[Generate()] = true
	}
	// Collisions are cosmetic but 50 identical draws would mean a broken source
	if len(seen) < 2 {
		t.Fatalf("expected varied codes, got %d distinct out of 50", len(seen))
	}
}
