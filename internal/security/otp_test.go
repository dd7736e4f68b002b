package security_test

import (
	"regexp"
	"testing"

	"github.com/tazhibayda/authflow/internal/security"
)

var sixDigits = regexp.MustCompile(`^[0-9]{6}$`)

func TestRandomOTP_Format(t *testing.T) {
	var g security.RandomOTP
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := g.Generate()
		if err != nil {
			t.Fatal(err)
		}
		if !sixDigits.MatchString(code) {
			t.Fatalf("bad code %q", code)
		}
		seen[code] = true
	}
	if len(seen) < 150 {
		t.Fatalf("suspiciously few distinct codes: %d", len(seen))
	}
}
