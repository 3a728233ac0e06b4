package auction

import (
	"strings"
	"testing"
)

func TestCodeGeneratorNext(t *testing.T) {
	var g codeGenerator

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := g.next()
		if err != nil {
			t.Fatalf("next() error = %v", err)
		}
		if len(code) != CodeLength {
			t.Errorf("next() = %q, want length %d", code, CodeLength)
		}
		if code != strings.ToUpper(code) {
			t.Errorf("next() = %q, want uppercase", code)
		}
		if seen[code] {
			t.Errorf("next() returned duplicate code %q", code)
		}
		seen[code] = true
	}
}

func TestValidCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{name: "generated shape", code: "K4YQ2A", want: true},
		{name: "digits only", code: "234567", want: true},
		{name: "lowercase", code: "k4yq2a", want: false},
		{name: "too short", code: "K4YQ2", want: false},
		{name: "too long", code: "K4YQ2AB", want: false},
		{name: "digit outside the alphabet", code: "K4YQ0A", want: false},
		{name: "empty", code: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidCode(tt.code); got != tt.want {
				t.Errorf("ValidCode(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestCodeGeneratorRelease(t *testing.T) {
	var g codeGenerator

	code, err := g.next()
	if err != nil {
		t.Fatalf("next() error = %v", err)
	}

	if _, held := g.used.Load(code); !held {
		t.Fatalf("code %q not held after next()", code)
	}

	g.release(code)

	if _, held := g.used.Load(code); held {
		t.Errorf("code %q still held after release()", code)
	}
}
