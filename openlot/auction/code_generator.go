package auction

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
	"sync"
)

// codeGenerator hands out short public auction codes. Codes are random
// base32, easy to read over the phone. The in-memory set only guards
// against collisions within one process; the unique constraint on
// auctions.code is the real backstop.
type codeGenerator struct {
	used sync.Map
}

func (g *codeGenerator) next() (string, error) {
	for i := 0; i < maxRetries; i++ {
		bytes := make([]byte, 4)
		if _, err := rand.Read(bytes); err != nil {
			return "", fmt.Errorf("failed to generate random bytes: %w", err)
		}

		encoded := base32.StdEncoding.EncodeToString(bytes)
		code := strings.ToUpper(encoded[:CodeLength])

		if _, exists := g.used.LoadOrStore(code, true); !exists {
			return code, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique auction code after %d attempts", maxRetries)
}

func (g *codeGenerator) release(code string) {
	g.used.Delete(code)
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// ValidCode reports whether s has the shape of a public auction code.
// Lookups that accept both codes and numeric ids use it to dispatch,
// since a code made only of digits would also parse as an id.
func ValidCode(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune(codeAlphabet, c) {
			return false
		}
	}
	return true
}
