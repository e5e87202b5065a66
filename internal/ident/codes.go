package ident

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
)

// Alphanumeric is the default alphabet for random codes.
const Alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeGenerator produces a fixed prefix followed by Length characters drawn
// uniformly from Alphabet. Codes are not checked against existing records;
// uniqueness is statistically likely, not guaranteed.
type CodeGenerator struct {
	Prefix   string
	Length   int
	Alphabet string
	// Rand defaults to crypto/rand.Reader.
	Rand io.Reader
}

// Generate returns a new random code.
func (g CodeGenerator) Generate() (string, error) {
	alphabet := g.Alphabet
	if alphabet == "" {
		alphabet = Alphanumeric
	}
	if g.Length <= 0 {
		return "", fmt.Errorf("code length must be positive, got %d", g.Length)
	}
	src := g.Rand
	if src == nil {
		src = rand.Reader
	}
	limit := big.NewInt(int64(len(alphabet)))
	var b strings.Builder
	b.Grow(len(g.Prefix) + g.Length)
	b.WriteString(g.Prefix)
	for i := 0; i < g.Length; i++ {
		n, err := rand.Int(src, limit)
		if err != nil {
			return "", fmt.Errorf("draw code character: %w", err)
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}
