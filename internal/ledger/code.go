package ledger

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"

	"tour-marketplace/internal/domain"
)

const (
	CodeLength   = 8
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// DefaultCodeAttempts bounds collision retries before giving up.
	DefaultCodeAttempts = 5
)

// CodeGenerator produces booking codes. Tests swap in deterministic ones.
type CodeGenerator func() (string, error)

// NewCodeGenerator reads from src; pass nil for crypto/rand.
func NewCodeGenerator(src io.Reader) CodeGenerator {
	if src == nil {
		src = rand.Reader
	}
	return func() (string, error) {
		return generateCode(src)
	}
}

func generateCode(src io.Reader) (string, error) {
	// 252 is the largest multiple of 36 below 256; rejecting bytes above it
	// keeps every symbol equally likely.
	const limit = 252

	out := make([]byte, 0, CodeLength)
	buf := make([]byte, CodeLength*2)
	for len(out) < CodeLength {
		if _, err := io.ReadFull(src, buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(out) == CodeLength {
				break
			}
		}
	}
	return string(out), nil
}

// IsValidCode reports whether s has the shape of a booking code.
func IsValidCode(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// ClaimCode generates codes and hands each to claim until one is accepted.
// claim returns false on a uniqueness collision. After attempts collisions
// it fails with CodeSpaceExhausted, which signals an RNG or code-space
// problem rather than bad input.
func ClaimCode(ctx context.Context, gen CodeGenerator, attempts int, claim func(ctx context.Context, code string) (bool, error)) (string, error) {
	if attempts <= 0 {
		attempts = DefaultCodeAttempts
	}

	for i := 0; i < attempts; i++ {
		code, err := gen()
		if err != nil {
			return "", fmt.Errorf("generate booking code: %w", err)
		}
		ok, err := claim(ctx, code)
		if err != nil {
			return "", err
		}
		if ok {
			return code, nil
		}
	}

	return "", domain.New(domain.KindCodeSpaceExhausted,
		fmt.Sprintf("no unique booking code after %d attempts", attempts), "booking_code")
}
