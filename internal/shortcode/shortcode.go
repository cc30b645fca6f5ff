package shortcode

import (
	"context"
	"errors"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet is the case-sensitive alphanumeric set codes are drawn from.
// At the default length of 7 this yields 62^7 (~3.5e12) possible codes,
// so even with millions of stored links a candidate collision stays
// below one in a hundred thousand.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const maxAttempts = 10

// ErrSpaceExhausted is returned when no free code was found within the
// allowed number of attempts.
var ErrSpaceExhausted = errors.New("short code space exhausted")

// ExistenceChecker reports whether a short code is already taken.
type ExistenceChecker interface {
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// Generator produces random fixed-length short codes that were free at the
// moment of the check. The check is advisory: two concurrent allocations can
// still race on the same candidate, and the store's unique constraint is the
// authoritative guard.
type Generator struct {
	length  int
	checker ExistenceChecker
}

func NewGenerator(length int, checker ExistenceChecker) *Generator {
	return &Generator{
		length:  length,
		checker: checker,
	}
}

// Allocate returns a candidate code not present in the store. It retries on
// collision up to a fixed bound and fails with ErrSpaceExhausted afterwards.
func (g *Generator) Allocate(ctx context.Context) (string, error) {
	const op = "shortcode.Generator.Allocate"

	for i := 0; i < maxAttempts; i++ {
		code, err := gonanoid.Generate(Alphabet, g.length)
		if err != nil {
			return "", fmt.Errorf("%s: failed to generate code: %w", op, err)
		}

		taken, err := g.checker.ExistsByCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("%s: failed to check code existence: %w", op, err)
		}

		if !taken {
			return code, nil
		}
	}

	return "", fmt.Errorf("%s: %w", op, ErrSpaceExhausted)
}
