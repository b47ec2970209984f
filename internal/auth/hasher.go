package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// ErrEmptyPassword is returned when hashing an empty password.
var ErrEmptyPassword = errors.New("auth: empty password")

// checkPasswordBytes rejects passwords bcrypt cannot hash. The limit is on
// bytes, so multi-byte passwords hit it with fewer characters.
func checkPasswordBytes(field, password string) error {
	if len(password) <= MaxPasswordBytes {
		return nil
	}
	msg := fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes)
	return shared.NewValidationError(field+" "+msg, map[string]string{field: msg})
}

// PasswordHasher turns passwords into self-describing salted digests.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, digest string) (bool, error)
}

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, or bcrypt.DefaultCost when cost is out of range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash derives a digest. It gives up when ctx is done; the bcrypt work itself
// cannot be interrupted and finishes in the background.
func (h *BcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if err := checkPasswordBytes("password", password); err != nil {
		return "", err
	}
	return bounded(ctx, func() (string, error) {
		digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
		return string(digest), err
	})
}

// Verify reports whether password matches digest. A mismatch is (false, nil);
// a malformed digest is an error.
func (h *BcryptHasher) Verify(ctx context.Context, password, digest string) (bool, error) {
	return bounded(ctx, func() (bool, error) {
		err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, err
		}
	})
}

func bounded[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{val: v, err: err}
	}()
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-done:
		return res.val, res.err
	}
}

var _ PasswordHasher = (*BcryptHasher)(nil)
