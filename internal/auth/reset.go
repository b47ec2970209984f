package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

const resetTokenBytes = 32

// newResetToken returns a random token for transport and the hash to persist.
func newResetToken() (token, hash string, err error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("auth: generate reset token: %w", err)
	}
	token = hex.EncodeToString(buf)
	return token, hashResetToken(token), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// wellFormedResetToken rejects values that newResetToken could never produce.
func wellFormedResetToken(token string) bool {
	if len(token) != hex.EncodedLen(resetTokenBytes) {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}

func hashesEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
