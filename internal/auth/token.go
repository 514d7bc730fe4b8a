package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/samber/oops"
)

// ResetTokenBytes is the entropy of a reset token: 32 bytes = 64 hex chars.
const ResetTokenBytes = 32

// TokenIssuer produces opaque reset tokens.
type TokenIssuer interface {
	Issue() (string, error)
}

// RandomTokenIssuer draws tokens from crypto/rand.
type RandomTokenIssuer struct{}

// Issue returns a new hex-encoded random token.
func (RandomTokenIssuer) Issue() (string, error) {
	b := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", oops.Code("RESET_TOKEN_GENERATE_FAILED").Wrap(err)
	}
	return hex.EncodeToString(b), nil
}

// HashToken computes the SHA256 hash of a token. Only the hash is persisted.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
