package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes passwords with bcrypt. The plaintext is first reduced
// to base64(HMAC-SHA256(pepper, plaintext)) so inputs longer than bcrypt's
// 72 byte limit stay distinct. The pepper may be empty.
type PasswordHasher struct {
	cost   int
	pepper []byte

	dummyOnce sync.Once
	dummy     []byte
}

// NewPasswordHasher returns a hasher. A cost of zero selects bcrypt.DefaultCost.
func NewPasswordHasher(cost int, pepper []byte) (*PasswordHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("cryptox: bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &PasswordHasher{cost: cost, pepper: pepper}, nil
}

func (h *PasswordHasher) prehash(plaintext string) []byte {
	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(plaintext))
	return []byte(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}

// Hash returns a salted bcrypt hash of plaintext.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	out, err := bcrypt.GenerateFromPassword(h.prehash(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("cryptox: hash password: %w", err)
	}
	return string(out), nil
}

// Verify reports whether plaintext matches hash. Malformed hashes never match.
func (h *PasswordHasher) Verify(plaintext, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), h.prehash(plaintext)) == nil
}

// VerifyDummy burns the same time as a real Verify. Login calls it when no
// account matches so response timing does not reveal which emails exist.
func (h *PasswordHasher) VerifyDummy(plaintext string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("devnet-dummy-password"), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummy, h.prehash(plaintext))
}
