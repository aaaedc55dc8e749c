package auth

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// PasswordHasher turns a plaintext password into a stored credential of the
// form "digest|salt" and verifies candidates against it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, stored string) bool
}

// HMACHasher hashes passwords with a keyed hash, using the per-account salt
// as the key. Fast; suitable where the deployment bounds login throughput
// elsewhere.
type HMACHasher struct {
	mac KeyedHash
}

// NewHMACHasher builds an HMACHasher. A nil mac selects HMAC-SHA256.
func NewHMACHasher(mac KeyedHash) *HMACHasher {
	if mac == nil {
		mac = HMACSHA256
	}
	return &HMACHasher{mac: mac}
}

func (h *HMACHasher) Hash(password string) (string, error) {
	salt, err := makeSalt()
	if err != nil {
		return "", err
	}
	return h.hashWithSalt(password, salt), nil
}

func (h *HMACHasher) hashWithSalt(password, salt string) string {
	digest := h.mac([]byte(salt), []byte(password))
	return fmt.Sprintf("%s|%s", hex.EncodeToString(digest), salt)
}

func (h *HMACHasher) Verify(password, stored string) bool {
	_, salt, ok := splitStored(stored)
	if !ok {
		return false
	}
	computed := h.hashWithSalt(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(stored)) == 1
}

// Argon2Hasher is the memory-hard alternative. It produces the same
// "digest|salt" stored shape so the two hashers are interchangeable at the
// store level.
type Argon2Hasher struct{}

const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
)

func NewArgon2Hasher() *Argon2Hasher {
	return &Argon2Hasher{}
}

func (h *Argon2Hasher) Hash(password string) (string, error) {
	salt, err := makeSalt()
	if err != nil {
		return "", err
	}
	return h.hashWithSalt(password, salt), nil
}

func (h *Argon2Hasher) hashWithSalt(password, salt string) string {
	key := argon2.IDKey([]byte(password), []byte(salt), argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	return fmt.Sprintf("%s|%s", hex.EncodeToString(key), salt)
}

func (h *Argon2Hasher) Verify(password, stored string) bool {
	_, salt, ok := splitStored(stored)
	if !ok {
		return false
	}
	computed := h.hashWithSalt(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(stored)) == 1
}

// splitStored separates a "digest|salt" credential. The salt follows the last
// separator, so digests containing the separator would still parse.
func splitStored(stored string) (digest, salt string, ok bool) {
	i := strings.LastIndex(stored, "|")
	if i < 0 || i == len(stored)-1 {
		return "", "", false
	}
	return stored[:i], stored[i+1:], true
}

var (
	_ PasswordHasher = (*HMACHasher)(nil)
	_ PasswordHasher = (*Argon2Hasher)(nil)
)
