// Package auth provides the identity primitives of the wiki: credential
// validation, salted password hashing, and stateless session tokens.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
)

// KeyedHash computes an unforgeable digest of message under key. Password
// hashing and session signing are both built on this capability but remain
// independently substitutable.
type KeyedHash func(key, message []byte) []byte

// HMACSHA256 is the default keyed hash.
func HMACSHA256(key, message []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return mac.Sum(nil)
}

const (
	saltLength   = 16
	saltAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// makeSalt draws a fixed-length salt uniformly from the salt alphabet.
func makeSalt() (string, error) {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random salt: %w", err)
	}
	out := make([]byte, saltLength)
	for i, b := range buf {
		out[i] = saltAlphabet[int(b)%len(saltAlphabet)]
	}
	return string(out), nil
}
