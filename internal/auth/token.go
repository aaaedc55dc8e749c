package auth

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSession indicates a session token that does not verify. Callers
// treat it as "not logged in", never as a fatal condition.
var ErrInvalidSession = errors.New("invalid session")

// TokenCodec mints and validates bearer session tokens for account IDs.
// Tokens are stateless: validation recomputes the signature from the embedded
// account ID, so nothing is persisted per session.
type TokenCodec interface {
	Issue(accountID int64) (string, error)
	Validate(token string) (int64, error)
}

// HMACTokenCodec signs tokens as "accountID|signature" where the signature is
// the keyed hash of the decimal account ID under the server-wide secret.
// Tokens carry no expiry; compromise of the secret invalidates every
// outstanding token.
type HMACTokenCodec struct {
	secret []byte
	mac    KeyedHash
}

// NewHMACTokenCodec builds a codec around the server secret. The secret must
// be config-supplied; an empty one is refused.
func NewHMACTokenCodec(secret string, mac KeyedHash) (*HMACTokenCodec, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	if mac == nil {
		mac = HMACSHA256
	}
	return &HMACTokenCodec{secret: []byte(secret), mac: mac}, nil
}

func (c *HMACTokenCodec) Issue(accountID int64) (string, error) {
	id := strconv.FormatInt(accountID, 10)
	return fmt.Sprintf("%s|%s", id, c.sign(id)), nil
}

func (c *HMACTokenCodec) Validate(token string) (int64, error) {
	i := strings.LastIndex(token, "|")
	if i <= 0 || i == len(token)-1 {
		return 0, ErrInvalidSession
	}
	id, sig := token[:i], token[i+1:]
	if subtle.ConstantTimeCompare([]byte(c.sign(id)), []byte(sig)) != 1 {
		return 0, ErrInvalidSession
	}
	accountID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, ErrInvalidSession
	}
	return accountID, nil
}

func (c *HMACTokenCodec) sign(id string) string {
	return hex.EncodeToString(c.mac(c.secret, []byte(id)))
}

// JWTTokenCodec is the alternate session strategy: an HS256 JWT carrying the
// account ID as subject. A zero TTL issues non-expiring tokens, matching the
// HMAC codec's lifetime semantics.
type JWTTokenCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTTokenCodec(secret string, ttl time.Duration) (*JWTTokenCodec, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	return &JWTTokenCodec{secret: []byte(secret), ttl: ttl}, nil
}

func (c *JWTTokenCodec) Issue(accountID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:  strconv.FormatInt(accountID, 10),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if c.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

func (c *JWTTokenCodec) Validate(token string) (int64, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidSession
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return 0, ErrInvalidSession
	}
	accountID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidSession
	}
	return accountID, nil
}

var (
	_ TokenCodec = (*HMACTokenCodec)(nil)
	_ TokenCodec = (*JWTTokenCodec)(nil)
)
