// Package auth implements the stateless access-token codec and the password
// check used by the session layer. Tokens are HS256-signed JWTs carrying the
// principal's email, a roles snapshot, and a type marker; validity is decided
// purely by signature and expiry, never by a store lookup.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sweetshop/backend/internal/common"
)

// tokenTypeAccess is the typ claim value minted by Issue and required by Verify.
const tokenTypeAccess = "access"

// Claims are the signed contents of an access token.
type Claims struct {
	jwt.RegisteredClaims
	Roles     []string `json:"roles"`
	TokenType string   `json:"typ"`
}

// Identity is the verified result of an access token: who the token is for
// and the role set snapshotted at issuance.
type Identity struct {
	Subject string
	Roles   []string
}

// TokenCodec mints and verifies access tokens. Secret and TTL are injected
// configuration; the codec holds no other state and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec constructs a codec with the given HMAC secret and token TTL.
func NewTokenCodec(secret []byte, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: secret, ttl: ttl}
}

// TTL returns the configured access-token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a new access token for the user: subject is the email, roles
// are copied so later role changes do not leak into issued tokens, and expiry
// is issuance time plus the configured TTL.
func (c *TokenCodec) Issue(subject string, roles []string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.NewString(),
		},
		Roles:     append([]string(nil), roles...),
		TokenType: tokenTypeAccess,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates an access token. Any failed check is a hard
// reject: ErrTokenMalformed for structural problems, ErrTokenInvalidSignature
// for a bad MAC, ErrTokenExpired past expiry, and ErrWrongTokenType when the
// typ marker is not "access".
func (c *TokenCodec) Verify(tokenString string) (*Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, common.ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, common.ErrTokenInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, common.ErrTokenExpired
		default:
			return nil, common.ErrTokenMalformed
		}
	}
	if !token.Valid {
		return nil, common.ErrTokenInvalidSignature
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, common.ErrWrongTokenType
	}

	return &Identity{Subject: claims.Subject, Roles: claims.Roles}, nil
}
