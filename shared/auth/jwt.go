package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by Verify for any token that does not carry a
// valid signature: tampered, expired, malformed, or signed for another
// issuer. Callers treat it as "anonymous", never as a fatal condition.
var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims is the payload of a session token: the acting user plus the
// registered issuance/expiry claims.
type SessionClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies stateless HS256 session tokens. A token is
// valid by signature alone; there is no server-side session state and no
// revocation, logout is the client discarding its cookie.
type TokenIssuer struct {
	secret    string
	issuer    string
	expiresIn time.Duration
}

// NewTokenIssuer creates a new TokenIssuer instance.
func NewTokenIssuer(secret, issuer string, expiresIn time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:    secret,
		issuer:    issuer,
		expiresIn: expiresIn,
	}
}

// Issue produces a signed token acting as userID.
func (i *TokenIssuer) Issue(userID string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.issuer},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenStr, err := token.SignedString([]byte(i.secret))
	if err != nil {
		return "", err
	}

	return tokenStr, nil
}

// Verify checks the signature and registered claims of tokenStr and returns
// the embedded user ID. Any failure yields ErrInvalidToken.
func (i *TokenIssuer) Verify(tokenStr string) (string, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return []byte(i.secret), nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithAudience(i.issuer),
		jwt.WithIssuer(i.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}
