package auth

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Token issuance happens outside this service; we only verify signatures.
// Tokens must be HS256 over the shared secret, with the user ID in "sub".

var ErrInvalidToken = errors.New("invalid token")

// VerifyToken checks the signature and registered claims of a bearer token
// and returns the identity it asserts.
func VerifyToken(tokenStr string, secret []byte) (AuthContext, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		// Pin the algorithm to avoid confusion attacks.
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return AuthContext{}, ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return AuthContext{}, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID <= 0 {
		return AuthContext{}, ErrInvalidToken
	}

	ac := AuthContext{UserID: userID}
	if name, ok := claims["username"].(string); ok {
		ac.Username = name
	}
	return ac, nil
}
