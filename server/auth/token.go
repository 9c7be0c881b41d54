package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	// Issuer is the issuer of every access token.
	Issuer = "parley"
	// AccessTokenCookieName is the cookie carrying the access token for browser clients.
	AccessTokenCookieName = "parley.access-token"
	// AccessTokenDuration is how long a login stays valid.
	AccessTokenDuration = 7 * 24 * time.Hour
)

// GenerateAccessToken signs a token bound to the given session.
func GenerateAccessToken(userID int32, sessionID string, issuedAt, expiresAt time.Time, secret []byte) (string, error) {
	claims := &jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   strconv.Itoa(int(userID)),
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign access token")
	}
	return signed, nil
}

// ParseAccessToken verifies the signature, issuer and expiry of a token and
// returns its user id and session id.
func ParseAccessToken(tokenString string, secret []byte) (int32, string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return 0, "", errors.Wrap(err, "invalid access token")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 32)
	if err != nil {
		return 0, "", errors.Wrapf(err, "malformed subject %q", claims.Subject)
	}
	if claims.ID == "" {
		return 0, "", errors.New("access token has no session id")
	}
	return int32(userID), claims.ID, nil
}
