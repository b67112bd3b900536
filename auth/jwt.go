package auth

import (
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// ValidatePlayerToken validates a bearer JWT against a JWKS endpoint
// and returns its claims. jwksURL is the full JWKS document URL
// (Config.JWKSURL); issuer, if non-empty, is checked against the
// token's "iss" claim.
func ValidatePlayerToken(jwksURL, issuer, tokenString string) (jwt.MapClaims, error) {
	if jwksURL == "" {
		return nil, fmt.Errorf("JWKS_URL is not set")
	}

	jwks, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, err
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"EdDSA", "RS256"})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	token, err := jwt.Parse(tokenString, jwks.Keyfunc, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// PlayerIDFromClaims returns the player id derived from claims ("sub"
// or "id"), the identifier spec.md §4.2's flip protocol addresses a
// player by.
func PlayerIDFromClaims(claims jwt.MapClaims) string {
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	if id, ok := claims["id"].(string); ok && id != "" {
		return id
	}
	return ""
}
