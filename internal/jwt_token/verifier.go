// Package jwttoken verifies bearer tokens against the identity provider's
// published key set and extracts the caller identity.
package jwttoken

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"bff-gateway/internal/identity"
	dErrors "bff-gateway/pkg/domain-errors"
)

// Claims are the token claims the gateway cares about: the registered set
// plus the custom role claim.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens. Issuer and audience are compared
// exactly; signature keys come from the JWKS cache. Every validation
// failure collapses to a single unauthorized error so callers learn nothing
// about which check failed.
type Verifier struct {
	keys     *JWKSCache
	issuer   string
	audience string
}

// NewVerifier creates a Verifier bound to the expected issuer and audience.
func NewVerifier(keys *JWKSCache, issuer, audience string) *Verifier {
	return &Verifier{keys: keys, issuer: issuer, audience: audience}
}

// VerifyAuthorization extracts and validates the bearer token from an
// Authorization header value, returning the caller identity on success.
func (v *Verifier) VerifyAuthorization(ctx context.Context, authHeader string) (identity.Identity, error) {
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || token == "" {
		return identity.Identity{}, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token")
	}
	return v.verify(ctx, token)
}

func (v *Verifier) verify(ctx context.Context, tokenString string) (identity.Identity, error) {
	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token header missing kid")
		}
		return v.keys.Key(ctx, kid)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return identity.Identity{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token")
	}

	if claims.Subject == "" {
		return identity.Identity{}, dErrors.New(dErrors.CodeUnauthorized, "token missing subject")
	}
	role, err := identity.ParseRole(claims.Role)
	if err != nil {
		return identity.Identity{}, err
	}

	return identity.Identity{SubjectID: claims.Subject, Role: role}, nil
}
