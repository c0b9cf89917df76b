// Package identity defines the caller identity extracted from a verified
// token and the closed set of platform roles.
package identity

import (
	"context"

	dErrors "bff-gateway/pkg/domain-errors"
)

// Role is the closed enumeration of platform roles. Tokens carrying any
// other value are rejected during verification, never defaulted.
type Role string

const (
	RoleClient       Role = "client"
	RoleTherapist    Role = "therapist"
	RoleFacilityHost Role = "facility-host"
	RoleAgency       Role = "agency"
	RoleAffiliate    Role = "affiliate"
	RoleAdmin        Role = "admin"
)

// ParseRole validates a raw role claim against the closed enumeration.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleClient, RoleTherapist, RoleFacilityHost, RoleAgency, RoleAffiliate, RoleAdmin:
		return Role(raw), nil
	}
	return "", dErrors.New(dErrors.CodeUnauthorized, "unrecognized role claim")
}

// Identity is the verified caller, derived once per request and immutable
// for the request's lifetime. The gateway never persists it.
type Identity struct {
	SubjectID string
	Role      Role
}

type identityKey struct{}

// WithIdentity stores the verified caller identity in the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext retrieves the caller identity set by the verification step.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
