// Package policy implements the static path-prefix access table. The table
// is built once at startup and read-only afterwards, so request handling
// needs no locking.
package policy

import (
	"strings"

	"bff-gateway/internal/identity"
	dErrors "bff-gateway/pkg/domain-errors"
)

// Entry maps a path prefix to the set of roles allowed under it.
type Entry struct {
	Prefix string
	Roles  []identity.Role
}

// Table is an ordered list of entries. The first entry whose prefix matches
// the request path wins, so more specific prefixes must be listed first.
type Table struct {
	entries []Entry
}

// New builds a table from the given entries, preserving order.
func New(entries ...Entry) *Table {
	return &Table{entries: entries}
}

// Default returns the production access table for the booking platform.
// Paths outside every prefix are open to any authenticated caller.
func Default() *Table {
	return New(
		Entry{Prefix: "/api/admin", Roles: []identity.Role{identity.RoleAdmin}},
		Entry{Prefix: "/api/agency", Roles: []identity.Role{identity.RoleAgency, identity.RoleAdmin}},
		Entry{Prefix: "/api/hosts", Roles: []identity.Role{identity.RoleFacilityHost, identity.RoleAdmin}},
		Entry{Prefix: "/api/affiliate", Roles: []identity.Role{identity.RoleAffiliate, identity.RoleAdmin}},
		Entry{Prefix: "/api/identity-verification", Roles: []identity.Role{identity.RoleAdmin, identity.RoleAgency}},
	)
}

// Match returns the first entry whose prefix is a prefix of path, or nil
// when no entry matches (an open route).
func (t *Table) Match(path string) *Entry {
	for i := range t.entries {
		if strings.HasPrefix(path, t.entries[i].Prefix) {
			return &t.entries[i]
		}
	}
	return nil
}

// Authorize checks whether the role may invoke the given path. It is pure:
// no side effects, no I/O. Unmatched paths are open to every role.
func (t *Table) Authorize(path string, role identity.Role) error {
	entry := t.Match(path)
	if entry == nil {
		return nil
	}
	for _, allowed := range entry.Roles {
		if role == allowed {
			return nil
		}
	}
	return dErrors.New(dErrors.CodeForbidden, "role not permitted for this path")
}
