// Package disclosure implements progressive disclosure of location and
// contact fields in upstream responses. The filter walks the response as a
// dynamic JSON tree and pattern-matches on the presence of status+location
// keys, so it stays decoupled from the upstream's full schema.
package disclosure

import (
	"strings"

	"bff-gateway/internal/identity"
)

const (
	// HiddenPlaceholder replaces the location before a booking is confirmed.
	HiddenPlaceholder = "（予約確定後に公開）"
	// CoarseSuffix is appended to the truncated location once confirmed.
	CoarseSuffix = "（以降、施術開始前に公開）"
)

const (
	statusKey   = "status"
	locationKey = "location"
)

// unrestricted roles always see full locations.
var unrestricted = map[identity.Role]bool{
	identity.RoleAdmin:  true,
	identity.RoleAgency: true,
}

// strippedContactKeys are removed for restricted consumer-facing roles
// regardless of lifecycle state.
var strippedContactKeys = []string{
	"counterpartPhone",
	"counterpart_phone",
	"officeContact",
	"office_contact",
}

// contactStrippedRoles lose the contact keys above unconditionally.
var contactStrippedRoles = map[identity.Role]bool{
	identity.RoleClient:    true,
	identity.RoleAffiliate: true,
}

// Filter transforms an upstream response body for the given caller role.
// It never mutates its input and never fails: anything it cannot confidently
// classify passes through unchanged. Filtering an already-filtered value for
// the same role is a no-op.
func Filter(v any, role identity.Role) any {
	switch node := v.(type) {
	case map[string]any:
		return filterObject(node, role)
	case []any:
		out := make([]any, len(node))
		for i, elem := range node {
			out[i] = Filter(elem, role)
		}
		return out
	default:
		return v
	}
}

func filterObject(obj map[string]any, role identity.Role) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = Filter(v, role)
	}

	if contactStrippedRoles[role] {
		for _, key := range strippedContactKeys {
			delete(out, key)
		}
	}

	if unrestricted[role] {
		return out
	}

	status, ok := out[statusKey].(string)
	if !ok {
		// Not a disclosure record; leave the shape alone.
		return out
	}
	location, ok := out[locationKey].(string)
	if !ok {
		return out
	}

	switch ForStatus(status) {
	case Full:
		// Exact value stays.
	case Coarse:
		out[locationKey] = coarsen(location)
	case Hidden:
		out[locationKey] = HiddenPlaceholder
	}
	return out
}

// coarsen reduces an address to a city/ward-level prefix plus the coarse
// suffix. Whitespace-delimited addresses keep their first two tokens;
// Japanese addresses without whitespace are cut after the prefecture and
// municipality markers. When neither form applies the full value is withheld
// rather than leaked.
func coarsen(location string) string {
	if strings.HasSuffix(location, CoarseSuffix) {
		return location
	}

	if tokens := strings.Fields(location); len(tokens) >= 2 {
		return tokens[0] + " " + tokens[1] + CoarseSuffix
	}

	if prefix, ok := japaneseCityPrefix(location); ok {
		return prefix + CoarseSuffix
	}

	return HiddenPlaceholder
}

// japaneseCityPrefix extracts the prefecture + municipality prefix of a
// Japanese address, e.g. 東京都渋谷区神宮前6-23-4 -> 東京都渋谷区.
func japaneseCityPrefix(addr string) (string, bool) {
	runes := []rune(addr)

	prefEnd := indexOfAny(runes, 0, '都', '道', '府', '県')
	if prefEnd < 0 {
		return "", false
	}
	cityEnd := indexOfAny(runes, prefEnd+1, '市', '区', '町', '村')
	if cityEnd < 0 {
		return "", false
	}
	return string(runes[:cityEnd+1]), true
}

func indexOfAny(runes []rune, from int, markers ...rune) int {
	for i := from; i < len(runes); i++ {
		for _, m := range markers {
			if runes[i] == m {
				return i
			}
		}
	}
	return -1
}
