package disclosure

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bff-gateway/internal/identity"
)

const shibuyaAddress = "東京都渋谷区神宮前6-23-4"

func booking(status, location string) map[string]any {
	return map[string]any{
		"id":       "bk-1",
		"status":   status,
		"location": location,
	}
}

func TestForStatus(t *testing.T) {
	tests := []struct {
		status string
		want   Visibility
	}{
		{"REQUESTED", Hidden},
		{"PENDING", Hidden},
		{"UNCONFIRMED", Hidden},
		{"BOOKED", Coarse},
		{"CONFIRMED", Coarse},
		{"CHECKED_IN", Full},
		{"IN_PROGRESS", Full},
		{"COMPLETED", Full},
		{"CANCELLED", Full},
		{"SOMETHING_NEW", Hidden},
		{"", Hidden},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, ForStatus(tt.status))
		})
	}
}

func TestFilterHidesLocationBeforeConfirmation(t *testing.T) {
	got := Filter(booking("PENDING", shibuyaAddress), identity.RoleClient)

	obj := got.(map[string]any)
	assert.Equal(t, HiddenPlaceholder, obj["location"])
	assert.Equal(t, "PENDING", obj["status"])
}

func TestFilterCoarsensConfirmedJapaneseAddress(t *testing.T) {
	got := Filter(booking("BOOKED", shibuyaAddress), identity.RoleClient)

	obj := got.(map[string]any)
	assert.Equal(t, "東京都渋谷区"+CoarseSuffix, obj["location"])
}

func TestFilterCoarsensWhitespaceAddress(t *testing.T) {
	got := Filter(booking("CONFIRMED", "12 Harbor Street Yokohama"), identity.RoleClient)

	obj := got.(map[string]any)
	assert.Equal(t, "12 Harbor"+CoarseSuffix, obj["location"])
}

func TestFilterCoarseFallsBackToHiddenWhenUnparseable(t *testing.T) {
	got := Filter(booking("BOOKED", "opaquevalue"), identity.RoleClient)

	obj := got.(map[string]any)
	assert.Equal(t, HiddenPlaceholder, obj["location"])
}

func TestFilterLeavesLocationAfterCheckIn(t *testing.T) {
	for _, status := range []string{"CHECKED_IN", "IN_PROGRESS", "COMPLETED", "CANCELLED"} {
		t.Run(status, func(t *testing.T) {
			got := Filter(booking(status, shibuyaAddress), identity.RoleClient)
			assert.Equal(t, shibuyaAddress, got.(map[string]any)["location"])
		})
	}
}

func TestFilterUnrestrictedRolesAlwaysSeeFull(t *testing.T) {
	for _, role := range []identity.Role{identity.RoleAdmin, identity.RoleAgency} {
		t.Run(string(role), func(t *testing.T) {
			got := Filter(booking("REQUESTED", shibuyaAddress), role)
			assert.Equal(t, shibuyaAddress, got.(map[string]any)["location"])
		})
	}
}

func TestFilterStripsContactFieldsForClients(t *testing.T) {
	obj := booking("COMPLETED", shibuyaAddress)
	obj["counterpartPhone"] = "090-1234-5678"
	obj["office_contact"] = "03-1111-2222"

	got := Filter(obj, identity.RoleClient).(map[string]any)

	assert.NotContains(t, got, "counterpartPhone")
	assert.NotContains(t, got, "office_contact")
	// Lifecycle already grants full visibility here; stripping is independent.
	assert.Equal(t, shibuyaAddress, got["location"])
}

func TestFilterKeepsContactFieldsForTherapists(t *testing.T) {
	obj := booking("COMPLETED", shibuyaAddress)
	obj["counterpartPhone"] = "090-1234-5678"

	got := Filter(obj, identity.RoleTherapist).(map[string]any)

	assert.Equal(t, "090-1234-5678", got["counterpartPhone"])
}

func TestFilterRecursesIntoArraysAndNestedObjects(t *testing.T) {
	payload := map[string]any{
		"bookings": []any{
			booking("PENDING", shibuyaAddress),
			booking("BOOKED", shibuyaAddress),
			map[string]any{"note": "not a disclosure record"},
		},
		"meta": map[string]any{
			"latest": booking("CHECKED_IN", shibuyaAddress),
		},
	}

	got := Filter(payload, identity.RoleClient).(map[string]any)

	list := got["bookings"].([]any)
	assert.Equal(t, HiddenPlaceholder, list[0].(map[string]any)["location"])
	assert.Equal(t, "東京都渋谷区"+CoarseSuffix, list[1].(map[string]any)["location"])
	assert.Equal(t, "not a disclosure record", list[2].(map[string]any)["note"])

	latest := got["meta"].(map[string]any)["latest"].(map[string]any)
	assert.Equal(t, shibuyaAddress, latest["location"])
}

func TestFilterTotalityOnOddShapes(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{name: "nil", in: nil},
		{name: "scalar", in: 42.0},
		{name: "string", in: "plain"},
		{name: "status not a string", in: map[string]any{"status": 3.0, "location": shibuyaAddress}},
		{name: "location not a string", in: map[string]any{"status": "BOOKED", "location": []any{"a"}}},
		{name: "missing location", in: map[string]any{"status": "BOOKED"}},
		{name: "missing status", in: map[string]any{"location": shibuyaAddress}},
		{name: "null location", in: map[string]any{"status": "BOOKED", "location": nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				got := Filter(tt.in, identity.RoleClient)
				assert.Equal(t, tt.in, got, "unclassifiable shapes must pass through")
			})
		})
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	in := booking("PENDING", shibuyaAddress)
	Filter(in, identity.RoleClient)

	assert.Equal(t, shibuyaAddress, in["location"])
}

func TestFilterIdempotentPerRole(t *testing.T) {
	var payload any
	raw := `{
		"bookings": [
			{"id": "bk-1", "status": "PENDING", "location": "東京都渋谷区神宮前6-23-4", "counterpartPhone": "090-0000-0000"},
			{"id": "bk-2", "status": "BOOKED", "location": "東京都渋谷区神宮前6-23-4"},
			{"id": "bk-3", "status": "BOOKED", "location": "12 Harbor Street Yokohama"},
			{"id": "bk-4", "status": "COMPLETED", "location": "東京都渋谷区神宮前6-23-4"}
		]
	}`
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	for _, role := range []identity.Role{identity.RoleClient, identity.RoleAffiliate, identity.RoleAdmin} {
		t.Run(string(role), func(t *testing.T) {
			once := Filter(payload, role)
			twice := Filter(once, role)
			assert.Equal(t, once, twice)
		})
	}
}
