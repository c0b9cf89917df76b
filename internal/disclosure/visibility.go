package disclosure

// Visibility is how much of a record's location a caller may see.
type Visibility int

const (
	// Hidden replaces the location entirely.
	Hidden Visibility = iota
	// Coarse truncates the location to city/ward level.
	Coarse
	// Full leaves the location untouched.
	Full
)

// lifecycleVisibility is the fixed mapping from booking lifecycle status to
// visibility level. Kept as one table so the progression is reviewable in a
// single place instead of scattered conditionals.
var lifecycleVisibility = map[string]Visibility{
	"REQUESTED":   Hidden,
	"PENDING":     Hidden,
	"UNCONFIRMED": Hidden,

	"BOOKED":    Coarse,
	"CONFIRMED": Coarse,

	"CHECKED_IN":  Full,
	"IN_PROGRESS": Full,
	"COMPLETED":   Full,
	"CANCELLED":   Full,
}

// ForStatus returns the visibility level for a lifecycle status. Statuses
// outside the table fail closed to Hidden: an unknown state must never leak
// an exact location.
func ForStatus(status string) Visibility {
	if v, ok := lifecycleVisibility[status]; ok {
		return v
	}
	return Hidden
}
