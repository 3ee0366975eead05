package grade

import (
	"cmp"
	"slices"
)

// Compare orders changes for consumption: grade time first, then record id,
// so that on a timestamp tie the record created later is consumed later and
// therefore wins.
func Compare(a, b Change) int {
	if c := a.GradeTime.Compare(b.GradeTime); c != 0 {
		return c
	}
	return cmp.Compare(a.RecordID, b.RecordID)
}

// Sort puts changes into consumption order in place.
func Sort(changes []Change) {
	slices.SortStableFunc(changes, Compare)
}

// Sorted returns a consumption-ordered copy of changes.
func Sorted(changes []Change) []Change {
	out := slices.Clone(changes)
	Sort(out)
	return out
}
