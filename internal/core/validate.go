package core

import "unicode"

// ValidateStaffID reports whether an id is well formed: non-empty, letters
// and digits only. Malformed ids are rejected at the API boundary before
// they reach storage.
func ValidateStaffID(staffID string) bool {
	if staffID == "" {
		return false
	}
	for _, r := range staffID {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
