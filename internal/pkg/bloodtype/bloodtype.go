package bloodtype

// The 8 recognized ABO/Rh blood type categories
const (
	APositive  = "A+"
	ANegative  = "A-"
	BPositive  = "B+"
	BNegative  = "B-"
	ABPositive = "AB+"
	ABNegative = "AB-"
	OPositive  = "O+"
	ONegative  = "O-"
)

// All lists every recognized blood type in display/sort order
var All = []string{
	APositive, ANegative,
	BPositive, BNegative,
	ABPositive, ABNegative,
	OPositive, ONegative,
}

// IsValid reports whether s is one of the 8 recognized blood types
func IsValid(s string) bool {
	for _, bt := range All {
		if s == bt {
			return true
		}
	}
	return false
}

// SortOrder returns the display position of a blood type (A+ first, O- last).
// Unknown types sort after all known ones.
func SortOrder(s string) int {
	for i, bt := range All {
		if s == bt {
			return i
		}
	}
	return len(All)
}
