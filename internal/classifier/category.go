package classifier

// Category is one of the closed set of injury labels the cascade can emit
// or the instruction catalog can describe.
type Category string

const (
	MinorCut Category = "minor_cut"
	Burn     Category = "burn"
	Abrasion Category = "abrasion"
	Bruise   Category = "bruise"
	// Swelling has a catalog entry but no cascade rule selects it.
	Swelling Category = "swelling"
	Unknown  Category = "unknown"
)

// Categories returns every category in catalog order.
func Categories() []Category {
	return []Category{MinorCut, Burn, Abrasion, Bruise, Swelling, Unknown}
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}
