package completion

import "strings"

// Category is the ordered completionist tier. Higher tiers imply every
// lower tier's criteria by construction.
type Category int

// Tiers in ascending order. None marks a competitor who is not a
// completionist at all.
const (
	None Category = iota
	Bronze
	Silver
	Gold
	Platinum
	Palladium
	Iridium
)

var categoryNames = [...]string{"", "Bronze", "Silver", "Gold", "Platinum", "Palladium", "Iridium"}

func (c Category) String() string {
	if c < None || int(c) >= len(categoryNames) {
		return ""
	}
	return categoryNames[c]
}

// ParseCategory resolves a case-insensitive tier name.
func ParseCategory(s string) (Category, bool) {
	for i := int(Bronze); i < len(categoryNames); i++ {
		if strings.EqualFold(s, categoryNames[i]) {
			return Category(i), true
		}
	}
	return None, false
}
