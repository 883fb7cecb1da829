package moniker

import "fmt"

// Tier is one of the three fixed commonality buckets of a category
type Tier string

const (
	TierCommon   Tier = "common"
	TierUncommon Tier = "uncommon"
	TierRare     Tier = "rare"
)

// Tiers returns all tiers in their canonical order
func Tiers() []Tier {
	return []Tier{TierCommon, TierUncommon, TierRare}
}

// ParseTier converts a string to a Tier
func ParseTier(s string) (Tier, error) {
	switch t := Tier(s); t {
	case TierCommon, TierUncommon, TierRare:
		return t, nil
	default:
		return "", &InvalidArgumentError{
			Field:  "tier",
			Reason: fmt.Sprintf("%q must be one of common, uncommon, rare", s),
		}
	}
}

func (t Tier) String() string {
	return string(t)
}
