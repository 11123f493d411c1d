// Relationship-adjusted pricing.
package economy

import (
	"math"

	"github.com/emberhollow/villagesim/internal/villager"
)

// Tier price modifiers. Friends get deals both directions; strangers pay
// a markup buying and eat a markdown selling. These constants are part of
// the economic balance — change them deliberately.
const (
	friendBuyModifier    = 0.85
	friendSellModifier   = 1.15
	strangerBuyModifier  = 1.10
	strangerSellModifier = 0.90
)

// PriceFor computes the effective unit price from a catalog base price and
// the relationship tier, rounded to the nearest coin with a floor of 1.
// buying selects the buy-side modifier; otherwise the sell-side applies.
func PriceFor(base int, tier villager.RelationshipTier, buying bool) int {
	mod := 1.0
	switch tier {
	case villager.TierFriend, villager.TierClose:
		if buying {
			mod = friendBuyModifier
		} else {
			mod = friendSellModifier
		}
	case villager.TierStranger:
		if buying {
			mod = strangerBuyModifier
		} else {
			mod = strangerSellModifier
		}
	}

	price := int(math.Round(float64(base) * mod))
	if price < 1 {
		price = 1
	}
	return price
}
