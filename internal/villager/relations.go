// Relationship tiers derived from the public affinity score.
package villager

// RelationshipTier buckets an affinity score. Strangers are pairs that
// have never interacted, regardless of score.
type RelationshipTier uint8

const (
	TierStranger RelationshipTier = iota
	TierAcquaintance
	TierFriend
	TierClose
)

var tierNames = [...]string{"stranger", "acquaintance", "friend", "close"}

// Name returns the lowercase tier name.
func (t RelationshipTier) Name() string {
	if int(t) < len(tierNames) {
		return tierNames[t]
	}
	return "unknown"
}

// Affinity thresholds for tier boundaries.
const (
	TierFriendThreshold = 40.0
	TierCloseThreshold  = 70.0
)

// TierFor derives the tier from whether the pair has met and the affinity.
func TierFor(met bool, affinity float64) RelationshipTier {
	if !met {
		return TierStranger
	}
	switch {
	case affinity >= TierCloseThreshold:
		return TierClose
	case affinity >= TierFriendThreshold:
		return TierFriend
	default:
		return TierAcquaintance
	}
}

// TierBetween returns v's tier toward the other villager.
func (v *Villager) TierBetween(otherID string) RelationshipTier {
	return TierFor(v.HasMet(otherID), v.Affinity(otherID))
}
