// Role catalog — each role defines a daily schedule, income, trade
// catalog, and starting possessions.
package villager

import "github.com/emberhollow/villagesim/internal/world"

// Role determines a villager's schedule, income, and trade catalog.
type Role uint8

const (
	RoleFarmer Role = iota
	RoleBaker
	RoleBlacksmith
	RoleMerchant
	RoleInnkeeper
	RolePriest
	RoleGuard
	RoleLaborer
)

var roleNames = [...]string{
	"farmer", "baker", "blacksmith", "merchant", "innkeeper",
	"priest", "guard", "laborer",
}

// Name returns the lowercase role name.
func (r Role) Name() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "unknown"
}

// Schedule maps each hour of the day to a target activity.
type Schedule [24]Activity

// For returns the scheduled activity for an hour (wrapped into 0–23).
func (s Schedule) For(hour int) Activity {
	return s[((hour%24)+24)%24]
}

// RoleSpec bundles everything a role grants its holder.
type RoleSpec struct {
	DailyIncome   int
	StartingCoins int
	StartingItems map[string]int
	Catalog       map[string]int // item → base price in coins
	Workplace     world.BuildingKind
	Schedule      Schedule
}

// workerSchedule builds the common villager day: sleep, breakfast, work
// with a midday meal, evening social time.
func workerSchedule(work Activity) Schedule {
	var s Schedule
	for h := 0; h < 24; h++ {
		switch {
		case h < 6:
			s[h] = ActivitySleeping
		case h == 6:
			s[h] = ActivityWaking
		case h == 7:
			s[h] = ActivityEating
		case h < 12:
			s[h] = work
		case h == 12:
			s[h] = ActivityEating
		case h < 17:
			s[h] = work
		case h == 17:
			s[h] = ActivityShopping
		case h < 21:
			s[h] = ActivitySocializing
		case h == 21:
			s[h] = ActivityResting
		default:
			s[h] = ActivitySleeping
		}
	}
	return s
}

// roleSpecs indexes RoleSpec by Role.
var roleSpecs = map[Role]RoleSpec{
	RoleFarmer: {
		DailyIncome:   8,
		StartingCoins: 30,
		StartingItems: map[string]int{"grain": 10, "vegetables": 6, "bread": 2},
		Catalog:       map[string]int{"grain": 2, "vegetables": 3, "eggs": 4},
		Workplace:     world.BuildingFarm,
		Schedule:      workerSchedule(ActivityWorking),
	},
	RoleBaker: {
		DailyIncome:   10,
		StartingCoins: 40,
		StartingItems: map[string]int{"bread": 12, "grain": 4},
		Catalog:       map[string]int{"bread": 3, "pie": 7, "cake": 12},
		Workplace:     world.BuildingBakery,
		Schedule:      workerSchedule(ActivityWorking),
	},
	RoleBlacksmith: {
		DailyIncome:   14,
		StartingCoins: 50,
		StartingItems: map[string]int{"tools": 4, "horseshoe": 6, "bread": 2},
		Catalog:       map[string]int{"tools": 15, "horseshoe": 8, "nails": 2},
		Workplace:     world.BuildingSmithy,
		Schedule:      workerSchedule(ActivityWorking),
	},
	RoleMerchant: {
		DailyIncome:   16,
		StartingCoins: 80,
		StartingItems: map[string]int{"cloth": 8, "pottery": 5, "spices": 3, "bread": 2},
		Catalog:       map[string]int{"cloth": 6, "pottery": 5, "spices": 10, "trinket": 4},
		Workplace:     world.BuildingMarket,
		Schedule:      workerSchedule(ActivityWorking),
	},
	RoleInnkeeper: {
		DailyIncome:   12,
		StartingCoins: 60,
		StartingItems: map[string]int{"ale": 15, "stew": 8, "bread": 4},
		Catalog:       map[string]int{"ale": 2, "stew": 4, "room": 10},
		Workplace:     world.BuildingTavern,
		Schedule:      innkeeperSchedule(),
	},
	RolePriest: {
		DailyIncome:   6,
		StartingCoins: 20,
		StartingItems: map[string]int{"candle": 10, "bread": 3},
		Catalog:       map[string]int{"candle": 1, "blessing": 5},
		Workplace:     world.BuildingChapel,
		Schedule:      priestSchedule(),
	},
	RoleGuard: {
		DailyIncome:   11,
		StartingCoins: 35,
		StartingItems: map[string]int{"bread": 3, "ale": 2},
		Catalog:       map[string]int{},
		Workplace:     world.BuildingMarket,
		Schedule:      guardSchedule(),
	},
	RoleLaborer: {
		DailyIncome:   7,
		StartingCoins: 25,
		StartingItems: map[string]int{"bread": 3, "grain": 2},
		Catalog:       map[string]int{},
		Workplace:     world.BuildingFarm,
		Schedule:      workerSchedule(ActivityWorking),
	},
}

// Spec returns the RoleSpec for a role. Unknown roles fall back to laborer.
func (r Role) Spec() RoleSpec {
	if spec, ok := roleSpecs[r]; ok {
		return spec
	}
	return roleSpecs[RoleLaborer]
}

func innkeeperSchedule() Schedule {
	// Innkeepers run the tavern through the evening and sleep late.
	var s Schedule
	for h := 0; h < 24; h++ {
		switch {
		case h < 8:
			s[h] = ActivitySleeping
		case h == 8:
			s[h] = ActivityWaking
		case h == 9:
			s[h] = ActivityEating
		case h < 14:
			s[h] = ActivityWorking
		case h == 14:
			s[h] = ActivityEating
		case h < 23:
			s[h] = ActivityWorking
		default:
			s[h] = ActivitySleeping
		}
	}
	return s
}

func priestSchedule() Schedule {
	var s Schedule
	for h := 0; h < 24; h++ {
		switch {
		case h < 5:
			s[h] = ActivitySleeping
		case h == 5:
			s[h] = ActivityWaking
		case h < 8:
			s[h] = ActivityPraying
		case h == 8:
			s[h] = ActivityEating
		case h < 12:
			s[h] = ActivityWorking
		case h == 12:
			s[h] = ActivityEating
		case h < 17:
			s[h] = ActivityWorking
		case h < 19:
			s[h] = ActivityPraying
		case h < 21:
			s[h] = ActivitySocializing
		default:
			s[h] = ActivitySleeping
		}
	}
	return s
}

func guardSchedule() Schedule {
	// Guards patrol in the afternoon and into the night.
	var s Schedule
	for h := 0; h < 24; h++ {
		switch {
		case h < 9:
			s[h] = ActivitySleeping
		case h == 9:
			s[h] = ActivityWaking
		case h == 10:
			s[h] = ActivityEating
		case h < 15:
			s[h] = ActivityWandering
		case h == 15:
			s[h] = ActivityEating
		case h < 22:
			s[h] = ActivityWandering
		case h == 22:
			s[h] = ActivitySocializing
		default:
			s[h] = ActivitySleeping
		}
	}
	return s
}
