// Spawner generates the starting population: names, roles, traits,
// homes, and role-derived possessions.
package villager

import (
	"fmt"

	"github.com/emberhollow/villagesim/internal/entropy"
	"github.com/emberhollow/villagesim/internal/world"
)

var givenNames = []string{
	"Alda", "Bram", "Cedric", "Dara", "Edwin", "Fena", "Gareth", "Hilda",
	"Ivo", "Jora", "Kell", "Lena", "Merek", "Nessa", "Osric", "Petra",
	"Quinn", "Rosa", "Sten", "Tilda", "Ulf", "Vera", "Wyn", "Ysolde",
}

var familyNames = []string{
	"Ashdown", "Briarwood", "Cartwright", "Dunmore", "Eaves", "Fletcher",
	"Greenfield", "Hollis", "Ironwood", "Kettleby", "Larkspur", "Mossman",
	"Northgate", "Oakhart", "Pembrook", "Quill", "Reedley", "Stonebrook",
	"Thatcher", "Underhill",
}

// specialistRoles is the order specialist roles are handed out before the
// remaining population falls back to farmers and laborers.
var specialistRoles = []Role{
	RoleBaker, RoleBlacksmith, RoleMerchant, RoleInnkeeper, RolePriest, RoleGuard,
}

// Spawner creates villagers with deterministic ids and seeded variety.
type Spawner struct {
	rng  *entropy.Source
	next int
}

// NewSpawner creates a Spawner seeded for reproducible populations.
func NewSpawner(seed int64) *Spawner {
	return &Spawner{rng: entropy.NewSource(seed), next: 1}
}

// SpawnPopulation creates count villagers, assigning one of each specialist
// role first, then alternating farmers and laborers. Homes are assigned
// round-robin over the grid's home buildings; everyone starts at home.
func (sp *Spawner) SpawnPopulation(g *world.Grid, count int) []*Villager {
	homes := g.BuildingsOfKind(world.BuildingHome)
	out := make([]*Villager, 0, count)

	for i := 0; i < count; i++ {
		var role Role
		if i < len(specialistRoles) {
			role = specialistRoles[i]
		} else if (i-len(specialistRoles))%2 == 0 {
			role = RoleFarmer
		} else {
			role = RoleLaborer
		}

		var home *world.Building
		if len(homes) > 0 {
			home = homes[i%len(homes)]
		}
		out = append(out, sp.Spawn(g, role, home))
	}
	return out
}

// Spawn creates a single villager of the given role living in home.
func (sp *Spawner) Spawn(g *world.Grid, role Role, home *world.Building) *Villager {
	spec := role.Spec()

	id := fmt.Sprintf("villager-%03d", sp.next)
	sp.next++

	name := fmt.Sprintf("%s %s",
		givenNames[sp.rng.Intn(len(givenNames))],
		familyNames[sp.rng.Intn(len(familyNames))])

	inv := make(map[string]int, len(spec.StartingItems))
	for item, qty := range spec.StartingItems {
		inv[item] = qty
	}

	v := &Villager{
		ID:     id,
		Name:   name,
		Role:   role,
		Traits: sp.pickTraits(2),
		Scores: TraitScores{
			Openness:          sp.rng.Float(),
			Conscientiousness: sp.rng.Float(),
			Extraversion:      sp.rng.Float(),
			Agreeableness:     sp.rng.Float(),
			Neuroticism:       sp.rng.Float(),
		},
		Activity: ActivitySleeping,
		Needs: Needs{
			Mood:   sp.rng.Range(55, 80),
			Energy: sp.rng.Range(75, 100),
			Hunger: sp.rng.Range(15, 40),
			Social: sp.rng.Range(40, 65),
		},
		Coins:         spec.StartingCoins,
		Inventory:     inv,
		Relationships: make(map[string]float64),
		Schedule:      spec.Schedule,
	}

	if home != nil {
		v.HomeID = home.ID
		v.Pos = home.Entrance
	}
	if workplaces := g.BuildingsOfKind(spec.Workplace); len(workplaces) > 0 {
		v.WorkID = workplaces[0].ID
	}
	return v
}

// pickTraits selects n distinct trait tags, avoiding contradictory pairs
// (cheerful/grumpy, social/loner, hardworking/lazy).
func (sp *Spawner) pickTraits(n int) []Trait {
	opposites := map[Trait]Trait{
		TraitCheerful:    TraitGrumpy,
		TraitGrumpy:      TraitCheerful,
		TraitSocial:      TraitLoner,
		TraitLoner:       TraitSocial,
		TraitHardworking: TraitLazy,
		TraitLazy:        TraitHardworking,
	}

	var picked []Trait
	for len(picked) < n {
		t := Trait(sp.rng.Intn(len(traitNames)))
		conflict := false
		for _, p := range picked {
			if p == t || opposites[p] == t {
				conflict = true
				break
			}
		}
		if !conflict {
			picked = append(picked, t)
		}
	}
	return picked
}
