// Village map generation using layered simplex noise.
// Terrain comes from elevation and moisture layers; buildings are then
// placed deterministically from the seed on open ground near the center.
package world

import (
	"fmt"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds map generation parameters.
type GenConfig struct {
	Size       int     // Grid side length
	Seed       int64   // Random seed (0 = random)
	WaterLevel float64 // Elevation threshold below which tiles become water
	RockLevel  float64 // Elevation threshold above which tiles become rock
	Homes      int     // Number of home buildings to place
}

// DefaultGenConfig returns a sensible village map configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Size:       64,
		Seed:       0,
		WaterLevel: 0.18,
		RockLevel:  0.85,
		Homes:      12,
	}
}

// SmallTestConfig returns a tiny all-grass map for tests.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Size:       24,
		Seed:       42,
		WaterLevel: 0, // No water — keep the whole test map walkable
		RockLevel:  2,
		Homes:      4,
	}
}

// Generate creates a terrain grid and places the standard village buildings.
func Generate(cfg GenConfig) (*Grid, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)

	g := NewGrid(cfg.Size)
	const scale = 0.08

	for y := 0; y < cfg.Size; y++ {
		for x := 0; x < cfg.Size; x++ {
			elev := elevNoise.Eval2(float64(x)*scale, float64(y)*scale)
			moist := moistNoise.Eval2(float64(x)*scale, float64(y)*scale)

			t := g.Tile(x, y)
			switch {
			case elev < cfg.WaterLevel:
				t.Terrain = TerrainWater
				t.Walkable = false
			case elev > cfg.RockLevel:
				t.Terrain = TerrainRock
				t.Walkable = false
			case moist > 0.62:
				t.Terrain = TerrainForest
				t.Walkable = true
			default:
				t.Terrain = TerrainGrass
				t.Walkable = true
			}
		}
	}

	if err := placeVillage(g, seed, cfg.Homes); err != nil {
		return nil, err
	}
	return g, nil
}

// villageWorkplaces is the fixed set of non-home buildings every village gets.
var villageWorkplaces = []struct {
	id   string
	kind BuildingKind
}{
	{"farm", BuildingFarm},
	{"bakery", BuildingBakery},
	{"smithy", BuildingSmithy},
	{"market", BuildingMarket},
	{"tavern", BuildingTavern},
	{"chapel", BuildingChapel},
	{"well", BuildingWell},
}

// placeVillage places workplaces and homes on open ground, spiraling out from
// the grid center. Placement is deterministic for a given seed.
func placeVillage(g *Grid, seed int64, homes int) error {
	rng := rand.New(rand.NewSource(seed + 17))

	for _, wp := range villageWorkplaces {
		if !placeNearCenter(g, rng, wp.id, wp.kind) {
			return fmt.Errorf("generate village: no room for %s", wp.id)
		}
	}
	for i := 0; i < homes; i++ {
		id := fmt.Sprintf("home-%d", i+1)
		if !placeNearCenter(g, rng, id, BuildingHome) {
			return fmt.Errorf("generate village: no room for %s", id)
		}
	}
	return nil
}

// placeNearCenter tries random positions in widening rings around the center
// until the building fits. Returns false after exhausting attempts.
func placeNearCenter(g *Grid, rng *rand.Rand, id string, kind BuildingKind) bool {
	center := g.Size / 2
	w, h := footprint(kind)

	for radius := 4; radius < g.Size/2; radius += 2 {
		for attempt := 0; attempt < 30; attempt++ {
			x := center + rng.Intn(radius*2+1) - radius - w/2
			y := center + rng.Intn(radius*2+1) - radius - h/2
			if !footprintClear(g, x, y, w, h) {
				continue
			}
			if _, err := g.PlaceBuilding(id, kind, x, y); err == nil {
				return true
			}
		}
	}
	return false
}

// footprintClear checks the footprint plus a one-cell margin is in bounds,
// buildable ground, and unoccupied. The margin keeps entrances reachable.
func footprintClear(g *Grid, x, y, w, h int) bool {
	for cy := y - 1; cy <= y+h; cy++ {
		for cx := x - 1; cx <= x+w; cx++ {
			t := g.Tile(cx, cy)
			if t == nil || t.BuildingID != "" {
				return false
			}
			if t.Terrain == TerrainWater || t.Terrain == TerrainRock {
				return false
			}
		}
	}
	return true
}
