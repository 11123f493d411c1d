package world

import "testing"

func TestPlaceBuilding(t *testing.T) {
	g := NewGrid(20)

	b, err := g.PlaceBuilding("home-1", BuildingHome, 5, 5)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if b.Width != 3 || b.Height != 3 {
		t.Fatalf("home footprint = %dx%d, want 3x3", b.Width, b.Height)
	}

	// Entrance is the midpoint of the south edge and stays walkable.
	want := Point{X: 6, Y: 8}
	if b.Entrance != want {
		t.Fatalf("entrance = %v, want %v", b.Entrance, want)
	}
	if !g.IsWalkable(b.Entrance.X, b.Entrance.Y) {
		t.Fatal("entrance must be walkable")
	}
	if g.Tile(b.Entrance.X, b.Entrance.Y).Terrain != TerrainPath {
		t.Fatal("entrance must be carved as path")
	}

	// Footprint cells are blocked and tagged.
	for y := 5; y < 8; y++ {
		for x := 5; x < 8; x++ {
			tile := g.Tile(x, y)
			if tile.Walkable {
				t.Fatalf("footprint cell (%d,%d) still walkable", x, y)
			}
			if tile.BuildingID != "home-1" {
				t.Fatalf("footprint cell (%d,%d) tagged %q", x, y, tile.BuildingID)
			}
		}
	}
}

func TestPlaceBuildingRejectsOverlap(t *testing.T) {
	g := NewGrid(20)
	if _, err := g.PlaceBuilding("home-1", BuildingHome, 5, 5); err != nil {
		t.Fatalf("place: %v", err)
	}
	if _, err := g.PlaceBuilding("home-2", BuildingHome, 6, 6); err == nil {
		t.Fatal("overlapping placement must fail")
	}
	if g.Building("home-2") != nil {
		t.Fatal("failed placement must not register the building")
	}
	// Original footprint untouched.
	if g.Tile(6, 6).BuildingID != "home-1" {
		t.Fatalf("cell tag = %q, want home-1", g.Tile(6, 6).BuildingID)
	}
}

func TestPlaceBuildingRejectsOutOfBounds(t *testing.T) {
	g := NewGrid(10)
	cases := []struct {
		name string
		x, y int
	}{
		{"footprint past edge", 8, 4},
		{"entrance past south edge", 4, 7},
		{"negative origin", -1, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := g.PlaceBuilding("b", BuildingHome, tc.x, tc.y); err == nil {
				t.Fatalf("placement at (%d,%d) must fail", tc.x, tc.y)
			}
		})
	}
}

func TestBuildingsOfKind(t *testing.T) {
	g := NewGrid(30)
	g.PlaceBuilding("home-1", BuildingHome, 2, 2)
	g.PlaceBuilding("home-2", BuildingHome, 10, 2)
	g.PlaceBuilding("farm", BuildingFarm, 2, 12)

	if got := len(g.BuildingsOfKind(BuildingHome)); got != 2 {
		t.Fatalf("homes = %d, want 2", got)
	}
	if got := len(g.BuildingsOfKind(BuildingTavern)); got != 0 {
		t.Fatalf("taverns = %d, want 0", got)
	}
}

func TestTileOutOfBounds(t *testing.T) {
	g := NewGrid(5)
	if g.Tile(5, 0) != nil || g.Tile(0, -1) != nil {
		t.Fatal("out-of-bounds tile must be nil")
	}
	if g.IsWalkable(-1, 2) {
		t.Fatal("out-of-bounds must not be walkable")
	}
}
