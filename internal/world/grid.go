// Package world provides the village tile grid, building placement,
// and pathfinding.
package world

import (
	"fmt"
)

// Terrain classifies a tile's ground type.
type Terrain uint8

const (
	TerrainGrass  Terrain = iota
	TerrainForest         // Walkable, slows nothing — flavor only
	TerrainWater          // Not walkable
	TerrainRock           // Not walkable
	TerrainPath           // Carved roads and building entrances
)

// TerrainName returns a human-readable terrain name.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainGrass:
		return "grass"
	case TerrainForest:
		return "forest"
	case TerrainWater:
		return "water"
	case TerrainRock:
		return "rock"
	case TerrainPath:
		return "path"
	}
	return "unknown"
}

// Point is an integer grid cell.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ManhattanTo returns the Manhattan distance to another point.
func (p Point) ManhattanTo(o Point) int {
	dx := p.X - o.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - o.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Tile is one grid cell.
type Tile struct {
	Terrain    Terrain `json:"terrain"`
	Walkable   bool    `json:"walkable"`
	BuildingID string  `json:"building_id,omitempty"` // Occupying building, if any
}

// BuildingKind enumerates building types.
type BuildingKind uint8

const (
	BuildingHome BuildingKind = iota
	BuildingFarm
	BuildingBakery
	BuildingSmithy
	BuildingMarket
	BuildingTavern
	BuildingChapel
	BuildingWell
)

// BuildingKindName returns a human-readable building kind name.
func BuildingKindName(k BuildingKind) string {
	switch k {
	case BuildingHome:
		return "home"
	case BuildingFarm:
		return "farm"
	case BuildingBakery:
		return "bakery"
	case BuildingSmithy:
		return "smithy"
	case BuildingMarket:
		return "market"
	case BuildingTavern:
		return "tavern"
	case BuildingChapel:
		return "chapel"
	case BuildingWell:
		return "well"
	}
	return "unknown"
}

// footprint returns the default width and height for a building kind.
func footprint(k BuildingKind) (w, h int) {
	switch k {
	case BuildingHome:
		return 3, 3
	case BuildingFarm:
		return 5, 4
	case BuildingBakery:
		return 3, 3
	case BuildingSmithy:
		return 3, 3
	case BuildingMarket:
		return 4, 4
	case BuildingTavern:
		return 4, 3
	case BuildingChapel:
		return 3, 4
	case BuildingWell:
		return 1, 1
	}
	return 1, 1
}

// Building occupies an axis-aligned footprint on the grid.
// The entrance is the single walkable cell villagers path to.
type Building struct {
	ID       string       `json:"id"`
	Kind     BuildingKind `json:"kind"`
	X        int          `json:"x"`
	Y        int          `json:"y"`
	Width    int          `json:"width"`
	Height   int          `json:"height"`
	Entrance Point        `json:"entrance"`
	OwnerID  string       `json:"owner_id,omitempty"`
}

// Grid is the fixed-size square village map.
type Grid struct {
	Size      int
	tiles     []Tile
	Buildings map[string]*Building
}

// NewGrid creates a grid of the given side length, all grass and walkable.
func NewGrid(size int) *Grid {
	g := &Grid{
		Size:      size,
		tiles:     make([]Tile, size*size),
		Buildings: make(map[string]*Building),
	}
	for i := range g.tiles {
		g.tiles[i] = Tile{Terrain: TerrainGrass, Walkable: true}
	}
	return g
}

// InBounds reports whether (x, y) lies on the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Size && y >= 0 && y < g.Size
}

// Tile returns the tile at (x, y), or nil if out of bounds.
func (g *Grid) Tile(x, y int) *Tile {
	if !g.InBounds(x, y) {
		return nil
	}
	return &g.tiles[y*g.Size+x]
}

// IsWalkable reports whether (x, y) is on the grid and walkable.
func (g *Grid) IsWalkable(x, y int) bool {
	t := g.Tile(x, y)
	return t != nil && t.Walkable
}

// Building returns the building with the given id, or nil.
func (g *Grid) Building(id string) *Building {
	return g.Buildings[id]
}

// PlaceBuilding places a building of the given kind with its top-left corner
// at (x, y). The footprint cells become unwalkable; the entrance cell — the
// midpoint of the south edge — is carved as a walkable path tile. Fails if
// any covered cell is out of bounds or already occupied.
func (g *Grid) PlaceBuilding(id string, kind BuildingKind, x, y int) (*Building, error) {
	if _, exists := g.Buildings[id]; exists {
		return nil, fmt.Errorf("place building %s: id already used", id)
	}

	w, h := footprint(kind)
	entrance := Point{X: x + w/2, Y: y + h}
	if !g.InBounds(entrance.X, entrance.Y) {
		return nil, fmt.Errorf("place building %s: entrance out of bounds", id)
	}

	for cy := y; cy < y+h; cy++ {
		for cx := x; cx < x+w; cx++ {
			t := g.Tile(cx, cy)
			if t == nil {
				return nil, fmt.Errorf("place building %s: cell (%d,%d) out of bounds", id, cx, cy)
			}
			if t.BuildingID != "" {
				return nil, fmt.Errorf("place building %s: cell (%d,%d) occupied by %s", id, cx, cy, t.BuildingID)
			}
		}
	}
	if et := g.Tile(entrance.X, entrance.Y); et.BuildingID != "" {
		return nil, fmt.Errorf("place building %s: entrance occupied by %s", id, et.BuildingID)
	}

	b := &Building{
		ID:       id,
		Kind:     kind,
		X:        x,
		Y:        y,
		Width:    w,
		Height:   h,
		Entrance: entrance,
	}

	for cy := y; cy < y+h; cy++ {
		for cx := x; cx < x+w; cx++ {
			t := g.Tile(cx, cy)
			t.BuildingID = id
			t.Walkable = false
		}
	}
	et := g.Tile(entrance.X, entrance.Y)
	et.Terrain = TerrainPath
	et.Walkable = true

	g.Buildings[id] = b
	return b, nil
}

// BuildingsOfKind returns all buildings of the given kind.
func (g *Grid) BuildingsOfKind(kind BuildingKind) []*Building {
	var out []*Building
	for _, b := range g.Buildings {
		if b.Kind == kind {
			out = append(out, b)
		}
	}
	return out
}

// TerrainCounts tallies tiles by terrain type.
func (g *Grid) TerrainCounts() map[Terrain]int {
	counts := make(map[Terrain]int)
	for i := range g.tiles {
		counts[g.tiles[i].Terrain]++
	}
	return counts
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(size=%d, buildings=%d)", g.Size, len(g.Buildings))
}
