package engine

// TerritoryType controls who may enter a territory.
type TerritoryType string

const (
	TerritoryNormal      TerritoryType = "normal"
	TerritoryProAxis     TerritoryType = "pro_axis"
	TerritoryProAllies   TerritoryType = "pro_allies"
	TerritoryTrueNeutral TerritoryType = "true_neutral"
	TerritoryImpassable  TerritoryType = "impassable"
)

// TerritoryDef is the static definition of a land territory.
type TerritoryDef struct {
	ID            TerritoryID
	Name          string
	IPC           int
	Type          TerritoryType
	OriginalOwner Power
	Capital       Power
	VictoryCity   bool
	Chinese       bool
	AdjacentLand  []TerritoryID
	AdjacentSea   []SeaZoneID
}

// Impassable reports whether no unit may ever enter the territory.
func (t *TerritoryDef) Impassable() bool {
	return t.Type == TerritoryImpassable
}

// SeaZoneDef is the static definition of a sea zone.
type SeaZoneDef struct {
	ID           SeaZoneID
	Name         string
	Convoy       bool
	AdjacentSea  []SeaZoneID
	AdjacentLand []TerritoryID
}

// StraitDef connects two sea zones through a chokepoint whose passage
// depends on who controls the land territory.
type StraitDef struct {
	Name         string
	ControlledBy TerritoryID
	Seas         [2]SeaZoneID
}

// Objective is a national objective paying Bonus IPCs at income time.
type Objective struct {
	Power       Power
	Bonus       int
	Description string
	AllOf       []TerritoryID
	AnyOf       []TerritoryID
	RequiresWar bool
}

// Placement is a starting stack of units.
type Placement struct {
	Region RegionID
	Owner  Power
	Type   UnitType
	Count  int
}

// Map is the read-only board topology consumed by the rules.
type Map interface {
	Name() string
	TerritoryCount() int
	SeaZoneCount() int
	Territory(id TerritoryID) (*TerritoryDef, bool)
	SeaZone(id SeaZoneID) (*SeaZoneDef, bool)
	LandAdjacent(a, b TerritoryID) bool
	SeaAdjacent(a, b SeaZoneID) bool
	Adjacent(a, b RegionID) bool
	LandNeighbors(id TerritoryID) []TerritoryID
	SeaNeighbors(id SeaZoneID) []SeaZoneID
	CoastalZones(id TerritoryID) []SeaZoneID
	CoastalTerritories(id SeaZoneID) []TerritoryID
	StraitBetween(a, b SeaZoneID) (*StraitDef, bool)
	Neighbors(r RegionID) []RegionID
	Objectives() []Objective
	VictoryThreshold() int
	CapitalOf(p Power) (TerritoryID, bool)
}

// Board is the YAML-backed Map implementation.
type Board struct {
	name          string
	territories   []TerritoryDef
	seaZones      []SeaZoneDef
	straits       []StraitDef
	objectives    []Objective
	threshold     int
	placements    []Placement
	facilities    map[TerritoryID][]FacilityType
	territoryByNm map[string]TerritoryID
	seaZoneByNm   map[string]SeaZoneID
}

func (b *Board) Name() string        { return b.name }
func (b *Board) TerritoryCount() int { return len(b.territories) }
func (b *Board) SeaZoneCount() int   { return len(b.seaZones) }

func (b *Board) Territory(id TerritoryID) (*TerritoryDef, bool) {
	if id < 0 || int(id) >= len(b.territories) {
		return nil, false
	}
	return &b.territories[id], true
}

func (b *Board) SeaZone(id SeaZoneID) (*SeaZoneDef, bool) {
	if id < 0 || int(id) >= len(b.seaZones) {
		return nil, false
	}
	return &b.seaZones[id], true
}

// TerritoryByName looks up a territory by its display name.
func (b *Board) TerritoryByName(name string) (TerritoryID, bool) {
	id, ok := b.territoryByNm[name]
	return id, ok
}

// SeaZoneByName looks up a sea zone by its display name.
func (b *Board) SeaZoneByName(name string) (SeaZoneID, bool) {
	id, ok := b.seaZoneByNm[name]
	return id, ok
}

func (b *Board) LandAdjacent(a, c TerritoryID) bool {
	t, ok := b.Territory(a)
	if !ok {
		return false
	}
	for _, n := range t.AdjacentLand {
		if n == c {
			return true
		}
	}
	return false
}

// SeaAdjacent reports open-water adjacency. Straits are not included.
func (b *Board) SeaAdjacent(a, c SeaZoneID) bool {
	z, ok := b.SeaZone(a)
	if !ok {
		return false
	}
	for _, n := range z.AdjacentSea {
		if n == c {
			return true
		}
	}
	return false
}

func (b *Board) coastal(t TerritoryID, z SeaZoneID) bool {
	for _, n := range b.CoastalZones(t) {
		if n == z {
			return true
		}
	}
	return false
}

// Adjacent reports whether a single hop connects a and c in any domain,
// including across straits.
func (b *Board) Adjacent(a, c RegionID) bool {
	switch {
	case a.IsLand() && c.IsLand():
		return b.LandAdjacent(a.Territory(), c.Territory())
	case a.IsSea() && c.IsSea():
		if b.SeaAdjacent(a.SeaZone(), c.SeaZone()) {
			return true
		}
		_, ok := b.StraitBetween(a.SeaZone(), c.SeaZone())
		return ok
	case a.IsLand():
		return b.coastal(a.Territory(), c.SeaZone())
	default:
		return b.coastal(c.Territory(), a.SeaZone())
	}
}

func (b *Board) LandNeighbors(id TerritoryID) []TerritoryID {
	if t, ok := b.Territory(id); ok {
		return t.AdjacentLand
	}
	return nil
}

func (b *Board) SeaNeighbors(id SeaZoneID) []SeaZoneID {
	if z, ok := b.SeaZone(id); ok {
		return z.AdjacentSea
	}
	return nil
}

func (b *Board) CoastalZones(id TerritoryID) []SeaZoneID {
	if t, ok := b.Territory(id); ok {
		return t.AdjacentSea
	}
	return nil
}

func (b *Board) CoastalTerritories(id SeaZoneID) []TerritoryID {
	if z, ok := b.SeaZone(id); ok {
		return z.AdjacentLand
	}
	return nil
}

func (b *Board) StraitBetween(a, c SeaZoneID) (*StraitDef, bool) {
	for i := range b.straits {
		s := &b.straits[i]
		if (s.Seas[0] == a && s.Seas[1] == c) || (s.Seas[0] == c && s.Seas[1] == a) {
			return s, true
		}
	}
	return nil, false
}

// Straits returns every strait on the board.
func (b *Board) Straits() []StraitDef { return b.straits }

// Neighbors lists every region one hop from r, across straits included.
func (b *Board) Neighbors(r RegionID) []RegionID {
	var out []RegionID
	if r.IsLand() {
		for _, t := range b.LandNeighbors(r.Territory()) {
			out = append(out, Land(t))
		}
		for _, z := range b.CoastalZones(r.Territory()) {
			out = append(out, Sea(z))
		}
		return out
	}
	for _, z := range b.SeaNeighbors(r.SeaZone()) {
		out = append(out, Sea(z))
	}
	for _, s := range b.straits {
		switch r.SeaZone() {
		case s.Seas[0]:
			out = append(out, Sea(s.Seas[1]))
		case s.Seas[1]:
			out = append(out, Sea(s.Seas[0]))
		}
	}
	for _, t := range b.CoastalTerritories(r.SeaZone()) {
		out = append(out, Land(t))
	}
	return out
}

func (b *Board) Objectives() []Objective { return b.objectives }
func (b *Board) VictoryThreshold() int   { return b.threshold }

func (b *Board) CapitalOf(p Power) (TerritoryID, bool) {
	for _, t := range b.territories {
		if t.Capital == p {
			return t.ID, true
		}
	}
	return 0, false
}

// Placements returns the starting unit stacks.
func (b *Board) Placements() []Placement { return b.placements }

// StartingFacilities returns the facilities a territory begins the game with.
func (b *Board) StartingFacilities(id TerritoryID) []FacilityType {
	return b.facilities[id]
}

// ShortestPath returns the fewest-hop path from one region to another that
// only passes through regions accepted by pass. The endpoints are not
// checked against pass.
func ShortestPath(m Map, from, to RegionID, pass func(RegionID) bool) ([]RegionID, bool) {
	if from == to {
		return []RegionID{from}, true
	}
	prev := map[RegionID]RegionID{from: from}
	queue := []RegionID{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range m.Neighbors(cur) {
			if _, seen := prev[n]; seen {
				continue
			}
			if n != to && pass != nil && !pass(n) {
				continue
			}
			prev[n] = cur
			if n == to {
				path := []RegionID{to}
				for p := cur; p != from; p = prev[p] {
					path = append(path, p)
				}
				path = append(path, from)
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path, true
			}
			queue = append(queue, n)
		}
	}
	return nil, false
}

// ReachableWithin maps every region reachable from start in at most steps
// hops to its hop distance. Regions rejected by pass are not expanded.
func ReachableWithin(m Map, start RegionID, steps int, pass func(RegionID) bool) map[RegionID]int {
	dist := map[RegionID]int{start: 0}
	queue := []RegionID{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		d := dist[cur]
		if d >= steps {
			continue
		}
		for _, n := range m.Neighbors(cur) {
			if _, seen := dist[n]; seen {
				continue
			}
			if pass != nil && !pass(n) {
				continue
			}
			dist[n] = d + 1
			queue = append(queue, n)
		}
	}
	return dist
}
