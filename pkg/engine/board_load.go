package engine

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed boards/europe1940.yaml
var defaultBoardYAML []byte

var (
	defaultBoardOnce sync.Once
	defaultBoard     *Board
	defaultBoardErr  error
)

// DefaultBoard returns the embedded Global 1940 board. It is parsed once and
// shared; Board is read-only after loading.
func DefaultBoard() (*Board, error) {
	defaultBoardOnce.Do(func() {
		defaultBoard, defaultBoardErr = LoadBoard(defaultBoardYAML)
	})
	return defaultBoard, defaultBoardErr
}

// BoardFile is the top-level YAML structure of a board definition.
type BoardFile struct {
	Name              string           `yaml:"name"`
	AxisVictoryCities int              `yaml:"axis_victory_cities"`
	Territories       []TerritoryEntry `yaml:"territories"`
	SeaZones          []SeaZoneEntry   `yaml:"sea_zones"`
	Straits           []StraitEntry    `yaml:"straits"`
	Objectives        []ObjectiveEntry `yaml:"objectives"`
}

// TerritoryEntry is one territory in the YAML file. Adjacency may be declared
// on either side; the loader makes it symmetric.
type TerritoryEntry struct {
	Name        string         `yaml:"name"`
	IPC         int            `yaml:"ipc"`
	Owner       Power          `yaml:"owner"`
	Type        TerritoryType  `yaml:"type"`
	Capital     Power          `yaml:"capital"`
	VictoryCity bool           `yaml:"victory_city"`
	Chinese     bool           `yaml:"chinese"`
	Land        []string       `yaml:"land"`
	Sea         []string       `yaml:"sea"`
	Facilities  []FacilityType `yaml:"facilities"`
	Units       []UnitEntry    `yaml:"units"`
}

// SeaZoneEntry is one sea zone in the YAML file.
type SeaZoneEntry struct {
	Name   string      `yaml:"name"`
	Convoy bool        `yaml:"convoy"`
	Sea    []string    `yaml:"sea"`
	Units  []UnitEntry `yaml:"units"`
}

// UnitEntry is a starting stack. Owner defaults to the territory owner.
type UnitEntry struct {
	Type  UnitType `yaml:"type"`
	Count int      `yaml:"count"`
	Owner Power    `yaml:"owner"`
}

// StraitEntry names the controlling territory and the two joined sea zones.
type StraitEntry struct {
	Name         string   `yaml:"name"`
	ControlledBy string   `yaml:"controlled_by"`
	Seas         []string `yaml:"seas"`
}

// ObjectiveEntry is a national objective in the YAML file.
type ObjectiveEntry struct {
	Power       Power    `yaml:"power"`
	Bonus       int      `yaml:"bonus"`
	Description string   `yaml:"description"`
	AllOf       []string `yaml:"all_of"`
	AnyOf       []string `yaml:"any_of"`
	RequiresWar bool     `yaml:"requires_war"`
}

// LoadBoard parses and validates a YAML board definition.
func LoadBoard(data []byte) (*Board, error) {
	var bf BoardFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return nil, setupError("parse board YAML: %v", err)
	}
	return buildBoard(bf)
}

func buildBoard(bf BoardFile) (*Board, error) {
	if len(bf.Territories) == 0 {
		return nil, setupError("board %q has no territories", bf.Name)
	}
	b := &Board{
		name:          bf.Name,
		threshold:     bf.AxisVictoryCities,
		facilities:    make(map[TerritoryID][]FacilityType),
		territoryByNm: make(map[string]TerritoryID),
		seaZoneByNm:   make(map[string]SeaZoneID),
	}

	for i, te := range bf.Territories {
		if _, dup := b.territoryByNm[te.Name]; dup || te.Name == "" {
			return nil, setupError("duplicate or empty territory name %q", te.Name)
		}
		typ := te.Type
		if typ == "" {
			typ = TerritoryNormal
		}
		if te.Owner != Neutral && !te.Owner.Valid() {
			return nil, setupError("territory %q: unknown owner %q", te.Name, te.Owner)
		}
		if te.Capital != Neutral && !te.Capital.Valid() {
			return nil, setupError("territory %q: unknown capital power %q", te.Name, te.Capital)
		}
		b.territoryByNm[te.Name] = TerritoryID(i)
		b.territories = append(b.territories, TerritoryDef{
			ID:            TerritoryID(i),
			Name:          te.Name,
			IPC:           te.IPC,
			Type:          typ,
			OriginalOwner: te.Owner,
			Capital:       te.Capital,
			VictoryCity:   te.VictoryCity,
			Chinese:       te.Chinese,
		})
	}
	for i, se := range bf.SeaZones {
		if _, dup := b.seaZoneByNm[se.Name]; dup || se.Name == "" {
			return nil, setupError("duplicate or empty sea zone name %q", se.Name)
		}
		b.seaZoneByNm[se.Name] = SeaZoneID(i)
		b.seaZones = append(b.seaZones, SeaZoneDef{ID: SeaZoneID(i), Name: se.Name, Convoy: se.Convoy})
	}

	for i, te := range bf.Territories {
		id := TerritoryID(i)
		for _, n := range te.Land {
			other, ok := b.territoryByNm[n]
			if !ok {
				return nil, setupError("territory %q: unknown land neighbour %q", te.Name, n)
			}
			if other == id {
				return nil, setupError("territory %q is adjacent to itself", te.Name)
			}
			b.linkLand(id, other)
		}
		for _, n := range te.Sea {
			z, ok := b.seaZoneByNm[n]
			if !ok {
				return nil, setupError("territory %q: unknown sea zone %q", te.Name, n)
			}
			b.linkCoast(id, z)
		}
		for _, ft := range te.Facilities {
			if !ft.Valid() {
				return nil, setupError("territory %q: unknown facility %q", te.Name, ft)
			}
			b.facilities[id] = append(b.facilities[id], ft)
		}
		for _, ue := range te.Units {
			owner := ue.Owner
			if owner == Neutral {
				owner = te.Owner
			}
			if err := b.addPlacement(Land(id), owner, ue, te.Name); err != nil {
				return nil, err
			}
		}
	}
	for i, se := range bf.SeaZones {
		id := SeaZoneID(i)
		for _, n := range se.Sea {
			other, ok := b.seaZoneByNm[n]
			if !ok {
				return nil, setupError("sea zone %q: unknown neighbour %q", se.Name, n)
			}
			if other == id {
				return nil, setupError("sea zone %q is adjacent to itself", se.Name)
			}
			b.linkSea(id, other)
		}
		for _, ue := range se.Units {
			if err := b.addPlacement(Sea(id), ue.Owner, ue, se.Name); err != nil {
				return nil, err
			}
		}
	}

	for _, st := range bf.Straits {
		ctrl, ok := b.territoryByNm[st.ControlledBy]
		if !ok {
			return nil, setupError("strait %q: unknown controlling territory %q", st.Name, st.ControlledBy)
		}
		if len(st.Seas) != 2 {
			return nil, setupError("strait %q must join exactly two sea zones", st.Name)
		}
		var seas [2]SeaZoneID
		for j, n := range st.Seas {
			z, ok := b.seaZoneByNm[n]
			if !ok {
				return nil, setupError("strait %q: unknown sea zone %q", st.Name, n)
			}
			seas[j] = z
		}
		if seas[0] == seas[1] {
			return nil, setupError("strait %q joins a sea zone to itself", st.Name)
		}
		b.straits = append(b.straits, StraitDef{Name: st.Name, ControlledBy: ctrl, Seas: seas})
	}

	for _, oe := range bf.Objectives {
		if !oe.Power.Valid() {
			return nil, setupError("objective %q: unknown power %q", oe.Description, oe.Power)
		}
		obj := Objective{Power: oe.Power, Bonus: oe.Bonus, Description: oe.Description, RequiresWar: oe.RequiresWar}
		var err error
		if obj.AllOf, err = b.lookupTerritories(oe.AllOf); err != nil {
			return nil, err
		}
		if obj.AnyOf, err = b.lookupTerritories(oe.AnyOf); err != nil {
			return nil, err
		}
		b.objectives = append(b.objectives, obj)
	}

	return b, nil
}

func (b *Board) addPlacement(r RegionID, owner Power, ue UnitEntry, where string) error {
	if !ue.Type.Valid() {
		return setupError("%s: unknown unit type %q", where, ue.Type)
	}
	if !owner.Valid() {
		return setupError("%s: %s units need an owner", where, ue.Type)
	}
	if ue.Count <= 0 {
		return setupError("%s: %s count must be positive", where, ue.Type)
	}
	d := StatsFor(ue.Type).Domain
	if r.IsLand() && d == DomainSea || r.IsSea() && d == DomainLand {
		return setupError("%s: %s cannot start here", where, ue.Type)
	}
	b.placements = append(b.placements, Placement{Region: r, Owner: owner, Type: ue.Type, Count: ue.Count})
	return nil
}

func (b *Board) lookupTerritories(names []string) ([]TerritoryID, error) {
	var out []TerritoryID
	for _, n := range names {
		id, ok := b.territoryByNm[n]
		if !ok {
			return nil, setupError("unknown territory %q", n)
		}
		out = append(out, id)
	}
	return out, nil
}

func (b *Board) linkLand(a, c TerritoryID) {
	if !b.LandAdjacent(a, c) {
		b.territories[a].AdjacentLand = append(b.territories[a].AdjacentLand, c)
	}
	if !b.LandAdjacent(c, a) {
		b.territories[c].AdjacentLand = append(b.territories[c].AdjacentLand, a)
	}
}

func (b *Board) linkSea(a, c SeaZoneID) {
	if !b.SeaAdjacent(a, c) {
		b.seaZones[a].AdjacentSea = append(b.seaZones[a].AdjacentSea, c)
	}
	if !b.SeaAdjacent(c, a) {
		b.seaZones[c].AdjacentSea = append(b.seaZones[c].AdjacentSea, a)
	}
}

func (b *Board) linkCoast(t TerritoryID, z SeaZoneID) {
	if b.coastal(t, z) {
		return
	}
	b.territories[t].AdjacentSea = append(b.territories[t].AdjacentSea, z)
	b.seaZones[z].AdjacentLand = append(b.seaZones[z].AdjacentLand, t)
}

// MustTerritory resolves a territory name or panics. Intended for tests and
// fixed scenario code.
func (b *Board) MustTerritory(name string) TerritoryID {
	id, ok := b.territoryByNm[name]
	if !ok {
		panic(fmt.Sprintf("unknown territory %q", name))
	}
	return id
}

// MustSeaZone resolves a sea-zone name or panics.
func (b *Board) MustSeaZone(name string) SeaZoneID {
	id, ok := b.seaZoneByNm[name]
	if !ok {
		panic(fmt.Sprintf("unknown sea zone %q", name))
	}
	return id
}
