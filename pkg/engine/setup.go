package engine

// initialWars lists the pairs already at war when the game opens.
var initialWars = [][2]Power{
	{Germany, UnitedKingdom},
	{Germany, France},
	{Italy, UnitedKingdom},
	{Italy, France},
	{Japan, China},
	{Japan, UnitedKingdom},
	{Japan, ANZAC},
}

// NewGame builds the opening position of a board: territory owners,
// facilities, starting units, treasuries and the initial war matrix.
func NewGame(seed uint64, b *Board) (*GameState, error) {
	if b == nil {
		return nil, setupError("nil board")
	}
	gs := &GameState{
		Turn:            1,
		CurrentPower:    TurnOrder[0],
		CurrentPhase:    PhasePurchase,
		PhaseState:      NewPhaseState(PhasePurchase),
		Territories:     make([]TerritoryState, b.TerritoryCount()),
		SeaZones:        make([]SeaZoneState, b.SeaZoneCount()),
		ActionLog:       []ActionLogEntry{},
		UndoCheckpoints: []int{},
		NextUnitID:      1,
		RNGSeed:         seed,
	}
	for i := range gs.Territories {
		def, _ := b.Territory(TerritoryID(i))
		t := TerritoryState{Owner: def.OriginalOwner, Units: []Unit{}}
		for _, ft := range b.StartingFacilities(def.ID) {
			t.Facilities = append(t.Facilities, NewFacility(ft, def.IPC))
		}
		gs.Territories[i] = t
	}
	for i := range gs.SeaZones {
		gs.SeaZones[i] = SeaZoneState{Units: []Unit{}}
	}
	for _, p := range b.Placements() {
		if !gs.ValidRegion(p.Region) {
			return nil, setupError("placement in unknown region %s", p.Region)
		}
		for range p.Count {
			gs.spawnUnit(p.Region, p.Type, p.Owner)
		}
	}
	for _, p := range TurnOrder {
		gs.Powers = append(gs.Powers, PowerState{Power: p, IPCs: StartingIPCs[p]})
	}
	for _, w := range initialWars {
		gs.Political.setWar(w[0], w[1])
		gs.Power(w[0]).AtWar = true
		gs.Power(w[1]).AtWar = true
	}
	return gs, nil
}
