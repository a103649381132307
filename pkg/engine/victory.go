package engine

// VictoryCities counts the victory cities held by each team.
func VictoryCities(gs *GameState, m Map) map[Team]int {
	out := map[Team]int{Axis: 0, Allies: 0}
	for i := range gs.Territories {
		def, _ := m.Territory(TerritoryID(i))
		if def.VictoryCity && gs.Territories[i].Owner != Neutral {
			out[gs.Territories[i].Owner.Team()]++
		}
	}
	return out
}

// checkVictory sets the winner once either team meets its condition: the Axis
// holding the board's victory-city threshold, or the Allies holding every
// Axis capital.
func checkVictory(gs *GameState, m Map) []Event {
	if gs.Winner != "" {
		return nil
	}
	if th := m.VictoryThreshold(); th > 0 && VictoryCities(gs, m)[Axis] >= th {
		gs.Winner = Axis
	} else if alliesHoldAxisCapitals(gs, m) {
		gs.Winner = Allies
	}
	if gs.Winner == "" {
		return nil
	}
	return []Event{{Type: EventVictoryAchieved, Winner: gs.Winner, Turn: gs.Turn}}
}

func alliesHoldAxisCapitals(gs *GameState, m Map) bool {
	found := false
	for _, p := range TurnOrder {
		if p.Team() != Axis {
			continue
		}
		id, ok := m.CapitalOf(p)
		if !ok {
			continue
		}
		found = true
		if gs.Territory(id).Owner.Team() != Allies {
			return false
		}
	}
	return found
}
