package engine

import "slices"

// CombatSubPhase is a step of a single battle.
type CombatSubPhase string

const (
	SubPhaseAAFire                            CombatSubPhase = "aa_fire"
	SubPhaseAAFireCasualties                  CombatSubPhase = "aa_fire_casualties"
	SubPhaseShoreBombardment                  CombatSubPhase = "shore_bombardment"
	SubPhaseShoreBombardmentCasualties        CombatSubPhase = "shore_bombardment_casualties"
	SubPhaseAttackerSubmarineStrike           CombatSubPhase = "attacker_submarine_strike"
	SubPhaseDefenderSubmarineStrikeCasualties CombatSubPhase = "defender_submarine_strike_casualties"
	SubPhaseDefenderSubmarineStrike           CombatSubPhase = "defender_submarine_strike"
	SubPhaseAttackerSubmarineStrikeCasualties CombatSubPhase = "attacker_submarine_strike_casualties"
	SubPhaseAttackerRolls                     CombatSubPhase = "attacker_rolls"
	SubPhaseDefenderRolls                     CombatSubPhase = "defender_rolls"
	SubPhaseDefenderSelectsCasualties         CombatSubPhase = "defender_selects_casualties"
	SubPhaseAttackerSelectsCasualties         CombatSubPhase = "attacker_selects_casualties"
	SubPhaseAttackerDecision                  CombatSubPhase = "attacker_decision"
	SubPhaseBattleOver                        CombatSubPhase = "battle_over"
)

// roundStages are the firing steps of a round in order; casualty steps are
// entered from these when hits are scored.
var roundStages = []CombatSubPhase{
	SubPhaseAAFire,
	SubPhaseShoreBombardment,
	SubPhaseAttackerSubmarineStrike,
	SubPhaseDefenderSubmarineStrike,
	SubPhaseAttackerRolls,
}

// defenderSelects reports whether the defending power chooses casualties in sp.
func (sp CombatSubPhase) defenderSelects() bool {
	switch sp {
	case SubPhaseShoreBombardmentCasualties, SubPhaseDefenderSubmarineStrikeCasualties, SubPhaseDefenderSelectsCasualties:
		return true
	}
	return false
}

// IsCasualtySelection reports whether sp waits for SelectCasualties.
func (sp CombatSubPhase) IsCasualtySelection() bool {
	switch sp {
	case SubPhaseAAFireCasualties, SubPhaseAttackerSubmarineStrikeCasualties, SubPhaseAttackerSelectsCasualties:
		return true
	}
	return sp.defenderSelects()
}

// ActiveCombat is the battle currently being fought.
type ActiveCombat struct {
	Location            RegionID       `json:"location"`
	Attacker            Power          `json:"attacker"`
	Defender            Power          `json:"defender"`
	AttackerUnits       []UnitID       `json:"attacker_units"`
	DefenderUnits       []UnitID       `json:"defender_units"`
	Round               int            `json:"round"`
	SubPhase            CombatSubPhase `json:"sub_phase"`
	PendingAttackerHits int            `json:"pending_attacker_hits"`
	PendingDefenderHits int            `json:"pending_defender_hits"`
	Submerged           []UnitID       `json:"submerged,omitempty"`
	RetreatOptions      []RegionID     `json:"retreat_options,omitempty"`
	Amphibious          bool           `json:"amphibious,omitempty"`
	Bombarders          []UnitID       `json:"bombarders,omitempty"`
	AttackerSurprise    bool           `json:"attacker_surprise,omitempty"`
	DefenderSurprise    bool           `json:"defender_surprise,omitempty"`
}

// Clone returns a deep copy.
func (c *ActiveCombat) Clone() *ActiveCombat {
	out := *c
	out.AttackerUnits = slices.Clone(c.AttackerUnits)
	out.DefenderUnits = slices.Clone(c.DefenderUnits)
	out.Submerged = slices.Clone(c.Submerged)
	out.RetreatOptions = slices.Clone(c.RetreatOptions)
	out.Bombarders = slices.Clone(c.Bombarders)
	return &out
}

// ActiveAttackers returns the attacking unit IDs that have not submerged.
func (c *ActiveCombat) ActiveAttackers() []UnitID {
	var out []UnitID
	for _, id := range c.AttackerUnits {
		if !slices.Contains(c.Submerged, id) {
			out = append(out, id)
		}
	}
	return out
}

// units resolves IDs to the unit values at the battle location.
func (c *ActiveCombat) units(gs *GameState, ids []UnitID) []Unit {
	var out []Unit
	for _, u := range gs.Units(c.Location) {
		if slices.Contains(ids, u.ID) {
			out = append(out, u)
		}
	}
	// keep the combat list order, which drives artillery pairing
	slices.SortStableFunc(out, func(a, b Unit) int {
		return slices.Index(ids, a.ID) - slices.Index(ids, b.ID)
	})
	return out
}

func (c *ActiveCombat) attackers(gs *GameState) []Unit { return c.units(gs, c.ActiveAttackers()) }
func (c *ActiveCombat) defenders(gs *GameState) []Unit { return c.units(gs, c.DefenderUnits) }

func hasType(units []Unit, pred func(Unit) bool) bool {
	return slices.ContainsFunc(units, pred)
}

func isAir(u Unit) bool       { return u.Domain() == DomainAir }
func isSub(u Unit) bool       { return u.Stats().Has(AbilitySubmarine) }
func isDestroyer(u Unit) bool { return u.Stats().Has(AbilityAntiSubmarine) }
func isAAA(u Unit) bool       { return u.Stats().Has(AbilityAntiAir) }

// stageApplies reports whether a firing step happens given the current forces.
func (c *ActiveCombat) stageApplies(gs *GameState, stage CombatSubPhase) bool {
	att, def := c.attackers(gs), c.defenders(gs)
	switch stage {
	case SubPhaseAAFire:
		return c.Round == 1 && c.Location.IsLand() && hasType(def, isAAA) && hasType(att, isAir)
	case SubPhaseShoreBombardment:
		return c.Round == 1 && c.Amphibious && len(c.Bombarders) > 0
	case SubPhaseAttackerSubmarineStrike:
		return hasType(att, isSub) && !hasType(def, isDestroyer)
	case SubPhaseDefenderSubmarineStrike:
		return hasType(def, isSub) && !hasType(att, isDestroyer)
	}
	return true
}

// advance moves to the first applicable firing step after the given one, or
// to BattleOver when a side has been wiped out.
func (c *ActiveCombat) advance(gs *GameState, after CombatSubPhase) {
	if c.finished(gs) {
		c.SubPhase = SubPhaseBattleOver
		return
	}
	start := 0
	if after != "" {
		start = slices.Index(roundStages, after) + 1
	}
	for _, stage := range roundStages[start:] {
		if c.stageApplies(gs, stage) {
			c.SubPhase = stage
			return
		}
	}
	c.SubPhase = SubPhaseAttackerRolls
}

// endRound goes to the attacker's decision, or ends the battle.
func (c *ActiveCombat) endRound(gs *GameState) {
	if c.finished(gs) {
		c.SubPhase = SubPhaseBattleOver
		return
	}
	c.SubPhase = SubPhaseAttackerDecision
}

func (c *ActiveCombat) finished(gs *GameState) bool {
	return len(c.attackers(gs)) == 0 || len(c.defenders(gs)) == 0
}

// startBattle builds the active combat for a pending battle location.
func startBattle(gs *GameState, m Map, loc RegionID) *ActiveCombat {
	attacker := gs.CurrentPower
	cs := gs.PhaseState.Combat
	c := &ActiveCombat{Location: loc, Attacker: attacker, Round: 1}
	for _, u := range gs.Units(loc) {
		switch {
		case u.Owner == attacker:
			if !slices.Contains(cs.Raiders, u.ID) {
				c.AttackerUnits = append(c.AttackerUnits, u.ID)
			}
		case gs.AtWar(attacker, u.Owner):
			c.DefenderUnits = append(c.DefenderUnits, u.ID)
			if c.Defender == Neutral {
				c.Defender = u.Owner
			}
		}
	}
	if loc.IsLand() {
		if owner := gs.Territory(loc.Territory()).Owner; gs.AtWar(attacker, owner) {
			c.Defender = owner
		}
	}

	for _, mv := range cs.Arrivals {
		if mv.To != loc || !slices.Contains(c.AttackerUnits, mv.UnitID) {
			continue
		}
		if mv.Amphibious {
			c.Amphibious = true
			zone := mv.Path[1]
			if !gs.HasEnemyUnits(zone, attacker) {
				for _, s := range gs.Units(zone) {
					if s.Owner == attacker && s.Stats().Bombard > 0 && !slices.Contains(c.Bombarders, s.ID) {
						c.Bombarders = append(c.Bombarders, s.ID)
					}
				}
			}
		}
		if v := mv.Via; v != loc && v.Kind == loc.Kind && !slices.Contains(c.RetreatOptions, v) && retreatSafe(gs, v, attacker) {
			c.RetreatOptions = append(c.RetreatOptions, v)
		}
	}
	c.advance(gs, "")
	return c
}

func retreatSafe(gs *GameState, r RegionID, p Power) bool {
	if gs.HasEnemyUnits(r, p) {
		return false
	}
	if r.IsLand() {
		return gs.Friendly(p, gs.Territory(r.Territory()).Owner)
	}
	return true
}

// pendingBattles lists regions holding a unit of p that moved this turn and
// a unit at war with p, in board order.
func pendingBattles(gs *GameState, p Power) []RegionID {
	var out []RegionID
	check := func(r RegionID) {
		if contested(gs, r, p, nil) {
			out = append(out, r)
		}
	}
	for i := range gs.Territories {
		check(Land(TerritoryID(i)))
	}
	for i := range gs.SeaZones {
		check(Sea(SeaZoneID(i)))
	}
	return out
}

// casualtyRule returns which side chooses and which of its units are eligible.
func (c *ActiveCombat) casualtyRule(gs *GameState) (attackerSide bool, eligible []Unit, pending int) {
	switch c.SubPhase {
	case SubPhaseAAFireCasualties:
		return true, filterUnits(c.attackers(gs), isAir), c.PendingAttackerHits
	case SubPhaseAttackerSubmarineStrikeCasualties:
		return true, filterUnits(c.attackers(gs), notAir), c.PendingAttackerHits
	case SubPhaseAttackerSelectsCasualties:
		return true, c.attackers(gs), c.PendingAttackerHits
	case SubPhaseDefenderSubmarineStrikeCasualties:
		return false, filterUnits(c.defenders(gs), notAir), c.PendingDefenderHits
	}
	return false, c.defenders(gs), c.PendingDefenderHits
}

func notAir(u Unit) bool { return !isAir(u) }

func filterUnits(units []Unit, keep func(Unit) bool) []Unit {
	var out []Unit
	for _, u := range units {
		if keep(u) {
			out = append(out, u)
		}
	}
	return out
}

// requiredCasualties is how many units must be chosen in the current step.
func (c *ActiveCombat) requiredCasualties(gs *GameState) int {
	_, eligible, pending := c.casualtyRule(gs)
	return min(pending, len(eligible))
}

func validateCasualties(gs *GameState, c *ActiveCombat, ids []UnitID) error {
	_, eligible, _ := c.casualtyRule(gs)
	want := c.requiredCasualties(gs)
	if len(ids) != want {
		return invalidAction("must select exactly %d casualties, got %d", want, len(ids))
	}
	seen := make(map[UnitID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return invalidAction("unit %d selected twice", id)
		}
		seen[id] = true
		if !slices.ContainsFunc(eligible, func(u Unit) bool { return u.ID == id }) {
			return invalidAction("unit %d cannot be taken as a casualty now", id)
		}
	}
	return nil
}

// applyCasualties damages or destroys the chosen units and moves to the next step.
func applyCasualties(gs *GameState, m Map, c *ActiveCombat, ids []UnitID) []Event {
	attackerSide, _, _ := c.casualtyRule(gs)
	var destroyed []UnitID
	for _, id := range ids {
		u := gs.unitPtr(id)
		u.Hits++
		if u.HitsLeft() <= 0 {
			destroyed = append(destroyed, id)
		}
	}
	for _, id := range destroyed {
		gs.removeUnit(id)
		c.AttackerUnits = slices.DeleteFunc(c.AttackerUnits, func(x UnitID) bool { return x == id })
		c.DefenderUnits = slices.DeleteFunc(c.DefenderUnits, func(x UnitID) bool { return x == id })
		c.Submerged = slices.DeleteFunc(c.Submerged, func(x UnitID) bool { return x == id })
	}
	side := c.Defender
	if attackerSide {
		side = c.Attacker
		c.PendingAttackerHits = 0
	} else {
		c.PendingDefenderHits = 0
	}
	events := []Event{{Type: EventCasualtiesTaken, Power: side, Location: c.Location, Units: slices.Clone(ids), Count: len(destroyed)}}

	switch c.SubPhase {
	case SubPhaseAAFireCasualties:
		c.advance(gs, SubPhaseAAFire)
	case SubPhaseShoreBombardmentCasualties:
		c.advance(gs, SubPhaseShoreBombardment)
	case SubPhaseDefenderSubmarineStrikeCasualties:
		c.advance(gs, SubPhaseAttackerSubmarineStrike)
	case SubPhaseAttackerSubmarineStrikeCasualties:
		c.advance(gs, SubPhaseDefenderSubmarineStrike)
	case SubPhaseDefenderSelectsCasualties:
		if c.PendingAttackerHits > 0 && len(c.attackers(gs)) > 0 {
			c.SubPhase = SubPhaseAttackerSelectsCasualties
		} else {
			c.endRound(gs)
		}
	default:
		c.endRound(gs)
	}
	return append(events, settleBattle(gs, m)...)
}

// settleBattle resolves the active combat once it reaches BattleOver.
func settleBattle(gs *GameState, m Map) []Event {
	cs := gs.PhaseState.Combat
	c := cs.Active
	if c == nil || c.SubPhase != SubPhaseBattleOver {
		return nil
	}
	att := c.attackers(gs)
	won := len(c.defenders(gs)) == 0 && len(att) > 0
	events := []Event{{Type: EventBattleEnded, Location: c.Location, Power: c.Attacker, Target: c.Defender, Won: won}}
	if won && c.Location.IsLand() && hasType(att, func(u Unit) bool { return u.Domain() == DomainLand }) {
		events = append(events, captureTerritory(gs, m, c.Location.Territory(), c.Attacker)...)
	}
	cs.PendingBattles = slices.DeleteFunc(cs.PendingBattles, func(r RegionID) bool { return r == c.Location })
	cs.ResolvedBattles = append(cs.ResolvedBattles, c.Location)
	cs.CurrentBattle = nil
	cs.Active = nil
	return append(events, checkVictory(gs, m)...)
}

// retreat moves every active attacker to the chosen region and ends the battle.
func retreat(gs *GameState, m Map, c *ActiveCombat, to RegionID) []Event {
	for _, id := range c.ActiveAttackers() {
		u, _, _, _ := gs.removeUnit(id)
		gs.addUnit(to, u)
	}
	c.AttackerUnits = slices.Clone(c.Submerged)
	c.SubPhase = SubPhaseBattleOver
	return settleBattle(gs, m)
}

// submerge takes one attacking submarine out of the battle.
func submerge(gs *GameState, m Map, c *ActiveCombat, id UnitID) []Event {
	c.Submerged = append(c.Submerged, id)
	if len(c.ActiveAttackers()) == 0 {
		c.SubPhase = SubPhaseBattleOver
		return settleBattle(gs, m)
	}
	return nil
}

// continueRound starts the next round of the active combat.
func continueRound(gs *GameState, c *ActiveCombat) {
	c.Round++
	c.AttackerSurprise = false
	c.DefenderSurprise = false
	c.advance(gs, SubPhaseShoreBombardment)
}

// resolveUncontested captures empty enemy territories that p's land units
// entered or blitzed through during combat movement.
func resolveUncontested(gs *GameState, m Map, p Power, moves []PlannedMove) []Event {
	var events []Event
	for _, mv := range moves {
		u, loc, ok := gs.FindUnit(mv.UnitID)
		if !ok || u.Domain() != DomainLand || loc != mv.To {
			continue
		}
		for _, r := range mv.Path[1:] {
			if r.IsSea() {
				continue
			}
			t := gs.Territory(r.Territory())
			if gs.AtWar(p, t.Owner) && !gs.HasEnemyUnits(r, p) {
				events = append(events, captureTerritory(gs, m, r.Territory(), p)...)
			}
		}
	}
	return events
}
