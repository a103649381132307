package engine

// attackValues returns each attacker's hit threshold. Infantry and
// mechanized infantry are paired one-to-one with artillery in list order;
// tactical bombers gain +1 alongside a tank or fighter.
func attackValues(units []Unit) []int {
	support := 0
	boost := false
	for _, u := range units {
		if u.Stats().Has(AbilityArtillerySupport) {
			support++
		}
		if u.Type == Tank || u.Type == Fighter {
			boost = true
		}
	}
	vals := make([]int, len(units))
	for i, u := range units {
		s := u.Stats()
		v := s.Attack
		if s.Has(AbilitySupported) && support > 0 {
			v++
			support--
		}
		if s.Has(AbilityTacticalBoost) && boost {
			v++
		}
		vals[i] = v
	}
	return vals
}

func defenseValues(units []Unit) []int {
	vals := make([]int, len(units))
	for i, u := range units {
		vals[i] = u.Stats().Defense
	}
	return vals
}

// rollAgainst rolls one die per unit with a positive value and counts hits.
func rollAgainst(d *Dice, vals []int) (rolls []int, hits int) {
	for _, v := range vals {
		if v <= 0 {
			continue
		}
		r := d.Roll()
		rolls = append(rolls, r)
		if r <= v {
			hits++
		}
	}
	return rolls, hits
}

func diceEvent(c *ActiveCombat, side Power, rolls []int, hits int) Event {
	return Event{Type: EventDiceRolled, Power: side, Location: c.Location, Rolls: rolls, Hits: hits}
}

// rollAttack resolves the attacker-driven firing steps.
func rollAttack(gs *GameState, m Map, d *Dice, c *ActiveCombat) []Event {
	var events []Event
	switch c.SubPhase {
	case SubPhaseAAFire:
		air := filterUnits(c.attackers(gs), isAir)
		guns := len(filterUnits(c.defenders(gs), isAAA))
		shots := min(3*guns, len(air))
		rolls := d.RollN(shots)
		hits := CountHits(rolls, 1)
		events = append(events, diceEvent(c, c.Defender, rolls, hits))
		if hits > 0 {
			c.PendingAttackerHits = hits
			c.SubPhase = SubPhaseAAFireCasualties
		} else {
			c.advance(gs, SubPhaseAAFire)
		}

	case SubPhaseShoreBombardment:
		var vals []int
		for _, id := range c.Bombarders {
			if u, _, ok := gs.FindUnit(id); ok {
				vals = append(vals, u.Stats().Bombard)
			}
		}
		rolls, hits := rollAgainst(d, vals)
		events = append(events, diceEvent(c, c.Attacker, rolls, hits))
		hits = min(hits, len(c.defenders(gs)))
		if hits > 0 {
			c.PendingDefenderHits = hits
			c.SubPhase = SubPhaseShoreBombardmentCasualties
		} else {
			c.advance(gs, SubPhaseShoreBombardment)
		}

	case SubPhaseAttackerSubmarineStrike:
		subs := filterUnits(c.attackers(gs), isSub)
		rolls, hits := rollAgainst(d, attackValues(subs))
		events = append(events, diceEvent(c, c.Attacker, rolls, hits))
		c.AttackerSurprise = true
		hits = min(hits, len(filterUnits(c.defenders(gs), notAir)))
		if hits > 0 {
			c.PendingDefenderHits = hits
			c.SubPhase = SubPhaseDefenderSubmarineStrikeCasualties
		} else {
			c.advance(gs, SubPhaseAttackerSubmarineStrike)
		}

	case SubPhaseAttackerRolls:
		units := c.attackers(gs)
		if c.AttackerSurprise {
			units = filterUnits(units, func(u Unit) bool { return !isSub(u) })
		}
		rolls, hits := rollAgainst(d, attackValues(units))
		events = append(events, diceEvent(c, c.Attacker, rolls, hits))
		c.PendingDefenderHits = min(hits, len(c.defenders(gs)))
		c.SubPhase = SubPhaseDefenderRolls
	}
	return append(events, settleBattle(gs, m)...)
}

// rollDefense resolves the defender-driven firing steps.
func rollDefense(gs *GameState, m Map, d *Dice, c *ActiveCombat) []Event {
	var events []Event
	switch c.SubPhase {
	case SubPhaseDefenderSubmarineStrike:
		subs := filterUnits(c.defenders(gs), isSub)
		rolls, hits := rollAgainst(d, defenseValues(subs))
		events = append(events, diceEvent(c, c.Defender, rolls, hits))
		c.DefenderSurprise = true
		hits = min(hits, len(filterUnits(c.attackers(gs), notAir)))
		if hits > 0 {
			c.PendingAttackerHits = hits
			c.SubPhase = SubPhaseAttackerSubmarineStrikeCasualties
		} else {
			c.advance(gs, SubPhaseDefenderSubmarineStrike)
		}

	case SubPhaseDefenderRolls:
		units := c.defenders(gs)
		if c.DefenderSurprise {
			units = filterUnits(units, func(u Unit) bool { return !isSub(u) })
		}
		rolls, hits := rollAgainst(d, defenseValues(units))
		events = append(events, diceEvent(c, c.Defender, rolls, hits))
		c.PendingAttackerHits = min(hits, len(c.attackers(gs)))
		switch {
		case c.PendingDefenderHits > 0:
			c.SubPhase = SubPhaseDefenderSelectsCasualties
		case c.PendingAttackerHits > 0:
			c.SubPhase = SubPhaseAttackerSelectsCasualties
		default:
			c.endRound(gs)
		}
	}
	return append(events, settleBattle(gs, m)...)
}
