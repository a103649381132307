package engine

import "slices"

func validatePurchase(gs *GameState, t UnitType, count int) error {
	if count <= 0 {
		return invalidAction("purchase count must be positive")
	}
	if !t.Valid() {
		return invalidAction("unknown unit type %q", t)
	}
	if gs.CurrentPower == China && t != Infantry {
		return invalidAction("China can only purchase infantry")
	}
	cost := StatsFor(t).Cost * count
	if have := gs.Power(gs.CurrentPower).IPCs; cost > have {
		return insufficientIPCs(cost, have)
	}
	return nil
}

// purchase spends IPCs immediately and adds to the purchase list. A negative
// count refunds, which is how RemovePurchase is applied. A new line goes to
// slot, or to the end when slot is negative. It returns the position of a
// line the refund emptied and deleted, or -1.
func purchase(gs *GameState, t UnitType, count, slot int) int {
	ps := gs.PhaseState.Purchase
	cost := StatsFor(t).Cost * count
	gs.Power(gs.CurrentPower).IPCs -= cost
	ps.IPCsSpent += cost
	var deleted int
	ps.Purchases, deleted = adjustLine(ps.Purchases, t, count, slot)
	return deleted
}

// adjustLine adds delta to the line for t, deleting it when it reaches zero
// and inserting a new line at slot (clamped; negative appends).
func adjustLine(lines []PurchaseLine, t UnitType, delta, slot int) ([]PurchaseLine, int) {
	for i := range lines {
		if lines[i].UnitType == t {
			lines[i].Count += delta
			if lines[i].Count <= 0 {
				return slices.Delete(lines, i, i+1), i
			}
			return lines, -1
		}
	}
	if delta <= 0 {
		return lines, -1
	}
	if slot < 0 || slot > len(lines) {
		slot = len(lines)
	}
	return slices.Insert(lines, slot, PurchaseLine{UnitType: t, Count: delta}), -1
}

func validateRemovePurchase(gs *GameState, t UnitType, count int) error {
	if count <= 0 {
		return invalidAction("remove count must be positive")
	}
	if have := gs.PhaseState.Purchase.Count(t); count > have {
		return invalidAction("cannot remove %d %s: only %d purchased", count, t, have)
	}
	return nil
}

// repairTarget picks the facility a repair applies to.
func repairTarget(t *TerritoryState, ft FacilityType) *Facility {
	for i := range t.Facilities {
		f := &t.Facilities[i]
		if ft == "" && f.Damage > 0 || ft != "" && f.Type == ft {
			return f
		}
	}
	return nil
}

func validateRepair(gs *GameState, m Map, a Action) error {
	t := gs.Territory(a.Territory)
	if t == nil {
		return territoryNotFound(a.Territory)
	}
	def, _ := m.Territory(a.Territory)
	if t.Owner != gs.CurrentPower {
		return invalidAction("you do not control %s", def.Name)
	}
	if a.Amount <= 0 {
		return invalidAction("repair amount must be positive")
	}
	f := repairTarget(t, a.Facility)
	if f == nil || f.Damage == 0 {
		return invalidAction("no damaged facility to repair in %s", def.Name)
	}
	if a.Amount > f.Damage {
		return invalidAction("repair of %d exceeds damage %d", a.Amount, f.Damage)
	}
	if have := gs.Power(gs.CurrentPower).IPCs; a.Amount > have {
		return insufficientIPCs(a.Amount, have)
	}
	return nil
}

// repair removes damage at 1 IPC per point and returns the exact inverse.
// A negative amount restores damage and refunds.
func repair(gs *GameState, a Action) Action {
	t := gs.Territory(a.Territory)
	f := repairTarget(t, a.Facility)
	f.SetDamage(f.Damage - a.Amount)
	gs.Power(gs.CurrentPower).IPCs -= a.Amount

	ps := gs.PhaseState.Purchase
	ps.IPCsSpent += a.Amount
	idx := slices.IndexFunc(ps.Repairs, func(r RepairLine) bool { return r.Territory == a.Territory })
	if idx < 0 {
		ps.Repairs = append(ps.Repairs, RepairLine{Territory: a.Territory, Amount: a.Amount})
	} else {
		ps.Repairs[idx].Amount += a.Amount
		if ps.Repairs[idx].Amount <= 0 {
			ps.Repairs = slices.Delete(ps.Repairs, idx, idx+1)
		}
	}
	return Action{Type: ActionRepairFacility, Territory: a.Territory, Facility: f.Type, Amount: -a.Amount}
}
