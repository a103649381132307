package engine

import "slices"

// Phase is one step of a power's turn.
type Phase string

const (
	PhasePurchase          Phase = "purchase_and_repair"
	PhaseCombatMovement    Phase = "combat_movement"
	PhaseConductCombat     Phase = "conduct_combat"
	PhaseNonCombatMovement Phase = "non_combat_movement"
	PhaseMobilize          Phase = "mobilize"
	PhaseCollectIncome     Phase = "collect_income"
)

// Phases lists the turn's phases in order.
var Phases = []Phase{PhasePurchase, PhaseCombatMovement, PhaseConductCombat, PhaseNonCombatMovement, PhaseMobilize, PhaseCollectIncome}

var phaseNames = map[Phase]string{
	PhasePurchase:          "Purchase & Repair",
	PhaseCombatMovement:    "Combat Movement",
	PhaseConductCombat:     "Conduct Combat",
	PhaseNonCombatMovement: "Non-Combat Movement",
	PhaseMobilize:          "Mobilize New Units",
	PhaseCollectIncome:     "Collect Income",
}

// Next returns the following phase and whether the turn passes to the next power.
func (p Phase) Next() (Phase, bool) {
	i := slices.Index(Phases, p)
	if i < 0 || i == len(Phases)-1 {
		return PhasePurchase, true
	}
	return Phases[i+1], false
}

// Name returns the display name.
func (p Phase) Name() string {
	if n, ok := phaseNames[p]; ok {
		return n
	}
	return string(p)
}

// PurchaseLine is a queued or outstanding count of one unit type.
type PurchaseLine struct {
	UnitType UnitType `json:"unit_type"`
	Count    int      `json:"count"`
}

// RepairLine records IPCs spent repairing a territory's facility.
type RepairLine struct {
	Territory TerritoryID `json:"territory"`
	Amount    int         `json:"amount"`
}

// PurchaseState is phase-local data for Purchase & Repair.
type PurchaseState struct {
	Purchases []PurchaseLine `json:"purchases"`
	Repairs   []RepairLine   `json:"repairs"`
	IPCsSpent int            `json:"ipcs_spent"`
}

// Count returns how many units of t are queued.
func (s *PurchaseState) Count(t UnitType) int {
	for _, l := range s.Purchases {
		if l.UnitType == t {
			return l.Count
		}
	}
	return 0
}

// PlannedMove is one unit's move within a movement phase.
type PlannedMove struct {
	UnitID     UnitID     `json:"unit_id"`
	From       RegionID   `json:"from"`
	To         RegionID   `json:"to"`
	Path       []RegionID `json:"path"`
	Via        RegionID   `json:"via"`
	Amphibious bool       `json:"amphibious,omitempty"`
	Movement   int        `json:"movement"`
	FromIndex  int        `json:"from_index"`
}

// MovementState is phase-local data for both movement phases.
type MovementState struct {
	Moves []PlannedMove `json:"moves"`
}

// Find returns the planned move for a unit, or nil.
func (s *MovementState) Find(id UnitID) *PlannedMove {
	for i := range s.Moves {
		if s.Moves[i].UnitID == id {
			return &s.Moves[i]
		}
	}
	return nil
}

func (s *MovementState) remove(id UnitID) {
	s.Moves = slices.DeleteFunc(s.Moves, func(m PlannedMove) bool { return m.UnitID == id })
}

// CombatState is phase-local data for Conduct Combat.
type CombatState struct {
	PendingBattles  []RegionID    `json:"pending_battles"`
	ResolvedBattles []RegionID    `json:"resolved_battles"`
	CurrentBattle   *RegionID     `json:"current_battle,omitempty"`
	Active          *ActiveCombat `json:"active,omitempty"`
	Arrivals        []PlannedMove `json:"arrivals,omitempty"`
	Raids           []TerritoryID `json:"raids,omitempty"`
	// Raiders are the surviving bombers and escorts of this turn's raids.
	// They sit out general combat.
	Raiders []UnitID `json:"raiders,omitempty"`
}

// PlacedUnit records one mobilized unit.
type PlacedUnit struct {
	UnitID    UnitID      `json:"unit_id"`
	UnitType  UnitType    `json:"unit_type"`
	Territory TerritoryID `json:"territory"`
}

// MobilizeState is phase-local data for Mobilize New Units.
type MobilizeState struct {
	ToPlace []PurchaseLine `json:"to_place"`
	Placed  []PlacedUnit   `json:"placed"`
}

// Remaining returns how many units of t are still waiting to be placed.
func (s *MobilizeState) Remaining(t UnitType) int {
	for _, l := range s.ToPlace {
		if l.UnitType == t {
			return l.Count
		}
	}
	return 0
}

// RemainingTotal returns the number of units still waiting to be placed.
func (s *MobilizeState) RemainingTotal() int {
	n := 0
	for _, l := range s.ToPlace {
		n += l.Count
	}
	return n
}

// PlacedIn returns how many units were placed in a territory this phase.
func (s *MobilizeState) PlacedIn(t TerritoryID) int {
	n := 0
	for _, p := range s.Placed {
		if p.Territory == t {
			n++
		}
	}
	return n
}

// IncomeState is phase-local data for Collect Income.
type IncomeState struct {
	Base         int `json:"base"`
	Objectives   int `json:"objectives"`
	ConvoyLosses int `json:"convoy_losses"`
	Total        int `json:"total"`
}

// PhaseState is a tagged union: Phase names the populated variant.
type PhaseState struct {
	Phase         Phase          `json:"phase"`
	Purchase      *PurchaseState `json:"purchase,omitempty"`
	CombatMove    *MovementState `json:"combat_move,omitempty"`
	Combat        *CombatState   `json:"combat,omitempty"`
	NonCombatMove *MovementState `json:"non_combat_move,omitempty"`
	Mobilize      *MobilizeState `json:"mobilize,omitempty"`
	Income        *IncomeState   `json:"income,omitempty"`
}

// NewPhaseState returns an empty state for p.
func NewPhaseState(p Phase) PhaseState {
	ps := PhaseState{Phase: p}
	switch p {
	case PhasePurchase:
		ps.Purchase = &PurchaseState{}
	case PhaseCombatMovement:
		ps.CombatMove = &MovementState{}
	case PhaseConductCombat:
		ps.Combat = &CombatState{}
	case PhaseNonCombatMovement:
		ps.NonCombatMove = &MovementState{}
	case PhaseMobilize:
		ps.Mobilize = &MobilizeState{}
	case PhaseCollectIncome:
		ps.Income = &IncomeState{}
	}
	return ps
}

// Movement returns the movement state of either movement phase, or nil.
func (ps *PhaseState) Movement() *MovementState {
	if ps.CombatMove != nil {
		return ps.CombatMove
	}
	return ps.NonCombatMove
}

// Clone returns a deep copy.
func (ps PhaseState) Clone() PhaseState {
	out := PhaseState{Phase: ps.Phase}
	if ps.Purchase != nil {
		out.Purchase = &PurchaseState{
			Purchases: slices.Clone(ps.Purchase.Purchases),
			Repairs:   slices.Clone(ps.Purchase.Repairs),
			IPCsSpent: ps.Purchase.IPCsSpent,
		}
	}
	if ps.CombatMove != nil {
		out.CombatMove = ps.CombatMove.clone()
	}
	if ps.NonCombatMove != nil {
		out.NonCombatMove = ps.NonCombatMove.clone()
	}
	if ps.Combat != nil {
		c := &CombatState{
			PendingBattles:  slices.Clone(ps.Combat.PendingBattles),
			ResolvedBattles: slices.Clone(ps.Combat.ResolvedBattles),
			Arrivals:        cloneMoves(ps.Combat.Arrivals),
			Raids:           slices.Clone(ps.Combat.Raids),
			Raiders:         slices.Clone(ps.Combat.Raiders),
		}
		if ps.Combat.CurrentBattle != nil {
			r := *ps.Combat.CurrentBattle
			c.CurrentBattle = &r
		}
		if ps.Combat.Active != nil {
			c.Active = ps.Combat.Active.Clone()
		}
		out.Combat = c
	}
	if ps.Mobilize != nil {
		out.Mobilize = &MobilizeState{
			ToPlace: slices.Clone(ps.Mobilize.ToPlace),
			Placed:  slices.Clone(ps.Mobilize.Placed),
		}
	}
	if ps.Income != nil {
		inc := *ps.Income
		out.Income = &inc
	}
	return out
}

func (s *MovementState) clone() *MovementState {
	return &MovementState{Moves: cloneMoves(s.Moves)}
}

func cloneMoves(moves []PlannedMove) []PlannedMove {
	if moves == nil {
		return nil
	}
	out := make([]PlannedMove, len(moves))
	for i, m := range moves {
		m.Path = slices.Clone(m.Path)
		out[i] = m
	}
	return out
}
