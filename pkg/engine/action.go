package engine

import (
	"fmt"
	"slices"
	"strings"
)

// ActionType names a player command.
type ActionType string

const (
	ActionPurchaseUnit             ActionType = "purchase_unit"
	ActionRemovePurchase           ActionType = "remove_purchase"
	ActionRepairFacility           ActionType = "repair_facility"
	ActionConfirmPurchases         ActionType = "confirm_purchases"
	ActionMoveUnit                 ActionType = "move_unit"
	ActionUndoMove                 ActionType = "undo_move"
	ActionConfirmCombatMovement    ActionType = "confirm_combat_movement"
	ActionBombingRaid              ActionType = "bombing_raid"
	ActionSelectBattle             ActionType = "select_battle"
	ActionRollAttack               ActionType = "roll_attack"
	ActionRollDefense              ActionType = "roll_defense"
	ActionSelectCasualties         ActionType = "select_casualties"
	ActionAttackerRetreat          ActionType = "attacker_retreat"
	ActionSubmergeSubmarine        ActionType = "submerge_submarine"
	ActionContinueCombat           ActionType = "continue_combat"
	ActionConfirmPhase             ActionType = "confirm_phase"
	ActionMoveUnitNonCombat        ActionType = "move_unit_non_combat"
	ActionLandAirUnit              ActionType = "land_air_unit"
	ActionConfirmNonCombatMovement ActionType = "confirm_non_combat_movement"
	ActionPlaceUnit                ActionType = "place_unit"
	ActionConfirmMobilization      ActionType = "confirm_mobilization"
	ActionConfirmIncome            ActionType = "confirm_income"
	ActionDeclareWar               ActionType = "declare_war"
	ActionUndo                     ActionType = "undo"

	// ActionUnplaceUnit only appears as the inverse of a PlaceUnit; players
	// cannot submit it.
	ActionUnplaceUnit ActionType = "unplace_unit"
)

// Action is a single player command. Only the fields used by Type are set.
type Action struct {
	Type       ActionType   `json:"type"`
	UnitType   UnitType     `json:"unit_type,omitempty"`
	Count      int          `json:"count,omitempty"`
	Territory  TerritoryID  `json:"territory,omitempty"`
	Facility   FacilityType `json:"facility,omitempty"`
	Amount     int          `json:"amount,omitempty"`
	UnitID     UnitID       `json:"unit_id,omitempty"`
	Path       []RegionID   `json:"path,omitempty"`
	Location   RegionID     `json:"location,omitzero"`
	Casualties []UnitID     `json:"casualties,omitempty"`
	Against    Power        `json:"against,omitempty"`

	// Slot is only set on inverse actions: the list position a line that the
	// forward action deleted goes back to.
	Slot *int `json:"slot,omitempty"`
}

func PurchaseUnit(t UnitType, count int) Action {
	return Action{Type: ActionPurchaseUnit, UnitType: t, Count: count}
}

func RemovePurchase(t UnitType, count int) Action {
	return Action{Type: ActionRemovePurchase, UnitType: t, Count: count}
}

// RepairFacility repairs amount damage points. An empty facility type
// repairs the first damaged facility in the territory.
func RepairFacility(t TerritoryID, ft FacilityType, amount int) Action {
	return Action{Type: ActionRepairFacility, Territory: t, Facility: ft, Amount: amount}
}

func MoveUnit(id UnitID, path ...RegionID) Action {
	return Action{Type: ActionMoveUnit, UnitID: id, Path: path}
}

// withSlot returns a with Slot set when idx is a deleted line's position.
func withSlot(a Action, idx int) Action {
	if idx >= 0 {
		a.Slot = &idx
	}
	return a
}

func slotOf(a Action) int {
	if a.Slot == nil {
		return -1
	}
	return *a.Slot
}

func UndoMove(id UnitID) Action {
	return Action{Type: ActionUndoMove, UnitID: id}
}

// BombingRaid sends the bombers over t against a facility. An empty facility
// type targets the industrial complex.
func BombingRaid(t TerritoryID, ft FacilityType) Action {
	return Action{Type: ActionBombingRaid, Territory: t, Facility: ft}
}

func SelectBattle(r RegionID) Action {
	return Action{Type: ActionSelectBattle, Location: r}
}

func SelectCasualties(ids ...UnitID) Action {
	return Action{Type: ActionSelectCasualties, Casualties: ids}
}

func AttackerRetreat(to RegionID) Action {
	return Action{Type: ActionAttackerRetreat, Location: to}
}

func SubmergeSubmarine(id UnitID) Action {
	return Action{Type: ActionSubmergeSubmarine, UnitID: id}
}

func MoveUnitNonCombat(id UnitID, path ...RegionID) Action {
	return Action{Type: ActionMoveUnitNonCombat, UnitID: id, Path: path}
}

func LandAirUnit(id UnitID, dest RegionID) Action {
	return Action{Type: ActionLandAirUnit, UnitID: id, Location: dest}
}

func PlaceUnit(t UnitType, territory TerritoryID) Action {
	return Action{Type: ActionPlaceUnit, UnitType: t, Territory: territory}
}

func DeclareWar(against Power) Action {
	return Action{Type: ActionDeclareWar, Against: against}
}

// Simple returns a parameterless action of the given type, such as a confirm,
// a roll, ContinueCombat or Undo.
func Simple(t ActionType) Action {
	return Action{Type: t}
}

// Clone returns a copy that shares no slices with a.
func (a Action) Clone() Action {
	a.Path = slices.Clone(a.Path)
	a.Casualties = slices.Clone(a.Casualties)
	if a.Slot != nil {
		s := *a.Slot
		a.Slot = &s
	}
	return a
}

// String renders a compact human-readable form for logs and history views.
func (a Action) String() string {
	switch a.Type {
	case ActionPurchaseUnit, ActionRemovePurchase:
		return fmt.Sprintf("%s %d %s", a.Type, a.Count, a.UnitType)
	case ActionRepairFacility:
		return fmt.Sprintf("%s L%d %d", a.Type, a.Territory, a.Amount)
	case ActionBombingRaid:
		return fmt.Sprintf("%s L%d %s", a.Type, a.Territory, a.Facility)
	case ActionMoveUnit, ActionMoveUnitNonCombat:
		parts := make([]string, len(a.Path))
		for i, r := range a.Path {
			parts[i] = r.String()
		}
		return fmt.Sprintf("%s #%d %s", a.Type, a.UnitID, strings.Join(parts, "-"))
	case ActionUndoMove, ActionSubmergeSubmarine, ActionUnplaceUnit:
		return fmt.Sprintf("%s #%d", a.Type, a.UnitID)
	case ActionLandAirUnit:
		return fmt.Sprintf("%s #%d %s", a.Type, a.UnitID, a.Location)
	case ActionSelectBattle, ActionAttackerRetreat:
		return fmt.Sprintf("%s %s", a.Type, a.Location)
	case ActionSelectCasualties:
		return fmt.Sprintf("%s %v", a.Type, a.Casualties)
	case ActionPlaceUnit:
		return fmt.Sprintf("%s %s L%d", a.Type, a.UnitType, a.Territory)
	case ActionDeclareWar:
		return fmt.Sprintf("%s %s", a.Type, a.Against)
	}
	return string(a.Type)
}

// InverseKind says how a logged action is reversed.
type InverseKind string

const (
	InverseSimple          InverseKind = "simple"
	InverseRestoreSnapshot InverseKind = "restore_snapshot"
	InverseIrreversible    InverseKind = "irreversible"
)

// Inverse is the recipe for reversing a logged action.
type Inverse struct {
	Kind     InverseKind `json:"kind"`
	Action   *Action     `json:"action,omitempty"`
	Snapshot []byte      `json:"snapshot,omitempty"`
}

func simpleInverse(a Action) Inverse {
	return Inverse{Kind: InverseSimple, Action: &a}
}

func irreversible() Inverse {
	return Inverse{Kind: InverseIrreversible}
}

func (inv Inverse) clone() Inverse {
	if inv.Action != nil {
		a := inv.Action.Clone()
		inv.Action = &a
	}
	inv.Snapshot = slices.Clone(inv.Snapshot)
	return inv
}
