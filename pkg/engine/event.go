package engine

// EventType names a narrative game event.
type EventType string

const (
	EventPhaseChanged       EventType = "phase_changed"
	EventTurnChanged        EventType = "turn_changed"
	EventUnitsPurchased     EventType = "units_purchased"
	EventFacilityRepaired   EventType = "facility_repaired"
	EventFacilityDamaged    EventType = "facility_damaged"
	EventUnitMoved          EventType = "unit_moved"
	EventBattleStarted      EventType = "battle_started"
	EventDiceRolled         EventType = "dice_rolled"
	EventCasualtiesTaken    EventType = "casualties_taken"
	EventBattleEnded        EventType = "battle_ended"
	EventTerritoryCaptured  EventType = "territory_captured"
	EventCapitalCaptured    EventType = "capital_captured"
	EventTerritoryLiberated EventType = "territory_liberated"
	EventUnitsPlaced        EventType = "units_placed"
	EventConvoyDisrupted    EventType = "convoy_disrupted"
	EventIncomeCollected    EventType = "income_collected"
	EventWarDeclared        EventType = "war_declared"
	EventVictoryAchieved    EventType = "victory_achieved"
	EventActionUndone       EventType = "action_undone"
)

// Event describes something that happened while applying an action. Events
// are for presentation only; state never depends on them.
type Event struct {
	Type      EventType   `json:"type"`
	Power     Power       `json:"power,omitempty"`
	Target    Power       `json:"target,omitempty"`
	From      Phase       `json:"from,omitempty"`
	To        Phase       `json:"to,omitempty"`
	Turn      int         `json:"turn,omitempty"`
	Location  RegionID    `json:"location,omitzero"`
	Territory TerritoryID `json:"territory,omitempty"`
	UnitType  UnitType    `json:"unit_type,omitempty"`
	UnitID    UnitID      `json:"unit_id,omitempty"`
	Units     []UnitID    `json:"units,omitempty"`
	Count     int         `json:"count,omitempty"`
	Amount    int         `json:"amount,omitempty"`
	Rolls     []int       `json:"rolls,omitempty"`
	Hits      int         `json:"hits,omitempty"`
	Won       bool        `json:"won,omitempty"`
	Winner    Team        `json:"winner,omitempty"`
	Action    ActionType  `json:"action,omitempty"`
}
