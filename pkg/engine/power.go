package engine

// Power represents one of the nine playable nations.
type Power string

const (
	Germany       Power = "germany"
	SovietUnion   Power = "soviet_union"
	Japan         Power = "japan"
	UnitedStates  Power = "united_states"
	China         Power = "china"
	UnitedKingdom Power = "united_kingdom"
	Italy         Power = "italy"
	ANZAC         Power = "anzac"
	France        Power = "france"
	Neutral       Power = ""
)

// Team is one of the two alliances.
type Team string

const (
	Axis   Team = "axis"
	Allies Team = "allies"
)

// TurnOrder is the fixed order in which powers take their turns.
var TurnOrder = []Power{Germany, SovietUnion, Japan, UnitedStates, China, UnitedKingdom, Italy, ANZAC, France}

// StartingIPCs is each power's treasury at the start of the game.
var StartingIPCs = map[Power]int{
	Germany:       30,
	SovietUnion:   37,
	Japan:         26,
	UnitedStates:  52,
	China:         12,
	UnitedKingdom: 28,
	Italy:         10,
	ANZAC:         10,
	France:        0,
}

var powerNames = map[Power]string{
	Germany:       "Germany",
	SovietUnion:   "Soviet Union",
	Japan:         "Japan",
	UnitedStates:  "United States",
	China:         "China",
	UnitedKingdom: "United Kingdom",
	Italy:         "Italy",
	ANZAC:         "ANZAC",
	France:        "France",
}

// Team returns the alliance the power belongs to.
func (p Power) Team() Team {
	switch p {
	case Germany, Japan, Italy:
		return Axis
	case Neutral:
		return ""
	}
	return Allies
}

// Index returns the power's position in TurnOrder, or -1 for unknown powers.
func (p Power) Index() int {
	for i, q := range TurnOrder {
		if q == p {
			return i
		}
	}
	return -1
}

// Valid reports whether p is one of the nine playable powers.
func (p Power) Valid() bool {
	return p.Index() >= 0
}

// Name returns the display name.
func (p Power) Name() string {
	if n, ok := powerNames[p]; ok {
		return n
	}
	return "Neutral"
}

// NextPower returns the power that plays after p.
func NextPower(p Power) Power {
	i := p.Index()
	if i < 0 {
		return TurnOrder[0]
	}
	return TurnOrder[(i+1)%len(TurnOrder)]
}
