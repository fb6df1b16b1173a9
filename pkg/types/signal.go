package types

// Action represents the type of trading action a signal recommends.
type Action int

const (
	ActionHold Action = iota
	ActionBuy
	ActionSell
)

func (a Action) String() string {
	switch a {
	case ActionHold:
		return "HOLD"
	case ActionBuy:
		return "BUY"
	case ActionSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Direction constrains which side of the market a genotype may trade.
type Direction int

const (
	DirectionBoth Direction = iota
	DirectionLong
	DirectionShort
)

func (d Direction) String() string {
	switch d {
	case DirectionLong:
		return "LONG"
	case DirectionShort:
		return "SHORT"
	case DirectionBoth:
		return "BOTH"
	default:
		return "UNKNOWN"
	}
}

// ParseDirection maps a persisted direction string back to its enum value.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "LONG":
		return DirectionLong, true
	case "SHORT":
		return DirectionShort, true
	case "BOTH":
		return DirectionBoth, true
	default:
		return DirectionBoth, false
	}
}

// Family is the explicit behavioral tag of a genotype, set at construction
// time and never inferred from display names.
type Family int

const (
	FamilyTrendFollow Family = iota
	FamilyMeanRevert
	FamilyMomentum
	FamilyConfluence
	FamilyPullback
)

// Families lists all known families in jury panel priority order.
var Families = []Family{
	FamilyTrendFollow,
	FamilyMeanRevert,
	FamilyMomentum,
	FamilyConfluence,
	FamilyPullback,
}

func (f Family) String() string {
	switch f {
	case FamilyTrendFollow:
		return "TrendFollow"
	case FamilyMeanRevert:
		return "MeanRevert"
	case FamilyMomentum:
		return "Momentum"
	case FamilyConfluence:
		return "Confluence"
	case FamilyPullback:
		return "Pullback"
	default:
		return "Unknown"
	}
}

// ParseFamily maps a persisted family string back to its enum value.
// The boolean is false for families this build no longer knows about.
func ParseFamily(s string) (Family, bool) {
	for _, f := range Families {
		if f.String() == s {
			return f, true
		}
	}
	return FamilyTrendFollow, false
}
