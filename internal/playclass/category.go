package playclass

// Category identifies a productive-out play type.
type Category int

const (
	CategoryNone Category = iota
	CategoryRBIGroundout
	CategoryRBIFlyout
	CategorySacFly
	CategorySacBunt
	CategoryForceOutRBI
	CategoryFieldersChoiceRBI
)

var categoryNames = map[Category]string{
	CategoryNone:              "none",
	CategoryRBIGroundout:      "rbi_groundout",
	CategoryRBIFlyout:         "rbi_flyout",
	CategorySacFly:            "sac_fly",
	CategorySacBunt:           "sac_bunt",
	CategoryForceOutRBI:       "force_out_rbi",
	CategoryFieldersChoiceRBI: "fielders_choice_rbi",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "none"
}

// IsSacrifice reports whether the category is a sacrifice play.
func (c Category) IsSacrifice() bool {
	return c == CategorySacFly || c == CategorySacBunt
}

// VideoPattern returns the words a highlight clip's metadata tends to carry
// for this category. Used for category bonuses and fallback matching.
func (c Category) VideoPattern() []string {
	switch c {
	case CategoryRBIGroundout:
		return []string{"rbi", "groundout"}
	case CategoryRBIFlyout:
		return []string{"rbi", "flyout"}
	case CategorySacFly:
		return []string{"sacrifice", "fly"}
	case CategorySacBunt:
		return []string{"sacrifice", "bunt"}
	case CategoryForceOutRBI:
		return []string{"force", "out"}
	case CategoryFieldersChoiceRBI:
		return []string{"fielders", "choice"}
	default:
		return nil
	}
}
