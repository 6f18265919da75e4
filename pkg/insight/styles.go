package insight

// Style is the fixed visual descriptor attached to every insight of a kind.
type Style struct {
	// Icon is a display icon token.
	Icon string

	// Gradient is a two-color gradient token pair.
	Gradient [2]string
}

// styles maps each insight kind to its fixed visual style.
// Pure lookup data, no business logic.
var styles = map[Kind]Style{
	KindWelcome:       {Icon: "sparkles", Gradient: [2]string{"#8E7CF8", "#C9A7F5"}},
	KindOnThisDay:     {Icon: "calendar", Gradient: [2]string{"#F6A55C", "#F0738A"}},
	KindForgottenGem:  {Icon: "gem", Gradient: [2]string{"#5CC8F6", "#7C8EF8"}},
	KindPattern:       {Icon: "waveform", Gradient: [2]string{"#62D9A5", "#5CC8F6"}},
	KindNudge:         {Icon: "bell", Gradient: [2]string{"#F5C96A", "#F6A55C"}},
	KindMashup:        {Icon: "shuffle", Gradient: [2]string{"#F0738A", "#8E7CF8"}},
	KindQuestion:      {Icon: "question", Gradient: [2]string{"#7C8EF8", "#62D9A5"}},
	KindConnection:    {Icon: "link", Gradient: [2]string{"#C9A7F5", "#F0738A"}},
	KindIdeaSpark:     {Icon: "bolt", Gradient: [2]string{"#F5C96A", "#62D9A5"}},
	KindEncouragement: {Icon: "seedling", Gradient: [2]string{"#62D9A5", "#F5C96A"}},
}

// StyleFor returns the fixed visual style for an insight kind.
//
// Unknown kinds fall back to the welcome style so presentation never
// receives an empty descriptor.
func StyleFor(kind Kind) Style {
	if s, ok := styles[kind]; ok {
		return s
	}
	return styles[KindWelcome]
}
