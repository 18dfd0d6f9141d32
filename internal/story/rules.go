package story

// Rule maps a turn position onto a fragment pool.
type Rule struct {
	Kind Kind
	// Join separates hero names. An empty Join renders the fragment without
	// party details.
	Join    string
	Matches func(turn int, settings Settings) bool
}

// DefaultRules are evaluated top to bottom and the first match wins, so on
// short sessions where turns coincide the opening beats the midpoint, which
// beats the ending.
var DefaultRules = []Rule{
	{
		Kind:    KindOpening,
		Join:    ", ",
		Matches: func(turn int, _ Settings) bool { return turn == 1 },
	},
	{
		Kind:    KindMidpoint,
		Join:    " and ",
		Matches: func(turn int, s Settings) bool { return turn == s.SessionLength/2 },
	},
	{
		Kind:    KindEnding,
		Join:    " and ",
		Matches: func(turn int, s Settings) bool { return turn == s.SessionLength },
	},
	{
		Kind:    KindEncounter,
		Matches: func(int, Settings) bool { return true },
	},
}

// Classify reports which pool DefaultRules pick for turn.
func Classify(turn int, settings Settings) Kind {
	rule, ok := matchRule(DefaultRules, turn, settings)
	if !ok {
		return ""
	}
	return rule.Kind
}

func matchRule(rules []Rule, turn int, settings Settings) (Rule, bool) {
	for _, rule := range rules {
		if rule.Matches != nil && rule.Matches(turn, settings) {
			return rule, true
		}
	}
	return Rule{}, false
}
