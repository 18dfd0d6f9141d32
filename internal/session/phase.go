package session

// Phase is the top-level lifecycle stage of a quest.
type Phase string

const (
	PhaseCharacterSetup Phase = "character-setup"
	PhaseGameSetup      Phase = "game-setup"
	PhasePlaying        Phase = "playing"
	PhaseComplete       Phase = "complete"
)

var phaseOrder = []Phase{PhaseCharacterSetup, PhaseGameSetup, PhasePlaying, PhaseComplete}

// FriendlyName returns the label shown in the header.
func (p Phase) FriendlyName() string {
	switch p {
	case PhaseCharacterSetup:
		return "Create Your Party"
	case PhaseGameSetup:
		return "Quest Configuration"
	case PhasePlaying:
		return "Adventure"
	case PhaseComplete:
		return "Quest Complete"
	default:
		return "Unknown"
	}
}

// Position returns the zero-based index of p and the number of phases.
func (p Phase) Position() (int, int) {
	for i, phase := range phaseOrder {
		if p == phase {
			return i, len(phaseOrder)
		}
	}
	return len(phaseOrder), len(phaseOrder)
}
