package conversation

// State is a position in the per-turn lifecycle of a Loop.
type State int

const (
	StateAwaitingInput State = iota
	StateScoring
	StateComposing
	StateGenerating
	StateRecording
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateAwaitingInput:
		return "awaiting_input"
	case StateScoring:
		return "scoring"
	case StateComposing:
		return "composing"
	case StateGenerating:
		return "generating"
	case StateRecording:
		return "recording"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}
