package cascade

// State is the explicit cascade state machine. Transitions are strictly
// forward; a request never re-enters an earlier state.
type State int

const (
	StateInit State = iota
	StatePreprocessing
	StateLevel1Attempting
	StateLevel1Exhausted
	StateLevel15Attempting
	StateTerminal
)

var stateNames = map[State]string{
	StateInit:              "init",
	StatePreprocessing:     "preprocessing",
	StateLevel1Attempting:  "level1_attempting",
	StateLevel1Exhausted:   "level1_exhausted",
	StateLevel15Attempting: "level1_5_attempting",
	StateTerminal:          "terminal",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// validTransitions encodes the permitted edges of the state machine.
var validTransitions = map[State][]State{
	StateInit:              {StatePreprocessing, StateTerminal},
	StatePreprocessing:     {StateLevel1Attempting, StateTerminal},
	StateLevel1Attempting:  {StateLevel1Exhausted, StateTerminal},
	StateLevel1Exhausted:   {StateLevel15Attempting, StateTerminal},
	StateLevel15Attempting: {StateTerminal},
	StateTerminal:          {},
}

// CanTransition reports whether moving from one state to another is legal.
func CanTransition(from, to State) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
