package boot

// State is a stage of the startup sequence. States are only ever entered in ascending order.
type State uint8

const (
	// StateRawStart is the state of a new [Context].
	StateRawStart State = iota
	// StateArgsSpliced is entered once the argument vector is final.
	StateArgsSpliced
	// StateBootHookEntered is entered by the wrapped boot hook.
	StateBootHookEntered
	// StateSearchPathInjected is entered once the embedded archive is a search root.
	StateSearchPathInjected
	// StatePreambleScheduled is entered once the preamble is pending.
	StatePreambleScheduled
	// StateChannelOpened is entered once the payload channel is open.
	StateChannelOpened
	// StateTrustCleared is entered once the taint flag is cleared.
	StateTrustCleared
	// StateUserCode is terminal, entered before the interpreter runs user code.
	StateUserCode
)

var stateNames = [...]string{
	StateRawStart:           "raw start",
	StateArgsSpliced:        "arguments spliced",
	StateBootHookEntered:    "boot hook entered",
	StateSearchPathInjected: "search path injected",
	StatePreambleScheduled:  "preamble scheduled",
	StateChannelOpened:      "payload channel opened",
	StateTrustCleared:       "trust cleared",
	StateUserCode:           "user code running",
}

func (s State) String() string {
	if int(s) >= len(stateNames) {
		return "invalid state"
	}
	return stateNames[s]
}
