package session

// DurabilityState tracks whether the session artifact would survive a
// restart of an ephemeral deployment.
type DurabilityState int

const (
	// StateAbsent: no local artifact; the next login needs a QR scan.
	StateAbsent DurabilityState = iota
	// StateLocalOnly: an artifact exists locally but has not been backed up.
	StateLocalOnly
	// StateSynced: the remote store holds the latest known artifact.
	StateSynced
)

func (s DurabilityState) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateLocalOnly:
		return "local_only"
	case StateSynced:
		return "synced"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s DurabilityState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var stateNames = []string{
	StateAbsent.String(),
	StateLocalOnly.String(),
	StateSynced.String(),
}

// next applies one outcome to the state machine. localExists is whether the
// artifact is on disk after the operation.
func next(current DurabilityState, o Outcome, localExists bool) DurabilityState {
	switch {
	case o.OK():
		return StateSynced
	case !localExists:
		return StateAbsent
	case o.Op == OpSave:
		// On disk but not uploaded.
		return StateLocalOnly
	case current == StateAbsent:
		return StateLocalOnly
	default:
		return current
	}
}
