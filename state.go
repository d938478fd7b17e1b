package compacthash

// tableState guards against re-entrant structural changes.
type tableState uint8

const (
	stateIdle tableState = iota
	stateCompacting
	stateResizing
)

func (s tableState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateCompacting:
		return "compacting"
	case stateResizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// enter moves from idle to s. It returns a function that moves back.
func (t *Table[T]) enter(s tableState) (func(), error) {
	if t.state != stateIdle {
		return nil, corruption("enter "+s.String()+" state", stateIdle.String(), t.state.String())
	}
	t.state = s
	return func() { t.state = stateIdle }, nil
}
