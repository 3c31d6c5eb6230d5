package state

import "fmt"

// Mode selects what a state read returns: the concrete stored value, or a
// symbolic placeholder standing in for it. The mode is passed explicitly on
// every read; there is no process-wide switch.
type Mode int

const (
	// Concrete reads return the stored cty value.
	Concrete Mode = iota
	// Symbolic reads return a typed placeholder marked with the leaf's name.
	Symbolic
)

// String implements fmt.Stringer for log and error output.
func (m Mode) String() string {
	switch m {
	case Concrete:
		return "concrete"
	case Symbolic:
		return "symbolic"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}
