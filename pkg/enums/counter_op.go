package enums

// CounterOp names the direction of a counter mutation, used for both book
// availability and user borrow counters.
type CounterOp string

const (
	CounterOpIncrement CounterOp = "increment"
	CounterOpDecrement CounterOp = "decrement"
)

var validCounterOps = []CounterOp{
	CounterOpIncrement,
	CounterOpDecrement,
}

// String implements fmt.Stringer.
func (o CounterOp) String() string {
	return string(o)
}

// IsValid reports whether the value is a known CounterOp.
func (o CounterOp) IsValid() bool {
	for _, candidate := range validCounterOps {
		if candidate == o {
			return true
		}
	}
	return false
}
