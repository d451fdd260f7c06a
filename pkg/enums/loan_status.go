package enums

import "fmt"

// LoanStatus is the closed loan lifecycle state machine. The only legal
// transition is ACTIVE -> RETURNED; RETURNED is terminal.
type LoanStatus string

const (
	LoanStatusActive   LoanStatus = "ACTIVE"
	LoanStatusReturned LoanStatus = "RETURNED"
)

var validLoanStatuses = []LoanStatus{
	LoanStatusActive,
	LoanStatusReturned,
}

// String implements fmt.Stringer.
func (s LoanStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known LoanStatus.
func (s LoanStatus) IsValid() bool {
	for _, candidate := range validLoanStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Transition returns the state reached from s via the requested target,
// rejecting anything but ACTIVE -> RETURNED.
func (s LoanStatus) Transition(target LoanStatus) (LoanStatus, error) {
	if s == LoanStatusActive && target == LoanStatusReturned {
		return LoanStatusReturned, nil
	}
	return s, fmt.Errorf("illegal loan status transition %s -> %s", s, target)
}

// ParseLoanStatus converts raw input into a LoanStatus.
func ParseLoanStatus(value string) (LoanStatus, error) {
	for _, candidate := range validLoanStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid loan status %q", value)
}
