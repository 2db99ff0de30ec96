package symbolic

import (
	"errors"
	"fmt"
)

var (
	// ErrNotIntegrable means no rule produced an antiderivative.
	ErrNotIntegrable = errors.New("symbolic: no antiderivative found")

	// ErrLimitUndefined means the one-sided limits disagree or the
	// expression is undefined near the point.
	ErrLimitUndefined = errors.New("symbolic: limit does not exist")

	// ErrNonFinite is matched by NonFiniteError.
	ErrNonFinite = errors.New("symbolic: limit is not finite")

	// ErrNoClosedForm means a value was found numerically but has no
	// small exact form.
	ErrNoClosedForm = errors.New("symbolic: no closed form")

	// ErrNoRealRoots means the equation has no real solution.
	ErrNoRealRoots = errors.New("symbolic: no real roots")

	// ErrUnsolvable means the solver cannot enumerate the solutions.
	ErrUnsolvable = errors.New("symbolic: cannot solve")
)

// NonFiniteError reports a limit that diverges to +∞ or -∞.
type NonFiniteError struct {
	Negative bool
}

func (e *NonFiniteError) Error() string {
	if e.Negative {
		return "symbolic: limit is -∞"
	}
	return "symbolic: limit is ∞"
}

func (e *NonFiniteError) Unwrap() error { return ErrNonFinite }

// ParseError reports malformed input to Parse.
type ParseError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("symbolic: parse %q at %d: %s", e.Input, e.Pos, e.Msg)
}
