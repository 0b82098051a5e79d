package kernel

import (
	"errors"
	"fmt"
)

// Kind classifies an Error by who is at fault.
type Kind int

const (
	// KindUserInput is malformed input to a public entry point.
	KindUserInput Kind = iota + 1
	// KindTopology means the half-edge pairing invariant cannot be
	// established from the given triangles.
	KindTopology
	// KindGeometry is a corrupted internal state caught by a consistency
	// check. It indicates a bug, not bad input.
	KindGeometry
)

func (k Kind) String() string {
	switch k {
	case KindUserInput:
		return "user input"
	case KindTopology:
		return "topology"
	case KindGeometry:
		return "geometry"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Sentinels for errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrUserInput = errors.New("user input error")
	ErrTopology  = errors.New("topology error")
	ErrGeometry  = errors.New("geometry error")
)

// Error is the structured error returned by kernel entry points.
type Error struct {
	Kind    Kind
	Op      string // entry point that failed, e.g. "halfedge.Build"
	Message string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Message)
}

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUserInput:
		return e.Kind == KindUserInput
	case ErrTopology:
		return e.Kind == KindTopology
	case ErrGeometry:
		return e.Kind == KindGeometry
	}
	return false
}

// UserErrorf returns a KindUserInput error.
func UserErrorf(op, format string, args ...any) error {
	return &Error{Kind: KindUserInput, Op: op, Message: fmt.Sprintf(format, args...)}
}

// TopologyErrorf returns a KindTopology error.
func TopologyErrorf(op, format string, args ...any) error {
	return &Error{Kind: KindTopology, Op: op, Message: fmt.Sprintf(format, args...)}
}

// GeometryErrorf returns a KindGeometry error.
func GeometryErrorf(op, format string, args ...any) error {
	return &Error{Kind: KindGeometry, Op: op, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
