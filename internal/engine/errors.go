// Package engine holds the error taxonomy shared by every subsystem:
// voxel storage, meshing, the chunk pipeline, building, stability and
// collapse all return errors built from the same small set of Kinds so
// callers can branch with errors.Is instead of string matching.
package engine

import "fmt"

// Kind classifies why an operation failed and, by extension, how the
// caller should react to it.
type Kind int

const (
	// NotLoaded means the requested section/chunk has not been generated
	// or streamed in yet. Callers retry after the Chunk Pipeline catches up.
	NotLoaded Kind = iota
	// InputIncomplete means an operation needed neighbor data (e.g. the
	// padded 18^3 view) that wasn't available. Locally recoverable: retry
	// once the missing neighbor loads.
	InputIncomplete
	// PlacementInvalid means a building placement failed validation.
	// Reason carries the user-facing explanation.
	PlacementInvalid
	// CapacityExhausted means a budget (pending jobs, dynamic bodies,
	// queue depth) was hit. Not a user error: the caller should shed
	// load, not report a bug.
	CapacityExhausted
	// Corrupt means persisted data failed to decode. Fatal to the
	// affected save only; other saves/chunks are unaffected.
	Corrupt
	// Transient means a best-effort operation failed in a way that's
	// safe to silently drop (e.g. a stale, already-cancelled mesh result).
	Transient
)

func (k Kind) String() string {
	switch k {
	case NotLoaded:
		return "not_loaded"
	case InputIncomplete:
		return "input_incomplete"
	case PlacementInvalid:
		return "placement_invalid"
	case CapacityExhausted:
		return "capacity_exhausted"
	case Corrupt:
		return "corrupt"
	case Transient:
		return "transient"
	default:
		return "unknown"
	}
}

// Error wraps a Kind with a human-readable reason. It implements the Is
// method so errors.Is(err, engine.NotLoaded) works against a sentinel
// Kind value without allocating a sentinel error per site.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Is lets errors.Is(err, SomeKind) work by treating bare Kind values as
// sentinels that any Error of the same Kind satisfies.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	if !ok {
		return false
	}
	return e.Kind == k
}

// Error lets a bare Kind be used directly as an error (e.g. returning
// engine.NotLoaded without a Reason), and as the errors.Is target.
func (k Kind) Error() string { return k.String() }

// New builds an *Error with the given Kind and a formatted reason.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Wrap returns an *Error with kind, embedding the original error's text
// as the reason, for boundary-crossing errors (e.g. decode failures).
func Wrap(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Reason: err.Error()}
}
