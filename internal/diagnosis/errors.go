package diagnosis

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable code of an engine failure, used by the
// presentation layer to pick a user-facing message.
type ErrorKind string

const (
	KindInsufficientSample ErrorKind = "INSUFFICIENT_SAMPLE"
	KindUnorderedLog       ErrorKind = "UNORDERED_LOG"
	KindIncompleteResult   ErrorKind = "INCOMPLETE_RESULT"
	KindInvalidPolicy      ErrorKind = "INVALID_POLICY"
	KindUnknown            ErrorKind = "UNKNOWN"
)

// InsufficientSampleError means the season has fewer games than the policy requires.
type InsufficientSampleError struct {
	Games     int
	Threshold int
}

func (e *InsufficientSampleError) Error() string {
	return fmt.Sprintf("not enough games to diagnose: %d played, need at least %d", e.Games, e.Threshold)
}

// Kind implements kinded.
func (e *InsufficientSampleError) Kind() ErrorKind { return KindInsufficientSample }

// UnorderedLogError means game indices are not strictly increasing.
// Position is the offset in SeasonLog.Games of the first offending game.
type UnorderedLogError struct {
	Position int
	Previous int
	Current  int
}

func (e *UnorderedLogError) Error() string {
	return fmt.Sprintf("season log out of order at position %d: game index %d follows %d",
		e.Position, e.Current, e.Previous)
}

// Kind implements kinded.
func (e *UnorderedLogError) Kind() ErrorKind { return KindUnorderedLog }

// IncompleteResultError is an internal invariant violation during assembly.
type IncompleteResultError struct {
	Windows int
	Trends  int
	Detail  string
}

func (e *IncompleteResultError) Error() string {
	msg := fmt.Sprintf("incomplete diagnostic result: %d windows, %d trend entries", e.Windows, e.Trends)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Kind implements kinded.
func (e *IncompleteResultError) Kind() ErrorKind { return KindIncompleteResult }

// PolicyError means the engine was configured with an unusable policy or catalog.
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string { return "invalid diagnosis policy: " + e.Reason }

// Kind implements kinded.
func (e *PolicyError) Kind() ErrorKind { return KindInvalidPolicy }

type kinded interface {
	error
	Kind() ErrorKind
}

// KindOf returns the kind of the first engine error in err's chain, or
// KindUnknown.
func KindOf(err error) ErrorKind {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}
