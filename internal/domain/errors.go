package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the stamper domain.
// These errors can be checked with errors.Is.
var (
	// ErrTemplateMissing is returned when the template does not exist at batch start.
	ErrTemplateMissing = errors.New("stamper: template not found")

	// ErrInvalidJob is returned when the batch parameters fail validation.
	ErrInvalidJob = errors.New("stamper: invalid job")

	// ErrUnknownDestination is returned when the destination is not configured.
	ErrUnknownDestination = errors.New("stamper: unknown destination")

	// ErrNoDeviceMode is returned when a device exposes no modifiable paper configuration.
	ErrNoDeviceMode = errors.New("stamper: printer configuration unavailable")

	// ErrEmptyDocument is returned when a converted document has no pages.
	ErrEmptyDocument = errors.New("stamper: document has no pages")

	// ErrDeviceClosed is returned when a device handle is used after Close.
	ErrDeviceClosed = errors.New("stamper: device closed")

	// ErrInvalidTransition is returned when the batch lifecycle is driven out of order.
	ErrInvalidTransition = errors.New("stamper: invalid state transition")
)

// Kind classifies a failure by how far its effect reaches.
type Kind int

const (
	// KindFatal aborts the whole batch before any unit runs.
	KindFatal Kind = iota
	// KindUnit abandons a single unit; the batch continues.
	KindUnit
	// KindBestEffort is logged and otherwise ignored.
	KindBestEffort
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindFatal:
		return "fatal"
	case KindUnit:
		return "unit"
	case KindBestEffort:
		return "best-effort"
	default:
		return "unknown"
	}
}

// Stage names the step of the workflow a failure happened in.
type Stage string

const (
	StageSetup    Stage = "setup"
	StageConvert  Stage = "convert"
	StageCompose  Stage = "compose"
	StageDispatch Stage = "dispatch"
	StageMonitor  Stage = "monitor"
	StageCleanup  Stage = "cleanup"
)

// Error is a classified failure. Serial is -1 when no unit is involved.
type Error struct {
	Kind   Kind
	Stage  Stage
	Serial int
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Serial < 0 {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s stamp %s: %v", e.Stage, FormatLabel(e.Serial), e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Fatal wraps err as a batch-aborting failure.
func Fatal(stage Stage, err error) error {
	return &Error{Kind: KindFatal, Stage: stage, Serial: -1, Err: err}
}

// UnitFailure wraps err as a failure scoped to the unit with the given serial.
func UnitFailure(stage Stage, serial int, err error) error {
	return &Error{Kind: KindUnit, Stage: stage, Serial: serial, Err: err}
}

// BestEffort wraps err as a failure that is logged and ignored.
func BestEffort(stage Stage, serial int, err error) error {
	return &Error{Kind: KindBestEffort, Stage: stage, Serial: serial, Err: err}
}

// KindOf reports the kind of err. Unclassified errors are treated as unit-scoped.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnit
}
