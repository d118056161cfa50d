package engine

import (
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-core/pkg/errors"
)

// EngineError wraps any exception thrown by a user-supplied strategy
// component, a data source, or an exchange client during a step dispatch.
// SchemaViolation and PrerequisiteMissing errors are never wrapped
// here: they are surfaced unchanged because their cause is already known
// and explicit.
type EngineError struct {
	Step           Step
	TargetDatetime time.Time
	Message        string
	Cause          error
}

// Error implements the error interface with the engine's display format:
// "[<step>] <YYYY-MM-DD HH:MM:SS>: <message>\n  cause: <cause>".
func (e *EngineError) Error() string {
	return fmt.Sprintf("[%s] %s: %s\n  cause: %v",
		e.Step, e.TargetDatetime.Format("2006-01-02 15:04:05"), e.Message, e.Cause)
}

// Unwrap exposes the original cause for errors.Is/errors.As.
func (e *EngineError) Unwrap() error {
	return e.Cause
}

func wrapStep(step Step, target time.Time, message string, cause error) error {
	return &EngineError{Step: step, TargetDatetime: target, Message: message, Cause: cause}
}

// invalidStepName rejects an unrecognized step synchronously with an
// argument error.
func invalidStepName(step Step) error {
	return errors.Newf(errors.ErrCodeInvalidStepName, "unknown step %q", step)
}
