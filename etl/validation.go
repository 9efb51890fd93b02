package etl

import (
	"strings"
)

// Attributes attached to a validation Cause
const (
	CauseStage       = "stage"
	CauseStageConfig = "stageConfig"
)

// Cause points a ValidationFailure at what triggered it.
type Cause struct {
	Attributes map[string]string
}

// Attribute returns the value of a cause attribute, or "" if unset.
func (c Cause) Attribute(key string) string {
	return c.Attributes[key]
}

// ValidationFailure is a single problem found while validating a stage.
type ValidationFailure struct {
	Message          string
	CorrectiveAction string
	Causes           []Cause

	stageName string
}

// WithConfigProperty attributes the failure to a configuration property of
// the stage.
func (f *ValidationFailure) WithConfigProperty(property string) *ValidationFailure {
	f.Causes = append(f.Causes, Cause{
		Attributes: map[string]string{
			CauseStage:       f.stageName,
			CauseStageConfig: property,
		},
	})
	return f
}

func (f *ValidationFailure) String() string {
	if f.CorrectiveAction == "" {
		return f.Message
	}
	return f.Message + " " + f.CorrectiveAction
}

// FailureCollector gathers validation failures so they can be reported
// together instead of stopping at the first one.
type FailureCollector struct {
	stageName string
	failures  []*ValidationFailure
}

// NewFailureCollector returns an empty collector for the named stage.
func NewFailureCollector(stageName string) *FailureCollector {
	return &FailureCollector{stageName: stageName}
}

// AddFailure records a failure. correctiveAction may be empty.
func (c *FailureCollector) AddFailure(message, correctiveAction string) *ValidationFailure {
	f := &ValidationFailure{
		Message:          message,
		CorrectiveAction: correctiveAction,
		stageName:        c.stageName,
	}
	c.failures = append(c.failures, f)
	return f
}

// Failures returns the failures collected so far.
func (c *FailureCollector) Failures() []*ValidationFailure {
	return c.failures
}

// Err returns a *ValidationError holding every collected failure, or nil if
// there are none.
func (c *FailureCollector) Err() error {
	if len(c.failures) == 0 {
		return nil
	}
	failures := make([]*ValidationFailure, len(c.failures))
	copy(failures, c.failures)
	return &ValidationError{Failures: failures}
}

// ValidationError aborts deployment or a run because a stage is misconfigured.
type ValidationError struct {
	Failures []*ValidationFailure
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.String()
	}
	return "Errors were encountered during validation. " + strings.Join(msgs, " ")
}
