package services

import (
	"fmt"
)

type Workflow string

const (
	WorkflowPurchase      Workflow = "purchase"
	WorkflowUpdateWebhook Workflow = "update-webhook"
	WorkflowRelease       Workflow = "release"
)

type Step string

const (
	StepValidate         Step = "validate"
	StepAccountLookup    Step = "account_lookup"
	StepRecordLookup     Step = "record_lookup"
	StepProviderPurchase Step = "provider_purchase"
	StepProviderUpdate   Step = "provider_update"
	StepProviderRelease  Step = "provider_release"
	StepCRMCreate        Step = "crm_create"
	StepCRMUpdate        Step = "crm_update"
)

type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

type StepResult struct {
	Step    Step
	Outcome Outcome
	Err     error
}

// Trace lists the steps a workflow ran, in order. Steps after a failure never appear.
type Trace []StepResult

// Succeeded reports whether step ran and completed. A succeeded provider step with a failed CRM
// step after it is a number held at the provider that the CRM does not know about.
func (t Trace) Succeeded(step Step) bool {
	for _, r := range t {
		if r.Step == step {
			return r.Outcome == OutcomeSucceeded
		}
	}
	return false
}

// Ran reports whether step was attempted at all.
func (t Trace) Ran(step Step) bool {
	for _, r := range t {
		if r.Step == step {
			return true
		}
	}
	return false
}

func (t Trace) Steps() []Step {
	steps := make([]Step, 0, len(t))
	for _, r := range t {
		steps = append(steps, r.Step)
	}
	return steps
}

// WorkflowError is the failure of one workflow step. It unwraps to the step's own error, so
// apperrors.StatusCode and errors.As see the typed cause.
type WorkflowError struct {
	Workflow Workflow
	Step     Step
	Trace    Trace
	Err      error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s workflow failed at %s: %v", e.Workflow, e.Step, e.Err)
}

func (e *WorkflowError) Unwrap() error { return e.Err }

type workflowRun struct {
	name  Workflow
	trace Trace
}

func newWorkflowRun(name Workflow) *workflowRun {
	return &workflowRun{name: name}
}

// step runs fn and records its outcome. Steps are strictly sequential and never retried.
func (w *workflowRun) step(step Step, fn func() error) error {
	if err := fn(); err != nil {
		w.trace = append(w.trace, StepResult{Step: step, Outcome: OutcomeFailed, Err: err})
		return &WorkflowError{Workflow: w.name, Step: step, Trace: w.trace, Err: err}
	}
	w.trace = append(w.trace, StepResult{Step: step, Outcome: OutcomeSucceeded})
	return nil
}
