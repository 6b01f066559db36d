// Package errors implements the pipeline's error taxonomy: what is signalled,
// and the policy attached to each kind (fatal, per-file, per-symbol, not an
// error at all). Nothing in this package retries automatically; retries are
// the caller's concern.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline error by its handling policy.
type Kind int

const (
	// KindIO covers walker and version-control I/O failures. Fatal for the
	// repo root; per-file occurrences are logged and the file is skipped.
	KindIO Kind = iota

	// KindParse covers per-file parser failures. The File node is kept with
	// empty symbols and parse_failed=true; the pipeline continues.
	KindParse

	// KindResolveAmbiguity is not a failure: it is raised internally by the
	// import/call/type resolvers to record that a resolution fanned out into
	// multiple reduced-confidence edges instead of one.
	KindResolveAmbiguity

	// KindEncoder covers per-symbol embedding failures. The vector is
	// omitted and the pipeline continues.
	KindEncoder

	// KindCancellation signals an external cancellation. The pipeline
	// unwinds and the in-memory graph is discarded; nothing is persisted.
	KindCancellation

	// KindStorage covers storage-backend failures. Fatal; surfaced to the
	// caller as-is.
	KindStorage
)

var kindNames = map[Kind]string{
	KindIO:               "io",
	KindParse:            "parse",
	KindResolveAmbiguity: "resolve_ambiguity",
	KindEncoder:          "encoder",
	KindCancellation:     "cancellation",
	KindStorage:          "storage",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Policy describes how the driver should react to an error of a given Kind.
type Policy struct {
	// FatalToRun aborts the whole pipeline run (no persistence).
	FatalToRun bool

	// SkipUnit skips the file/symbol the error was raised for and continues.
	SkipUnit bool
}

var policies = map[Kind]Policy{
	KindIO:               {FatalToRun: false, SkipUnit: true},
	KindParse:            {FatalToRun: false, SkipUnit: true},
	KindResolveAmbiguity: {FatalToRun: false, SkipUnit: false},
	KindEncoder:          {FatalToRun: false, SkipUnit: true},
	KindCancellation:     {FatalToRun: true, SkipUnit: false},
	KindStorage:          {FatalToRun: true, SkipUnit: false},
}

// PolicyFor returns the handling policy for a Kind.
func PolicyFor(k Kind) Policy {
	return policies[k]
}

// PipelineError wraps an error with its Kind and the unit of work (file path
// or symbol id) it occurred against.
type PipelineError struct {
	Kind       Kind
	Phase      string
	Unit       string
	Underlying error
}

func (e *PipelineError) Error() string {
	if e.Unit != "" {
		return fmt.Sprintf("[%s/%s] %s: %v", e.Phase, e.Kind, e.Unit, e.Underlying)
	}
	return fmt.Sprintf("[%s/%s] %v", e.Phase, e.Kind, e.Underlying)
}

func (e *PipelineError) Unwrap() error {
	return e.Underlying
}

// New wraps err as a PipelineError of the given kind, phase, and unit. If err
// is nil, New returns nil.
func New(kind Kind, phase, unit string, err error) error {
	if err == nil {
		return nil
	}
	return &PipelineError{Kind: kind, Phase: phase, Unit: unit, Underlying: err}
}

// KindOf extracts the Kind from an error, defaulting to KindStorage (fatal)
// for errors that never went through New.
func KindOf(err error) Kind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindStorage
}

// IsFatal reports whether err should abort the pipeline run.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return PolicyFor(KindOf(err)).FatalToRun
}

// ErrCancelled is the sentinel returned when a run is cancelled between
// phases or per-file work items.
var ErrCancelled = New(KindCancellation, "driver", "", errors.New("pipeline cancelled"))

// ErrNotImplemented is returned by collaborator surfaces (the CLI, the RPC
// server) for operations named in spec.md but out of this component's
// scope.
var ErrNotImplemented = errors.New("not implemented in this component")
