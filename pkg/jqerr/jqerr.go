// Package jqerr defines the error taxonomy shared by every component:
// Reader, Expression Engine, Operator Core, Grouping Engine, Planner and
// the CLI/REPL drivers all report failures through these kinds so the
// driver can map a failure to the right exit code (see cmd/jqrel).
package jqerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is the error taxonomy of spec.md §7.
type Kind int

const (
	// InputParseError: malformed JSONL line; carries path + line number + reason.
	InputParseError Kind = iota
	// ExpressionError: syntax or unknown identifier in a filter/projection expression.
	ExpressionError
	// EvalError: runtime issue per record (division by zero, type mismatch,
	// missing required path under strict mode).
	EvalError
	// PipelineError: structural issue (unknown dataset, rename collision,
	// duplicate projection names, group-metadata inconsistency).
	PipelineError
	// CapabilityWarning: Planner fallback notice. Never aborts the pipeline.
	CapabilityWarning
	// UsageError: CLI/arg-level.
	UsageError
)

func (k Kind) String() string {
	switch k {
	case InputParseError:
		return "InputParseError"
	case ExpressionError:
		return "ExpressionError"
	case EvalError:
		return "EvalError"
	case PipelineError:
		return "PipelineError"
	case CapabilityWarning:
		return "CapabilityWarning"
	case UsageError:
		return "UsageError"
	default:
		return "UnknownError"
	}
}

// Error is a kinded error. Wrap attaches a lower-level cause (through
// pkg/errors.Wrap) so the cause chain survives for diagnostics; New/Newf
// build an Error with no cause. This matches the wrapping style
// grafana-loki and tobsdb use at component boundaries.
type Error struct {
	Kind Kind
	Msg  string
	// Path and Line are populated by InputParseError.
	Path string
	Line int
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s:%d: %s", e.Kind, e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: errors.Wrap(err, msg)}
}

// ParseErrorAt builds an InputParseError carrying the line number and
// reason required by spec.md §4.3.
func ParseErrorAt(path string, line int, reason error) *Error {
	return &Error{
		Kind: InputParseError,
		Msg:  reason.Error(),
		Path: path,
		Line: line,
		Err:  reason,
	}
}

// KindOf extracts the Kind of err if it (or something it wraps) is an
// *Error, defaulting to UsageError for anything else — the CLI boundary
// is the only place that needs a fallback, per spec.md §7's "Only the
// CLI edge converts parse failures into process exits."
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return UsageError
}

// ExitCode maps a Kind to the abstract exit-code taxonomy of spec.md §6.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case UsageError:
		return 2
	case InputParseError:
		return 3
	case ExpressionError, EvalError, PipelineError:
		return 4
	default:
		return 1
	}
}
