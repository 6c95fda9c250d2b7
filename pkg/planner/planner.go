// Package planner implements the Execution Planner of spec.md §4.6: it
// classifies an operator chain and chooses between streaming,
// materializing, and windowed execution, emitting CapabilityWarnings
// along the way rather than failing — a plan is always produced.
package planner

import "github.com/jqrel/jqrel/pkg/jqerr"

// Class is an operator's resource profile, per §4.4's three-way split.
type Class int

const (
	// Streaming: O(1) records in flight (select, project, rename, explode, union).
	Streaming Class = iota
	// BoundedStateful: bounded by the distinct-value count, not input size
	// (distinct, take, skip) — compatible with Stream mode per §4.6's
	// explicit "distinct is acceptable given unique-set memory" carve-out.
	BoundedStateful
	// Materializing: requires the whole side (or both sides) in memory
	// (intersection, difference, product, sort, join, group_by+aggregate).
	Materializing
)

// OpDesc describes one stage of a chain for planning purposes.
type OpDesc struct {
	Name string
	Class
	// MemoryIntensive marks operators the Planner should warn about when
	// the estimated input is large, independent of Class (e.g. product's
	// output is quadratic even though building it is "just" materializing).
	MemoryIntensive bool
}

// Mode is the chosen execution strategy.
type Mode int

const (
	ModeStream Mode = iota
	ModeMaterialize
	ModeWindowed
)

func (m Mode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeMaterialize:
		return "materialize"
	case ModeWindowed:
		return "windowed"
	default:
		return "unknown"
	}
}

// LargeInputThreshold is the estimated-record-count above which a
// memory-intensive operator triggers a warning. The CLI driver may
// override it (e.g. via a flag) by constructing Request with a
// different value — there is no global state here.
const LargeInputThreshold int64 = 1_000_000

// Request is the Planner's input: the declared chain, an optional
// window size (0 means "no windowing requested"), whether the caller
// explicitly asked for streaming mode, and a size estimate used only
// for the memory-intensive warning (not for correctness).
type Request struct {
	Ops                   []OpDesc
	Window                int
	ForceStream           bool
	EstimatedInputRecords int64
	LargeInputThreshold   int64
}

// Plan is the Planner's decision plus any warnings it raised.
type Plan struct {
	Mode     Mode
	Window   int
	Warnings []*jqerr.Error
}

// Build classifies req.Ops and chooses a Mode. It never returns an
// error: every warning is a CapabilityWarning-kind *jqerr.Error
// collected on Plan.Warnings, for the driver to log — the Planner's
// job is to always produce an executable plan, not to reject a chain.
func Build(req Request) *Plan {
	hasMaterializing := false
	var materializingNames []string
	for _, op := range req.Ops {
		if op.Class == Materializing {
			hasMaterializing = true
			materializingNames = append(materializingNames, op.Name)
		}
	}

	plan := &Plan{Mode: ModeStream}

	switch {
	case req.Window > 0 && hasMaterializing:
		plan.Mode = ModeWindowed
		plan.Window = req.Window
		plan.Warnings = append(plan.Warnings, jqerr.New(jqerr.CapabilityWarning,
			"windowed mode produces approximations: sort yields per-window order, not global order; "+
				"group_by+aggregate collapses per window, so the same key in different windows yields multiple output rows"))
	case hasMaterializing:
		plan.Mode = ModeMaterialize
	default:
		plan.Mode = ModeStream
	}

	if req.ForceStream && plan.Mode == ModeMaterialize {
		plan.Warnings = append(plan.Warnings, jqerr.Newf(jqerr.CapabilityWarning,
			"streaming mode requested but chain contains non-streamable operator(s) %v; falling back to materialize", materializingNames))
	}

	threshold := req.LargeInputThreshold
	if threshold == 0 {
		threshold = LargeInputThreshold
	}
	if req.EstimatedInputRecords > threshold {
		for _, op := range req.Ops {
			if op.MemoryIntensive {
				plan.Warnings = append(plan.Warnings, jqerr.Newf(jqerr.CapabilityWarning,
					"operator %q is memory-intensive and the estimated input (%d records) exceeds the large-input threshold (%d)",
					op.Name, req.EstimatedInputRecords, threshold))
			}
		}
	}

	return plan
}
