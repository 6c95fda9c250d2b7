package group

import "github.com/jqrel/jqrel/pkg/value"

// Aggregator collects a sequence of (value, absent) observations from one
// group's records and reduces them to a single output Value. Implementations
// decide for themselves what an absent observation means (count counts it
// anyway; list/first/last/unique/mode record it as null;
// sum/avg/min/max/median/std/concat skip it).
type Aggregator interface {
	Collect(v value.Value, absent bool)
	// Finalize returns the aggregate's result and whether it is absent
	// (an aggregate with no numeric/applicable observations yields
	// absent rather than zero, except count, list, unique and concat,
	// which yield 0, [], [] and "" respectively).
	Finalize() (value.Value, bool)
}

// Factory constructs a fresh Aggregator instance, one per group per field.
type Factory func() Aggregator

var registry = map[string]Factory{}

// Register adds name to the builtin aggregator table, keyed by the name
// used in an aggregate() spec (e.g. "sum", "count"). Registering under an
// existing name replaces it — used by callers embedding a domain-specific
// aggregator alongside the builtins.
func Register(name string, f Factory) { registry[name] = f }

// Lookup returns the factory registered under name, if any.
func Lookup(name string) (Factory, bool) {
	f, ok := registry[name]
	return f, ok
}

func init() {
	Register("count", newCount)
	Register("sum", newSum)
	Register("avg", newAvg)
	Register("min", func() Aggregator { return newMinMax(false) })
	Register("max", func() Aggregator { return newMinMax(true) })
	Register("list", newList)
	Register("first", func() Aggregator { return newEdge(true) })
	Register("last", func() Aggregator { return newEdge(false) })
	Register("unique", newUnique)
	Register("median", newMedian)
	Register("mode", newMode)
	Register("std", newStd)
	Register("concat", newConcat)
}
