package group

import (
	"math"
	"sort"
	"strings"

	"github.com/jqrel/jqrel/pkg/value"
)

// countAgg ignores its argument entirely: count is a zero-arg aggregate,
// the cardinality of the innermost group.
type countAgg struct{ n int64 }

func newCount() Aggregator                       { return &countAgg{} }
func (c *countAgg) Collect(_ value.Value, _ bool) { c.n++ }
func (c *countAgg) Finalize() (value.Value, bool) { return value.Int(c.n), false }

// sumAgg adds numeric observations; non-numeric and absent observations
// are skipped. A group with no numeric observation yields absent, like
// avg/min/max.
type sumAgg struct {
	total  float64
	allInt bool
	any    bool
}

func newSum() Aggregator { return &sumAgg{allInt: true} }
func (s *sumAgg) Collect(v value.Value, absent bool) {
	if absent || !v.IsNumeric() {
		return
	}
	s.any = true
	if v.Kind() != value.KindInt {
		s.allInt = false
	}
	s.total += v.AsFloat()
}
func (s *sumAgg) Finalize() (value.Value, bool) {
	if !s.any {
		return value.Null(), true
	}
	if s.allInt {
		return value.Int(int64(s.total)), false
	}
	return value.Float(s.total), false
}

// avgAgg yields absent when no numeric observation was collected.
type avgAgg struct {
	total float64
	n     int
}

func newAvg() Aggregator { return &avgAgg{} }
func (a *avgAgg) Collect(v value.Value, absent bool) {
	if absent || !v.IsNumeric() {
		return
	}
	a.total += v.AsFloat()
	a.n++
}
func (a *avgAgg) Finalize() (value.Value, bool) {
	if a.n == 0 {
		return value.Null(), true
	}
	return value.Float(a.total / float64(a.n)), false
}

// minMaxAgg tracks the extreme observation under §4.1's total order,
// skipping absent. Yields absent on an empty group.
type minMaxAgg struct {
	max  bool
	best value.Value
	any  bool
}

func newMinMax(max bool) Aggregator { return &minMaxAgg{max: max} }
func (m *minMaxAgg) Collect(v value.Value, absent bool) {
	if absent {
		return
	}
	if !m.any {
		m.best, m.any = v, true
		return
	}
	c := value.Compare(v, m.best)
	if (m.max && c > 0) || (!m.max && c < 0) {
		m.best = v
	}
}
func (m *minMaxAgg) Finalize() (value.Value, bool) {
	if !m.any {
		return value.Null(), true
	}
	return m.best, false
}

// listAgg collects every observation, including duplicates, in input
// order — absent observations become null elements.
type listAgg struct{ items []value.Value }

func newList() Aggregator { return &listAgg{} }
func (l *listAgg) Collect(v value.Value, absent bool) {
	if absent {
		v = value.Null()
	}
	l.items = append(l.items, v)
}
func (l *listAgg) Finalize() (value.Value, bool) { return value.Array(l.items), false }

// edgeAgg returns the first or last observation in input order.
type edgeAgg struct {
	first bool
	v     value.Value
	set   bool
}

func newEdge(first bool) Aggregator { return &edgeAgg{first: first} }
func (e *edgeAgg) Collect(v value.Value, absent bool) {
	if absent {
		v = value.Null()
	}
	if e.first && e.set {
		return
	}
	e.v, e.set = v, true
}
func (e *edgeAgg) Finalize() (value.Value, bool) {
	if !e.set {
		return value.Null(), true
	}
	return e.v, false
}

// uniqueAgg de-duplicates by the Value equality/hash rules of §4.1,
// preserving first-seen order.
type uniqueAgg struct {
	seen  map[uint64][]value.Value
	items []value.Value
}

func newUnique() Aggregator { return &uniqueAgg{seen: make(map[uint64][]value.Value)} }
func (u *uniqueAgg) Collect(v value.Value, absent bool) {
	if absent {
		v = value.Null()
	}
	h := value.Hash(v)
	for _, cand := range u.seen[h] {
		if value.Equal(cand, v) {
			return
		}
	}
	u.seen[h] = append(u.seen[h], v)
	u.items = append(u.items, v)
}
func (u *uniqueAgg) Finalize() (value.Value, bool) { return value.Array(u.items), false }

// medianAgg sorts numeric observations and interpolates the midpoint.
type medianAgg struct{ vals []float64 }

func newMedian() Aggregator { return &medianAgg{} }
func (m *medianAgg) Collect(v value.Value, absent bool) {
	if absent || !v.IsNumeric() {
		return
	}
	m.vals = append(m.vals, v.AsFloat())
}
func (m *medianAgg) Finalize() (value.Value, bool) {
	n := len(m.vals)
	if n == 0 {
		return value.Null(), true
	}
	sorted := append([]float64(nil), m.vals...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return value.Float(sorted[n/2]), false
	}
	return value.Float((sorted[n/2-1] + sorted[n/2]) / 2), false
}

// modeAgg returns the most frequent observation, ties broken by first
// occurrence among the tied values.
type modeAgg struct {
	order []value.Value
	count map[uint64]int
	first map[uint64]int
}

func newMode() Aggregator {
	return &modeAgg{count: make(map[uint64]int), first: make(map[uint64]int)}
}
func (m *modeAgg) Collect(v value.Value, absent bool) {
	if absent {
		v = value.Null()
	}
	h := value.Hash(v)
	if _, ok := m.first[h]; !ok {
		m.first[h] = len(m.order)
		m.order = append(m.order, v)
	}
	m.count[h]++
}
func (m *modeAgg) Finalize() (value.Value, bool) {
	if len(m.order) == 0 {
		return value.Null(), true
	}
	best := m.order[0]
	bestHash := value.Hash(best)
	bestCount := m.count[bestHash]
	bestFirst := m.first[bestHash]
	for _, v := range m.order[1:] {
		h := value.Hash(v)
		if c := m.count[h]; c > bestCount || (c == bestCount && m.first[h] < bestFirst) {
			best, bestCount, bestFirst = v, c, m.first[h]
		}
	}
	return best, false
}

// stdAgg computes the population standard deviation of the numeric
// observations.
type stdAgg struct{ vals []float64 }

func newStd() Aggregator { return &stdAgg{} }
func (s *stdAgg) Collect(v value.Value, absent bool) {
	if absent || !v.IsNumeric() {
		return
	}
	s.vals = append(s.vals, v.AsFloat())
}
func (s *stdAgg) Finalize() (value.Value, bool) {
	n := len(s.vals)
	if n == 0 {
		return value.Null(), true
	}
	var mean float64
	for _, x := range s.vals {
		mean += x
	}
	mean /= float64(n)
	var variance float64
	for _, x := range s.vals {
		d := x - mean
		variance += d * d
	}
	variance /= float64(n)
	return value.Float(math.Sqrt(variance)), false
}

// concatAgg joins string observations with no separator, skipping absent
// and non-string observations.
type concatAgg struct{ b strings.Builder }

func newConcat() Aggregator { return &concatAgg{} }
func (c *concatAgg) Collect(v value.Value, absent bool) {
	if absent || v.Kind() != value.KindString {
		return
	}
	c.b.WriteString(v.Str())
}
func (c *concatAgg) Finalize() (value.Value, bool) { return value.String(c.b.String()), false }
