// Package value implements the JSON value model: the tagged Value union,
// an order-preserving Object (the representation of a Record), dotted-path
// access, structural equality/ordering, and a stable hash used by the
// set-semantics operators in pkg/relop.
package value

import (
	"fmt"
	"sort"
)

// Kind tags the variant held by a Value.
type Kind int8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

// Value is one of: null, boolean, integer, float, string, array or object.
// The zero Value is null. There is no "absent" Kind: absence is signalled
// out-of-band by the second return value of GetPath and Object.Get, per the
// Absent-is-distinct-from-null rule.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	arr  []Value
	obj  *Object
}

func Null() Value                 { return Value{kind: KindNull} }
func Bool(b bool) Value           { return Value{kind: KindBool, b: b} }
func Int(i int64) Value           { return Value{kind: KindInt, i: i} }
func Float(f float64) Value       { return Value{kind: KindFloat, f: f} }
func String(s string) Value       { return Value{kind: KindString, s: s} }
func Array(vals []Value) Value    { return Value{kind: KindArray, arr: vals} }
func FromObject(o *Object) Value  { return Value{kind: KindObject, obj: o} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) Bool() bool     { return v.b }
func (v Value) Int() int64     { return v.i }
func (v Value) Float() float64 { return v.f }
func (v Value) Str() string    { return v.s }
func (v Value) Arr() []Value   { return v.arr }
func (v Value) Obj() *Object   { return v.obj }

// IsNumeric reports whether v holds an int or a float.
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

// AsFloat coerces an int or float Value to float64; callers must check
// IsNumeric first.
func (v Value) AsFloat() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// Object is an order-preserving string-keyed mapping. Key order is not
// semantically significant (per the data model) but is preserved for
// stable output.
type Object struct {
	keys []string
	idx  map[string]int
	vals []Value
}

// NewObject returns an empty Object with capacity hint n.
func NewObject(n int) *Object {
	return &Object{
		keys: make([]string, 0, n),
		idx:  make(map[string]int, n),
		vals: make([]Value, 0, n),
	}
}

// Get returns the value stored at key and whether it was present.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	i, ok := o.idx[key]
	if !ok {
		return Value{}, false
	}
	return o.vals[i], true
}

// Set assigns key to val, appending if key is new or overwriting in place
// (preserving its original position) if key already exists.
func (o *Object) Set(key string, val Value) {
	if i, ok := o.idx[key]; ok {
		o.vals[i] = val
		return
	}
	o.idx[key] = len(o.keys)
	o.keys = append(o.keys, key)
	o.vals = append(o.vals, val)
}

// Delete removes key if present; remaining keys keep their relative order.
func (o *Object) Delete(key string) {
	i, ok := o.idx[key]
	if !ok {
		return
	}
	o.keys = append(o.keys[:i], o.keys[i+1:]...)
	o.vals = append(o.vals[:i], o.vals[i+1:]...)
	delete(o.idx, key)
	for k, v := range o.idx {
		if v > i {
			o.idx[k] = v - 1
		}
	}
}

// Keys returns the keys in insertion order. The caller must not mutate it.
func (o *Object) Keys() []string { return o.keys }

func (o *Object) Len() int { return len(o.keys) }

// Range calls f for every key/value pair in insertion order, stopping early
// if f returns false.
func (o *Object) Range(f func(key string, val Value) bool) {
	for i, k := range o.keys {
		if !f(k, o.vals[i]) {
			return
		}
	}
}

// SortedKeys returns a new slice of o's keys in lexical order, used by the
// opt-in sorted-keys output mode and by the grouping-key canonical encoding.
func (o *Object) SortedKeys() []string {
	ks := append([]string(nil), o.keys...)
	sort.Strings(ks)
	return ks
}

// Clone returns a shallow copy: Arrays and Objects nested inside are shared,
// matching the copy-on-write style operators use when deriving a new record
// from an existing one (project, rename, extend-by-any-other-name).
func (o *Object) Clone() *Object {
	c := &Object{
		keys: append([]string(nil), o.keys...),
		vals: append([]Value(nil), o.vals...),
		idx:  make(map[string]int, len(o.idx)),
	}
	for k, v := range o.idx {
		c.idx[k] = v
	}
	return c
}

// DeepClone returns a copy of o where every nested Object is itself
// cloned, so mutating the result (e.g. ReplaceAtPath on a nested path)
// never aliases the source. Arrays are copied element-wise but their
// Values, being immutable once constructed, are shared.
func (o *Object) DeepClone() *Object {
	c := &Object{
		keys: append([]string(nil), o.keys...),
		vals: make([]Value, len(o.vals)),
		idx:  make(map[string]int, len(o.idx)),
	}
	for i, v := range o.vals {
		c.vals[i] = deepCloneValue(v)
	}
	for k, v := range o.idx {
		c.idx[k] = v
	}
	return c
}

func deepCloneValue(v Value) Value {
	switch v.kind {
	case KindObject:
		return FromObject(v.obj.DeepClone())
	case KindArray:
		arr := make([]Value, len(v.arr))
		for i, e := range v.arr {
			arr[i] = deepCloneValue(e)
		}
		return Array(arr)
	default:
		return v
	}
}

// Record is the top-level mapping Value that a JSONL line decodes to.
type Record = *Object

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindString:
		return v.s
	case KindArray:
		return fmt.Sprintf("%v", v.arr)
	case KindObject:
		return fmt.Sprintf("%v", v.obj.keys)
	default:
		return ""
	}
}
