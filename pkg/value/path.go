package value

import "strings"

// SplitPath splits a dotted path into its key tokens. The Expression
// Engine pre-splits paths once at parse time per the design note in
// spec.md "Path lookups take the path as a pre-split slice of key
// tokens" — GetPath and SetPath take the dotted string, GetPathTokens
// the pre-split form.
func SplitPath(path string) []string {
	return strings.Split(path, ".")
}

// GetPath resolves a dotted path against a record. At each step the
// current value must be an object, otherwise resolution stops and the
// path is Absent (the bool return is false). Never panics.
func GetPath(rec *Object, path string) (Value, bool) {
	return GetPathTokens(rec, SplitPath(path))
}

// GetPathTokens resolves a pre-split path, avoiding a re-split per record
// when the same compiled expression is evaluated many times.
func GetPathTokens(rec *Object, tokens []string) (Value, bool) {
	if rec == nil || len(tokens) == 0 {
		return Value{}, false
	}
	cur := FromObject(rec)
	for _, tok := range tokens {
		if cur.kind != KindObject {
			return Value{}, false
		}
		v, ok := cur.obj.Get(tok)
		if !ok {
			return Value{}, false
		}
		cur = v
	}
	return cur, true
}

// ReplaceAtPath overwrites the value at an already-resolved path (one for
// which GetPath returned ok=true), descending through the same existing
// nested objects GetPath did rather than creating new structure. Used by
// operators (explode) that replace a value in place without caring
// whether the path was a flat literal key or a nested dotted path.
func ReplaceAtPath(rec *Object, path string, val Value) {
	tokens := SplitPath(path)
	cur := rec
	for i, tok := range tokens {
		if i == len(tokens)-1 {
			cur.Set(tok, val)
			return
		}
		existing, ok := cur.Get(tok)
		if !ok || existing.kind != KindObject {
			return
		}
		cur = existing.obj
	}
}

// SetPath assigns val at path within rec. When nest is false (the default
// projection semantics: a dotted name supplied as a literal field name),
// the whole path string is used as a single flat key and no nested
// mapping is created. When nest is true ("structured" output requested by
// a projection-with-nest operation), intermediate objects are created as
// needed and only the final segment is set; a non-object encountered along
// the way is overwritten, since the caller explicitly asked for nesting.
func SetPath(rec *Object, path string, val Value, nest bool) {
	if !nest {
		rec.Set(path, val)
		return
	}
	tokens := SplitPath(path)
	cur := rec
	for i, tok := range tokens {
		if i == len(tokens)-1 {
			cur.Set(tok, val)
			return
		}
		existing, ok := cur.Get(tok)
		if ok && existing.kind == KindObject {
			cur = existing.obj
			continue
		}
		child := NewObject(1)
		cur.Set(tok, FromObject(child))
		cur = child
	}
}
