// Package schema implements the Schema Sub-engine of spec.md §4.9:
// infer_schema(relation) walks a relation and produces a JSON-Schema-
// style description of the paths it observed. The result is advisory —
// validation against an external schema file is out of scope here.
package schema

import (
	"io"
	"sort"

	"github.com/jqrel/jqrel/pkg/relop"
	"github.com/jqrel/jqrel/pkg/value"
)

// TypeName is one of the JSON-Schema primitive type names this engine
// tracks; "integer" is reported distinctly from "number" so a caller
// can tell an all-integer path from one that also saw floats.
type TypeName string

const (
	TypeNull    TypeName = "null"
	TypeBool    TypeName = "boolean"
	TypeInteger TypeName = "integer"
	TypeNumber  TypeName = "number"
	TypeString  TypeName = "string"
	TypeArray   TypeName = "array"
	TypeObject  TypeName = "object"
)

// Node is the inferred description of one path. Types accumulates every
// JSON type observed at this path across all records; NullObserved and
// AbsentObserved track whether this path was ever null or ever missing;
// Required is true iff the path was present (possibly null) in every
// record seen. Properties holds child Nodes for object-typed
// observations, keyed by field name; Items describes the union of
// element schemas for array-typed observations.
type Node struct {
	Types          map[TypeName]bool
	NullObserved   bool
	AbsentObserved bool
	Required       bool
	Properties     map[string]*Node
	Items          *Node

	// recordCount counts how many times this node's parent object was
	// observed — used only to detect a property key that first appears
	// after earlier sibling occurrences, which is itself an absence.
	recordCount int
}

func newNode() *Node {
	return &Node{Types: make(map[TypeName]bool), Required: true}
}

// Infer drains rel and returns the root object Node describing it. Each
// top-level record contributes one observation to the root's
// Properties.
func Infer(rel relop.Relation) (*Node, error) {
	root := newNode()
	root.Types[TypeObject] = true
	for {
		rec, err := rel.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		observeObject(root, rec)
	}
	finalizeRequired(root)
	return root, nil
}

func observeObject(node *Node, obj *value.Object) {
	node.recordCount++
	if node.Properties == nil {
		node.Properties = make(map[string]*Node)
	}
	present := make(map[string]bool, obj.Len())
	obj.Range(func(key string, val value.Value) bool {
		present[key] = true
		child, ok := node.Properties[key]
		if !ok {
			child = newNode()
			if node.recordCount > 1 {
				// this key never appeared in any earlier occurrence of
				// the parent object, so it was absent then.
				child.AbsentObserved = true
			}
			node.Properties[key] = child
		}
		observeValue(child, val)
		return true
	})
	for key, child := range node.Properties {
		if !present[key] {
			child.AbsentObserved = true
		}
	}
}

func observeValue(node *Node, v value.Value) {
	switch v.Kind() {
	case value.KindNull:
		node.Types[TypeNull] = true
		node.NullObserved = true
	case value.KindBool:
		node.Types[TypeBool] = true
	case value.KindInt:
		node.Types[TypeInteger] = true
	case value.KindFloat:
		node.Types[TypeNumber] = true
	case value.KindString:
		node.Types[TypeString] = true
	case value.KindArray:
		node.Types[TypeArray] = true
		if node.Items == nil {
			node.Items = newNode()
		}
		for _, elem := range v.Arr() {
			observeValue(node.Items, elem)
		}
	case value.KindObject:
		node.Types[TypeObject] = true
		observeObject(node, v.Obj())
	}
}

// finalizeRequired recursively marks a Node not-required if it was ever
// absent, and recurses into object/array children.
func finalizeRequired(node *Node) {
	if node.AbsentObserved {
		node.Required = false
	}
	for _, child := range node.Properties {
		finalizeRequired(child)
	}
	if node.Items != nil {
		finalizeRequired(node.Items)
	}
}

// SortedTypeNames returns node's observed types in a stable order, for
// deterministic JSON-Schema output.
func (n *Node) SortedTypeNames() []string {
	names := make([]string, 0, len(n.Types))
	for t := range n.Types {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return names
}

// SortedPropertyNames returns node's child property names in lexical
// order, for deterministic output.
func (n *Node) SortedPropertyNames() []string {
	names := make([]string, 0, len(n.Properties))
	for k := range n.Properties {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ToValue renders node as a JSON-Schema-style value.Value, suitable for
// encoding via pkg/value's Encode and printing as the `schema infer`
// CLI command's output.
func (n *Node) ToValue() value.Value {
	out := value.NewObject(4)
	types := n.SortedTypeNames()
	typeVals := make([]value.Value, len(types))
	for i, t := range types {
		typeVals[i] = value.String(t)
	}
	out.Set("type", value.Array(typeVals))
	out.Set("nullObserved", value.Bool(n.NullObserved))
	out.Set("absentObserved", value.Bool(n.AbsentObserved))
	out.Set("required", value.Bool(n.Required))
	if len(n.Properties) > 0 {
		props := value.NewObject(len(n.Properties))
		for _, name := range n.SortedPropertyNames() {
			props.Set(name, n.Properties[name].ToValue())
		}
		out.Set("properties", value.FromObject(props))
	}
	if n.Items != nil {
		out.Set("items", n.Items.ToValue())
	}
	return value.FromObject(out)
}
