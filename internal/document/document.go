// Package document parses the nested block configuration dialect used by
// layout documents into a generic node tree.
//
// The dialect is line-oriented: each node is a tag word followed by
// positional values, key=value attributes, and an optional braced block of
// child nodes. Line comments start with //. Sibling order is preserved
// because it is semantically meaningful (pane splits, action sequences).
//
// This package knows nothing about layouts or keybinds; it only produces
// tagged nodes. Interpretation happens in the layout and keybind packages.
package document

import (
	"fmt"
	"strconv"
)

// Pos is a source position (1-based line and column).
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// ValueKind discriminates the literal types a value can hold.
type ValueKind int

const (
	StringVal ValueKind = iota
	IntVal
	BoolVal
	PercentVal
)

func (k ValueKind) String() string {
	switch k {
	case StringVal:
		return "string"
	case IntVal:
		return "int"
	case BoolVal:
		return "bool"
	case PercentVal:
		return "percent"
	default:
		return "unknown"
	}
}

// Value is a literal: a quoted string, an int, a bool, or a percentage.
type Value struct {
	Kind ValueKind
	Str  string
	Int  int
	Bool bool
	Pos  Pos
}

// String renders the value as it would appear in a document.
func (v Value) String() string {
	switch v.Kind {
	case StringVal:
		return strconv.Quote(v.Str)
	case IntVal:
		return strconv.Itoa(v.Int)
	case BoolVal:
		return strconv.FormatBool(v.Bool)
	case PercentVal:
		return strconv.Itoa(v.Int) + "%"
	default:
		return ""
	}
}

// Attr is a key=value attribute on a node.
type Attr struct {
	Key   string
	Value Value
	Pos   Pos
}

// Node is one entry in the generic tree: a tag, ordered positional values,
// ordered attributes, and ordered children. The root node returned by Parse
// has an empty tag and holds the top-level nodes as children.
type Node struct {
	Tag      string
	Args     []Value
	Attrs    []Attr
	Children []*Node
	Pos      Pos
}

// Attr returns the value of the named attribute. The second return is false
// if the attribute is not present. If a key is set more than once the last
// occurrence wins.
func (n *Node) Attr(key string) (Value, bool) {
	var v Value
	found := false
	for _, a := range n.Attrs {
		if a.Key == key {
			v = a.Value
			found = true
		}
	}
	return v, found
}

// StringAttr returns the named attribute as a string, or fallback if unset.
func (n *Node) StringAttr(key, fallback string) string {
	if v, ok := n.Attr(key); ok && v.Kind == StringVal {
		return v.Str
	}
	return fallback
}

// BoolAttr returns the named attribute as a bool, or fallback if unset.
func (n *Node) BoolAttr(key string, fallback bool) bool {
	if v, ok := n.Attr(key); ok && v.Kind == BoolVal {
		return v.Bool
	}
	return fallback
}

// Err builds an error prefixed with this node's position.
func (n *Node) Err(format string, args ...any) error {
	return fmt.Errorf("%s: %s", n.Pos, fmt.Sprintf(format, args...))
}

// First returns the first child with the given tag, or nil.
func (n *Node) First(tag string) *Node {
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// All returns the children with the given tag, in declaration order.
func (n *Node) All(tag string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// ParseError is a syntax error with a source position.
type ParseError struct {
	Name string // document name as given to Parse
	Pos  Pos
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%s: %s", e.Name, e.Pos, e.Msg)
}
