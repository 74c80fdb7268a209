// Package layout translates the generic document tree rooted at "layout"
// into an ordered sequence of Tab structures: a recursive split-pane
// hierarchy with per-node attributes, with the default_tab_template spliced
// into each tab at its children marker.
//
// The builder is a pure transform. It never touches a live multiplexer; the
// result is handed to whatever consumes it (renderers, the preview TUI, or
// an external runtime).
package layout

import "fmt"

// SplitDirection is the direction a container splits its children in.
// The empty value means "inherit from the parent"; the root of a tab
// defaults to horizontal.
type SplitDirection string

const (
	SplitInherit    SplitDirection = ""
	SplitHorizontal SplitDirection = "horizontal"
	SplitVertical   SplitDirection = "vertical"
)

// NodeKind discriminates the layout node variants.
type NodeKind string

const (
	KindPane   NodeKind = "pane"
	KindPlugin NodeKind = "plugin"
)

// Size is a pane size: a fixed cell count or a percentage of the parent.
// The zero value means "unset" (the runtime divides space evenly).
type Size struct {
	Value   int  `json:"value" yaml:"value"`
	Percent bool `json:"percent" yaml:"percent"`
}

// IsZero reports whether the size is unset.
func (s Size) IsZero() bool {
	return s.Value == 0 && !s.Percent
}

func (s Size) String() string {
	if s.Percent {
		return fmt.Sprintf("%d%%", s.Value)
	}
	return fmt.Sprintf("%d", s.Value)
}

// Node is one node of a tab's pane tree: either a split container (with
// Children), a leaf running a command or editing a file, or a plugin pane.
// Each node is owned by its parent; the tree is acyclic with a single root
// per tab.
type Node struct {
	Kind           NodeKind       `json:"kind" yaml:"kind"`
	Name           string         `json:"name,omitempty" yaml:"name,omitempty"`
	Focus          bool           `json:"focus,omitempty" yaml:"focus,omitempty"`
	SplitDirection SplitDirection `json:"split_direction,omitempty" yaml:"split_direction,omitempty"`
	Borderless     bool           `json:"borderless,omitempty" yaml:"borderless,omitempty"`
	Size           Size           `json:"size,omitempty" yaml:"size,omitempty"`
	Command        string         `json:"command,omitempty" yaml:"command,omitempty"`
	Args           []string       `json:"args,omitempty" yaml:"args,omitempty"`
	StartSuspended bool           `json:"start_suspended,omitempty" yaml:"start_suspended,omitempty"`
	Edit           string         `json:"edit,omitempty" yaml:"edit,omitempty"`
	Location       string         `json:"location,omitempty" yaml:"location,omitempty"` // plugin pane only
	Children       []*Node        `json:"children,omitempty" yaml:"children,omitempty"`
}

// Tab is a named top-level collection of panes. At most one tab in a
// document may set Focus.
type Tab struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Focus bool   `json:"focus,omitempty" yaml:"focus,omitempty"`
	Root  *Node  `json:"root" yaml:"root"`
}

// Error is a structural layout error: the document parsed, but its layout
// section violates an invariant.
type Error struct {
	Pos string // "line:col" of the offending node, empty if not positional
	Msg string
}

func (e *Error) Error() string {
	if e.Pos != "" {
		return fmt.Sprintf("layout: %s: %s", e.Pos, e.Msg)
	}
	return "layout: " + e.Msg
}

func errf(pos string, format string, args ...any) *Error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// PluginSchemes lists the recognized plugin location schemes.
var PluginSchemes = []string{"zellij", "file", "http", "https"}
