// Package keybind translates the generic tree rooted at "keybinds" into a
// table mapping key chords to ordered action sequences, grouped by scope.
//
// Scopes are input modes ("normal", "pane", "tab", ...) plus the pseudo
// scopes "shared" and "shared_except", which are expanded into the concrete
// modes at build time. Within one scope, binding the same chord twice keeps
// the later definition: layered configuration overrides, not an error.
//
// Actions in one binding execute strictly in sequence against shared session
// state; the table itself is immutable once built.
package keybind

import (
	"fmt"
	"strings"
)

// Modes lists the concrete keybind scopes, in display order. The pseudo
// scopes shared/shared_except expand into these.
var Modes = []string{
	"normal", "locked", "pane", "tab", "resize", "move", "scroll", "search", "session",
}

// Action is one operation executed against the live session when a chord is
// pressed. The concrete types below are the only implementations.
type Action interface {
	// String renders the action in document syntax, e.g. `GoToTab 2`.
	String() string
	isAction()
}

// GoToTab switches to the tab with the given 1-based index.
type GoToTab struct {
	Index int
}

// Run spawns a command in a new pane.
type Run struct {
	Command string
	Args    []string
}

// FocusPreviousPane moves focus to the previously focused pane.
type FocusPreviousPane struct{}

// FocusNextPane moves focus to the next pane in layout order.
type FocusNextPane struct{}

// CloseFocus closes the focused pane.
type CloseFocus struct{}

// NewPane opens a new pane, optionally in a given direction.
type NewPane struct {
	Direction string // "", "down", "right", ...
}

// ToggleFloating toggles the floating pane layer.
type ToggleFloating struct{}

// Detach detaches the client from the session.
type Detach struct{}

// Write sends raw bytes to the focused pane.
type Write struct {
	Bytes []int
}

// SwitchToMode changes the active input mode.
type SwitchToMode struct {
	Mode string
}

func (GoToTab) isAction()           {}
func (Run) isAction()               {}
func (FocusPreviousPane) isAction() {}
func (FocusNextPane) isAction()     {}
func (CloseFocus) isAction()        {}
func (NewPane) isAction()           {}
func (ToggleFloating) isAction()    {}
func (Detach) isAction()            {}
func (Write) isAction()             {}
func (SwitchToMode) isAction()      {}

func (a GoToTab) String() string { return fmt.Sprintf("GoToTab %d", a.Index) }

func (a Run) String() string {
	parts := []string{"Run", quote(a.Command)}
	for _, arg := range a.Args {
		parts = append(parts, quote(arg))
	}
	return strings.Join(parts, " ")
}

func (FocusPreviousPane) String() string { return "FocusPreviousPane" }
func (FocusNextPane) String() string     { return "FocusNextPane" }
func (CloseFocus) String() string        { return "CloseFocus" }

func (a NewPane) String() string {
	if a.Direction == "" {
		return "NewPane"
	}
	return "NewPane " + quote(a.Direction)
}

func (ToggleFloating) String() string { return "ToggleFloating" }
func (Detach) String() string         { return "Detach" }

func (a Write) String() string {
	parts := []string{"Write"}
	for _, b := range a.Bytes {
		parts = append(parts, fmt.Sprintf("%d", b))
	}
	return strings.Join(parts, " ")
}

func (a SwitchToMode) String() string { return "SwitchToMode " + quote(a.Mode) }

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}

// Binding is one chord with its action sequence, in declaration order.
type Binding struct {
	Chord   string
	Actions []Action
}

// Scope is a concrete mode with its bindings. Chords keeps first-declaration
// order; rebinding a chord updates the actions in place.
type Scope struct {
	Name     string
	bindings []Binding
	index    map[string]int
}

// Bindings returns the scope's bindings in declaration order.
func (s *Scope) Bindings() []Binding {
	return s.bindings
}

// Lookup returns the action sequence bound to a chord.
func (s *Scope) Lookup(chord string) ([]Action, bool) {
	if s == nil || s.index == nil {
		return nil, false
	}
	i, ok := s.index[chord]
	if !ok {
		return nil, false
	}
	return s.bindings[i].Actions, true
}

func (s *Scope) set(chord string, actions []Action) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[chord]; ok {
		s.bindings[i].Actions = actions
		return
	}
	s.index[chord] = len(s.bindings)
	s.bindings = append(s.bindings, Binding{Chord: chord, Actions: actions})
}

// Table is the full keybind table: one scope per concrete mode, in Modes
// order. Modes with no bindings are omitted.
type Table struct {
	scopes []*Scope
	byName map[string]*Scope
}

// Scopes returns the non-empty scopes in mode order.
func (t *Table) Scopes() []*Scope {
	if t == nil {
		return nil
	}
	return t.scopes
}

// Scope returns the named scope, or nil if it has no bindings.
func (t *Table) Scope(name string) *Scope {
	if t == nil {
		return nil
	}
	return t.byName[name]
}

// Lookup returns the action sequence for a chord in the named scope.
func (t *Table) Lookup(scope, chord string) ([]Action, bool) {
	return t.Scope(scope).Lookup(chord)
}

func (t *Table) scopeFor(name string) *Scope {
	if s, ok := t.byName[name]; ok {
		return s
	}
	s := &Scope{Name: name}
	t.byName[name] = s
	t.scopes = append(t.scopes, s)
	return s
}

// Error is a keybind construction error: unknown action, malformed chord,
// or a malformed scope block.
type Error struct {
	Pos string
	Msg string
}

func (e *Error) Error() string {
	if e.Pos != "" {
		return fmt.Sprintf("keybind: %s: %s", e.Pos, e.Msg)
	}
	return "keybind: " + e.Msg
}

func errf(pos string, format string, args ...any) *Error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
