package keybind

import (
	"strings"

	"layout-lens/internal/document"
)

var modifiers = map[string]bool{
	"Alt":   true,
	"Ctrl":  true,
	"Shift": true,
	"Super": true,
}

// Build translates the generic tree rooted at the "keybinds" node into a
// Table. Scope blocks are processed in document order, so a later binding
// for the same chord in the same scope replaces the earlier one — including
// a shared binding overridden by a mode-specific one or vice versa.
func Build(keybindsNode *document.Node) (*Table, error) {
	t := &Table{byName: make(map[string]*Scope)}

	for _, block := range keybindsNode.Children {
		targets, err := scopeTargets(block)
		if err != nil {
			return nil, err
		}
		for _, entry := range block.Children {
			if entry.Tag != "bind" {
				return nil, errf(entry.Pos.String(), "unknown entry %q in scope %s (want bind)", entry.Tag, block.Tag)
			}
			chords, err := bindChords(entry)
			if err != nil {
				return nil, err
			}
			actions, err := bindActions(entry)
			if err != nil {
				return nil, err
			}
			for _, mode := range targets {
				scope := t.scopeFor(mode)
				for _, chord := range chords {
					scope.set(chord, actions)
				}
			}
		}
	}

	t.sortScopes()
	return t, nil
}

// scopeTargets resolves a scope block into the concrete modes it applies to.
func scopeTargets(block *document.Node) ([]string, error) {
	switch block.Tag {
	case "shared":
		return Modes, nil
	case "shared_except":
		excluded, err := modeArgs(block)
		if err != nil {
			return nil, err
		}
		var targets []string
		for _, m := range Modes {
			if !excluded[m] {
				targets = append(targets, m)
			}
		}
		return targets, nil
	case "shared_among":
		included, err := modeArgs(block)
		if err != nil {
			return nil, err
		}
		if len(included) == 0 {
			return nil, errf(block.Pos.String(), "shared_among without modes")
		}
		var targets []string
		for _, m := range Modes {
			if included[m] {
				targets = append(targets, m)
			}
		}
		return targets, nil
	}
	for _, m := range Modes {
		if block.Tag == m {
			return []string{m}, nil
		}
	}
	return nil, errf(block.Pos.String(), "unknown keybind scope %q", block.Tag)
}

func modeArgs(block *document.Node) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, v := range block.Args {
		if v.Kind != document.StringVal {
			return nil, errf(v.Pos.String(), "%s modes must be strings, got %s", block.Tag, v.Kind)
		}
		known := false
		for _, m := range Modes {
			if v.Str == m {
				known = true
				break
			}
		}
		if !known {
			return nil, errf(v.Pos.String(), "unknown mode %q in %s", v.Str, block.Tag)
		}
		out[v.Str] = true
	}
	return out, nil
}

// bindChords extracts and validates the chord arguments of a bind entry.
// A bind may list several chords; each gets the same action sequence.
func bindChords(entry *document.Node) ([]string, error) {
	if len(entry.Args) == 0 {
		return nil, errf(entry.Pos.String(), "bind without a chord")
	}
	chords := make([]string, 0, len(entry.Args))
	for _, v := range entry.Args {
		if v.Kind != document.StringVal {
			return nil, errf(v.Pos.String(), "bind chord must be a string, got %s", v.Kind)
		}
		if err := checkChord(v.Str, v.Pos.String()); err != nil {
			return nil, err
		}
		chords = append(chords, v.Str)
	}
	return chords, nil
}

// checkChord validates a chord: one key, optionally preceded by modifiers,
// separated by single spaces. "Alt r", "Ctrl Shift p", "F1", "q".
func checkChord(chord, pos string) error {
	if chord == "" {
		return errf(pos, "empty chord")
	}
	parts := strings.Split(chord, " ")
	for i, p := range parts {
		if p == "" {
			return errf(pos, "malformed chord %q", chord)
		}
		if i < len(parts)-1 && !modifiers[p] {
			return errf(pos, "malformed chord %q: unknown modifier %q", chord, p)
		}
	}
	return nil
}

// bindActions parses the ordered action list inside a bind block.
func bindActions(entry *document.Node) ([]Action, error) {
	if len(entry.Children) == 0 {
		return nil, errf(entry.Pos.String(), "bind %q without actions", entry.Args[0].Str)
	}
	actions := make([]Action, 0, len(entry.Children))
	for _, an := range entry.Children {
		a, err := parseAction(an)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

func parseAction(an *document.Node) (Action, error) {
	pos := an.Pos.String()
	switch an.Tag {
	case "GoToTab":
		if len(an.Args) != 1 || an.Args[0].Kind != document.IntVal {
			return nil, errf(pos, "GoToTab wants one int argument")
		}
		if an.Args[0].Int < 1 {
			return nil, errf(pos, "GoToTab index must be >= 1, got %d", an.Args[0].Int)
		}
		return GoToTab{Index: an.Args[0].Int}, nil

	case "Run":
		if len(an.Args) == 0 {
			return nil, errf(pos, "Run wants a command")
		}
		strs, err := actionStrings(an)
		if err != nil {
			return nil, err
		}
		return Run{Command: strs[0], Args: strs[1:]}, nil

	case "FocusPreviousPane":
		if err := noArgs(an); err != nil {
			return nil, err
		}
		return FocusPreviousPane{}, nil

	case "FocusNextPane":
		if err := noArgs(an); err != nil {
			return nil, err
		}
		return FocusNextPane{}, nil

	case "CloseFocus":
		if err := noArgs(an); err != nil {
			return nil, err
		}
		return CloseFocus{}, nil

	case "NewPane":
		if len(an.Args) == 0 {
			return NewPane{}, nil
		}
		if len(an.Args) != 1 || an.Args[0].Kind != document.StringVal {
			return nil, errf(pos, "NewPane wants at most one string argument")
		}
		return NewPane{Direction: an.Args[0].Str}, nil

	case "ToggleFloating":
		if err := noArgs(an); err != nil {
			return nil, err
		}
		return ToggleFloating{}, nil

	case "Detach":
		if err := noArgs(an); err != nil {
			return nil, err
		}
		return Detach{}, nil

	case "Write":
		if len(an.Args) == 0 {
			return nil, errf(pos, "Write wants at least one byte")
		}
		bytes := make([]int, 0, len(an.Args))
		for _, v := range an.Args {
			if v.Kind != document.IntVal || v.Int < 0 || v.Int > 255 {
				return nil, errf(v.Pos.String(), "Write arguments must be bytes (0-255)")
			}
			bytes = append(bytes, v.Int)
		}
		return Write{Bytes: bytes}, nil

	case "SwitchToMode":
		if len(an.Args) != 1 || an.Args[0].Kind != document.StringVal {
			return nil, errf(pos, "SwitchToMode wants one string argument")
		}
		mode := an.Args[0].Str
		for _, m := range Modes {
			if mode == m {
				return SwitchToMode{Mode: mode}, nil
			}
		}
		return nil, errf(pos, "SwitchToMode: unknown mode %q", mode)

	default:
		return nil, errf(pos, "unknown action %q", an.Tag)
	}
}

// ParseAction parses a single action node. Exposed for the validate package,
// which walks the document tree itself to collect every violation.
func ParseAction(an *document.Node) (Action, error) {
	return parseAction(an)
}

// CheckChord reports whether a chord string is well formed.
func CheckChord(chord string) error {
	return checkChord(chord, "")
}

func actionStrings(an *document.Node) ([]string, error) {
	out := make([]string, 0, len(an.Args))
	for _, v := range an.Args {
		if v.Kind != document.StringVal {
			return nil, errf(v.Pos.String(), "%s arguments must be strings, got %s", an.Tag, v.Kind)
		}
		out = append(out, v.Str)
	}
	return out, nil
}

func noArgs(an *document.Node) error {
	if len(an.Args) > 0 {
		return errf(an.Pos.String(), "%s takes no arguments", an.Tag)
	}
	return nil
}

// sortScopes orders scopes by their position in Modes.
func (t *Table) sortScopes() {
	ordered := make([]*Scope, 0, len(t.scopes))
	for _, m := range Modes {
		if s, ok := t.byName[m]; ok {
			ordered = append(ordered, s)
		}
	}
	t.scopes = ordered
}
