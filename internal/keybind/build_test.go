package keybind

import (
	"reflect"
	"strings"
	"testing"

	"layout-lens/internal/document"
)

func mustKeybinds(t *testing.T, src string) *document.Node {
	t.Helper()
	doc, err := document.Parse("test", []byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	kb := doc.First("keybinds")
	if kb == nil {
		t.Fatal("no keybinds node in test document")
	}
	return kb
}

func TestBuildActionSequence(t *testing.T) {
	src := `
keybinds {
    normal {
        bind "Alt r" {
            GoToTab 2
            Run "cargo" "run"
            FocusPreviousPane
            CloseFocus
            GoToTab 1
        }
    }
}
`
	table, err := Build(mustKeybinds(t, src))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	actions, ok := table.Lookup("normal", "Alt r")
	if !ok {
		t.Fatal(`Lookup("normal", "Alt r") missed`)
	}
	want := []Action{
		GoToTab{Index: 2},
		Run{Command: "cargo", Args: []string{"run"}},
		FocusPreviousPane{},
		CloseFocus{},
		GoToTab{Index: 1},
	}
	if !reflect.DeepEqual(actions, want) {
		t.Errorf("actions:\n got %v\nwant %v", actions, want)
	}
}

func TestRebindLastWins(t *testing.T) {
	src := `
keybinds {
    normal {
        bind "Ctrl q" { Detach }
        bind "Ctrl q" { CloseFocus }
    }
}
`
	table, err := Build(mustKeybinds(t, src))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	scope := table.Scope("normal")
	if got := len(scope.Bindings()); got != 1 {
		t.Fatalf("bindings: got %d, want exactly 1 after rebind", got)
	}
	actions, _ := table.Lookup("normal", "Ctrl q")
	if !reflect.DeepEqual(actions, []Action{CloseFocus{}}) {
		t.Errorf("actions: got %v, want the later binding", actions)
	}
}

func TestSharedOverriddenByModeScope(t *testing.T) {
	src := `
keybinds {
    shared {
        bind "Ctrl g" { SwitchToMode "locked" }
    }
    normal {
        bind "Ctrl g" { Detach }
    }
}
`
	table, err := Build(mustKeybinds(t, src))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	actions, _ := table.Lookup("normal", "Ctrl g")
	if !reflect.DeepEqual(actions, []Action{Detach{}}) {
		t.Errorf("normal: got %v, want mode-specific override", actions)
	}
	actions, _ = table.Lookup("pane", "Ctrl g")
	if !reflect.DeepEqual(actions, []Action{SwitchToMode{Mode: "locked"}}) {
		t.Errorf("pane: got %v, want shared binding", actions)
	}
}

func TestSharedExcept(t *testing.T) {
	src := `
keybinds {
    shared_except "locked" {
        bind "Ctrl o" { ToggleFloating }
    }
}
`
	table, err := Build(mustKeybinds(t, src))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if _, ok := table.Lookup("locked", "Ctrl o"); ok {
		t.Error("locked should be excluded")
	}
	for _, mode := range []string{"normal", "pane", "session"} {
		if _, ok := table.Lookup(mode, "Ctrl o"); !ok {
			t.Errorf("mode %s missing shared_except binding", mode)
		}
	}
}

func TestSharedAmong(t *testing.T) {
	src := `
keybinds {
    shared_among "resize" "move" {
        bind "h" { FocusPreviousPane }
    }
}
`
	table, err := Build(mustKeybinds(t, src))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if _, ok := table.Lookup("resize", "h"); !ok {
		t.Error("resize missing shared_among binding")
	}
	if _, ok := table.Lookup("normal", "h"); ok {
		t.Error("normal should not be included")
	}
}

func TestMultipleChordsPerBind(t *testing.T) {
	src := `
keybinds {
    pane {
        bind "h" "Left" { FocusPreviousPane }
    }
}
`
	table, err := Build(mustKeybinds(t, src))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	for _, chord := range []string{"h", "Left"} {
		actions, ok := table.Lookup("pane", chord)
		if !ok || !reflect.DeepEqual(actions, []Action{FocusPreviousPane{}}) {
			t.Errorf("chord %q: got %v ok=%v", chord, actions, ok)
		}
	}
}

func TestScopeOrder(t *testing.T) {
	src := `
keybinds {
    tab { bind "n" { FocusNextPane } }
    normal { bind "p" { FocusPreviousPane } }
}
`
	table, err := Build(mustKeybinds(t, src))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	scopes := table.Scopes()
	if len(scopes) != 2 {
		t.Fatalf("scopes: got %d, want 2", len(scopes))
	}
	if scopes[0].Name != "normal" || scopes[1].Name != "tab" {
		t.Errorf("scope order: got [%s %s], want [normal tab]", scopes[0].Name, scopes[1].Name)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{
			name:    "unknown scope",
			src:     `keybinds { flying { bind "q" { Detach } } }`,
			wantMsg: "unknown keybind scope",
		},
		{
			name:    "unknown action",
			src:     `keybinds { normal { bind "q" { Levitate } } }`,
			wantMsg: `unknown action "Levitate"`,
		},
		{
			name:    "bad modifier",
			src:     `keybinds { normal { bind "Meta r" { Detach } } }`,
			wantMsg: "unknown modifier",
		},
		{
			name:    "bind without chord",
			src:     `keybinds { normal { bind { Detach } } }`,
			wantMsg: "bind without a chord",
		},
		{
			name:    "bind without actions",
			src:     `keybinds { normal { bind "q" } }`,
			wantMsg: "without actions",
		},
		{
			name:    "GoToTab zero index",
			src:     `keybinds { normal { bind "q" { GoToTab 0 } } }`,
			wantMsg: "index must be >= 1",
		},
		{
			name:    "GoToTab string arg",
			src:     `keybinds { normal { bind "q" { GoToTab "2" } } }`,
			wantMsg: "GoToTab wants one int",
		},
		{
			name:    "Write out of range",
			src:     `keybinds { normal { bind "q" { Write 300 } } }`,
			wantMsg: "bytes (0-255)",
		},
		{
			name:    "SwitchToMode unknown",
			src:     `keybinds { normal { bind "q" { SwitchToMode "warp" } } }`,
			wantMsg: `unknown mode "warp"`,
		},
		{
			name:    "shared_among without modes",
			src:     `keybinds { shared_among { bind "q" { Detach } } }`,
			wantMsg: "shared_among without modes",
		},
		{
			name:    "non-bind entry in scope",
			src:     `keybinds { normal { unbind "q" } }`,
			wantMsg: "unknown entry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(mustKeybinds(t, tt.src))
			if err == nil {
				t.Fatal("Build() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error: got %q, want substring %q", err, tt.wantMsg)
			}
		})
	}
}

func TestCheckChord(t *testing.T) {
	valid := []string{"q", "F1", "Alt r", "Ctrl Shift p", "Left"}
	for _, chord := range valid {
		if err := CheckChord(chord); err != nil {
			t.Errorf("CheckChord(%q): unexpected error %v", chord, err)
		}
	}
	invalid := []string{"", "Alt ", " r", "foo bar", "Alt  r"}
	for _, chord := range invalid {
		if err := CheckChord(chord); err == nil {
			t.Errorf("CheckChord(%q): want error", chord)
		}
	}
}

func TestActionString(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{GoToTab{Index: 2}, "GoToTab 2"},
		{Run{Command: "cargo", Args: []string{"run", "--release"}}, `Run "cargo" "run" "--release"`},
		{NewPane{}, "NewPane"},
		{NewPane{Direction: "down"}, `NewPane "down"`},
		{Write{Bytes: []int{27, 91}}, "Write 27 91"},
		{SwitchToMode{Mode: "locked"}, `SwitchToMode "locked"`},
	}
	for _, tt := range tests {
		if got := tt.action.String(); got != tt.want {
			t.Errorf("String(): got %q, want %q", got, tt.want)
		}
	}
}
