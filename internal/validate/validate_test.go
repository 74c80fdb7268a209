package validate

import (
	"strings"
	"testing"

	"layout-lens/internal/document"
)

func mustParse(t *testing.T, src string) *document.Node {
	t.Helper()
	doc, err := document.Parse("test", []byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return doc
}

func rules(vs []Violation) map[Rule]int {
	out := make(map[Rule]int)
	for _, v := range vs {
		out[v.Rule]++
	}
	return out
}

func TestCheckCleanDocument(t *testing.T) {
	src := `
layout {
    default_tab_template {
        pane size=1 borderless=true {
            plugin location="zellij:tab-bar"
        }
        children
    }
    tab name="main" focus=true {
        pane command="cargo" {
            args "run"
        }
    }
}
keybinds {
    normal {
        bind "Alt r" { GoToTab 1; Run "make" }
    }
}
`
	if vs := Check(mustParse(t, src)); len(vs) != 0 {
		t.Errorf("Check() on clean document: got %v, want none", vs)
	}
}

func TestCheckCollectsEveryViolation(t *testing.T) {
	// One run must surface every problem, not stop at the first.
	src := `
layout {
    tab name="a" focus=true {
        pane command="cargo" {
            pane
        }
    }
    tab name="b" focus=true {
        children
        plugin location="gopher://bar"
    }
    sidebar
}
keybinds {
    flying {
        bind "q" { Detach }
    }
    normal {
        bind "Meta r" { Levitate }
        bind { CloseFocus }
    }
}
`
	vs := Check(mustParse(t, src))
	got := rules(vs)

	want := map[Rule]int{
		RuleMultipleFocusedTabs:     1,
		RuleCommandChildrenConflict: 1,
		RuleOrphanChildrenMarker:    1,
		RuleUnknownPluginScheme:     1,
		RuleUnknownLayoutNode:       1,
		RuleUnknownKeybindScope:     1,
		RuleMalformedChord:          1,
		RuleUnknownAction:           1,
		RuleMalformedBind:           1,
	}
	for rule, n := range want {
		if got[rule] != n {
			t.Errorf("rule %s: got %d violations, want %d (all: %v)", rule, got[rule], n, vs)
		}
	}
	if len(vs) != 9 {
		t.Errorf("total violations: got %d, want 9: %v", len(vs), vs)
	}
}

func TestCheckMultipleFocusReportsCount(t *testing.T) {
	src := `
layout {
    tab focus=true
    tab focus=true
    tab focus=true
}
`
	vs := Check(mustParse(t, src))
	if len(vs) != 1 {
		t.Fatalf("violations: got %v, want exactly one", vs)
	}
	if vs[0].Rule != RuleMultipleFocusedTabs {
		t.Errorf("rule: got %s", vs[0].Rule)
	}
	if want := "3 tabs claim focus"; !strings.Contains(vs[0].Msg, want) {
		t.Errorf("msg: got %q, want substring %q", vs[0].Msg, want)
	}
}

func TestCheckTemplateMarkers(t *testing.T) {
	src := `
layout {
    default_tab_template {
        children
        pane {
            children
        }
    }
    tab name="a"
}
`
	vs := Check(mustParse(t, src))
	got := rules(vs)
	if got[RuleDuplicateTemplateMarker] != 1 {
		t.Errorf("duplicate marker: got %v", vs)
	}
	if got[RuleOrphanChildrenMarker] != 0 {
		t.Errorf("markers inside the template must not count as orphans: %v", vs)
	}
}

func TestCheckDuplicateTemplate(t *testing.T) {
	src := `
layout {
    default_tab_template { children }
    default_tab_template { children }
    tab name="a"
}
`
	vs := Check(mustParse(t, src))
	if got := rules(vs)[RuleDuplicateTemplate]; got != 1 {
		t.Errorf("duplicate template: got %d violations (%v), want 1", got, vs)
	}
}

func TestCheckMixedTabsAndPanes(t *testing.T) {
	src := `
layout {
    tab name="a"
    pane
}
`
	vs := Check(mustParse(t, src))
	if got := rules(vs)[RuleMixedTabsAndPanes]; got != 1 {
		t.Errorf("mixed tabs and panes: got %v", vs)
	}
}

func TestCheckSplitDirection(t *testing.T) {
	src := `
layout {
    tab {
        pane split_direction="diagonal" {
            pane
            pane
        }
    }
}
`
	vs := Check(mustParse(t, src))
	if got := rules(vs)[RuleInvalidSplitDirection]; got != 1 {
		t.Errorf("split direction: got %v", vs)
	}
}

func TestCheckKeybindsOnlyDocument(t *testing.T) {
	src := `
keybinds {
    normal {
        bind "Ctrl q" { Detach }
    }
}
`
	if vs := Check(mustParse(t, src)); len(vs) != 0 {
		t.Errorf("keybinds-only document: got %v, want none", vs)
	}
}
