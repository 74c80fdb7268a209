package document

import (
	"errors"
	"strings"
	"testing"
)

func TestParseBasic(t *testing.T) {
	src := `
layout {
    tab name="editor" focus=true {
        pane edit="src/main.go"
    }
}
`
	doc, err := Parse("test", []byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	layout := doc.First("layout")
	if layout == nil {
		t.Fatal("no layout node")
	}
	tabs := layout.All("tab")
	if len(tabs) != 1 {
		t.Fatalf("tabs: got %d, want 1", len(tabs))
	}

	tab := tabs[0]
	if got := tab.StringAttr("name", ""); got != "editor" {
		t.Errorf("name: got %q, want %q", got, "editor")
	}
	if !tab.BoolAttr("focus", false) {
		t.Error("focus: got false, want true")
	}
	if len(tab.Children) != 1 || tab.Children[0].Tag != "pane" {
		t.Fatalf("tab children: got %v", tab.Children)
	}
	if got := tab.Children[0].StringAttr("edit", ""); got != "src/main.go" {
		t.Errorf("edit: got %q, want %q", got, "src/main.go")
	}
}

func TestParseSiblingOrderPreserved(t *testing.T) {
	src := `
layout {
    pane name="one"
    pane name="two"
    pane name="three"
}
`
	doc, err := Parse("test", []byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	panes := doc.First("layout").All("pane")
	want := []string{"one", "two", "three"}
	if len(panes) != len(want) {
		t.Fatalf("panes: got %d, want %d", len(panes), len(want))
	}
	for i, name := range want {
		if got := panes[i].StringAttr("name", ""); got != name {
			t.Errorf("pane[%d]: got %q, want %q", i, got, name)
		}
	}
}

func TestParseLiterals(t *testing.T) {
	src := `pane size=60% count=3 borderless=true command="cargo"`
	doc, err := Parse("test", []byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	pane := doc.First("pane")

	if v, _ := pane.Attr("size"); v.Kind != PercentVal || v.Int != 60 {
		t.Errorf("size: got %v, want 60%%", v)
	}
	if v, _ := pane.Attr("count"); v.Kind != IntVal || v.Int != 3 {
		t.Errorf("count: got %v, want 3", v)
	}
	if v, _ := pane.Attr("borderless"); v.Kind != BoolVal || !v.Bool {
		t.Errorf("borderless: got %v, want true", v)
	}
	if v, _ := pane.Attr("command"); v.Kind != StringVal || v.Str != "cargo" {
		t.Errorf("command: got %v, want cargo", v)
	}
}

func TestParsePositionalArgs(t *testing.T) {
	src := `args "run" "--release" "-p" "server"`
	doc, err := Parse("test", []byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	node := doc.First("args")
	want := []string{"run", "--release", "-p", "server"}
	if len(node.Args) != len(want) {
		t.Fatalf("args: got %d, want %d", len(node.Args), len(want))
	}
	for i, w := range want {
		if node.Args[i].Str != w {
			t.Errorf("args[%d]: got %q, want %q", i, node.Args[i].Str, w)
		}
	}
}

func TestParseComments(t *testing.T) {
	src := `
// full line comment
pane name="kept" // trailing comment
// bind "Alt r" { GoToTab 1 }
pane name="second"
`
	doc, err := Parse("test", []byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(doc.Children) != 2 {
		t.Fatalf("top-level nodes: got %d, want 2 (comments must be inert)", len(doc.Children))
	}
	if got := doc.Children[0].StringAttr("name", ""); got != "kept" {
		t.Errorf("first node name: got %q, want %q", got, "kept")
	}
}

func TestParseSemicolonSeparated(t *testing.T) {
	src := `bind "Alt r" { GoToTab 2; FocusPreviousPane; CloseFocus }`
	doc, err := Parse("test", []byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	bind := doc.First("bind")
	if len(bind.Children) != 3 {
		t.Fatalf("actions: got %d, want 3", len(bind.Children))
	}
	tags := []string{"GoToTab", "FocusPreviousPane", "CloseFocus"}
	for i, tag := range tags {
		if bind.Children[i].Tag != tag {
			t.Errorf("action[%d]: got %q, want %q", i, bind.Children[i].Tag, tag)
		}
	}
	if bind.Children[0].Args[0].Int != 2 {
		t.Errorf("GoToTab arg: got %d, want 2", bind.Children[0].Args[0].Int)
	}
}

func TestParseStringEscapes(t *testing.T) {
	src := `pane command="echo \"hi\"\n"`
	doc, err := Parse("test", []byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got := doc.First("pane").StringAttr("command", ""); got != "echo \"hi\"\n" {
		t.Errorf("command: got %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantMsg  string
		wantLine int
	}{
		{
			name:     "unterminated block",
			src:      "layout {\n    pane\n",
			wantMsg:  "unterminated block",
			wantLine: 3,
		},
		{
			name:     "unterminated string",
			src:      "pane command=\"cargo\n",
			wantMsg:  "unterminated string",
			wantLine: 1,
		},
		{
			name:     "invalid literal",
			src:      "pane size=big\n",
			wantMsg:  "invalid literal",
			wantLine: 1,
		},
		{
			name:     "invalid percentage",
			src:      "pane size=a%\n",
			wantMsg:  "invalid",
			wantLine: 1,
		},
		{
			name:     "dangling equals",
			src:      "pane = true\n",
			wantMsg:  "unexpected '='",
			wantLine: 1,
		},
		{
			name:     "stray closing brace",
			src:      "}\n",
			wantMsg:  "unexpected",
			wantLine: 1,
		},
		{
			name:     "bad escape",
			src:      `pane command="\x41"`,
			wantMsg:  "invalid escape",
			wantLine: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test", []byte(tt.src))
			if err == nil {
				t.Fatal("Parse() succeeded, want error")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error type: got %T, want *ParseError", err)
			}
			if !strings.Contains(pe.Msg, tt.wantMsg) {
				t.Errorf("message: got %q, want substring %q", pe.Msg, tt.wantMsg)
			}
			if pe.Pos.Line != tt.wantLine {
				t.Errorf("line: got %d, want %d", pe.Pos.Line, tt.wantLine)
			}
		})
	}
}

func TestAttrLastOccurrenceWins(t *testing.T) {
	src := `pane name="first" name="second"`
	doc, err := Parse("test", []byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got := doc.First("pane").StringAttr("name", ""); got != "second" {
		t.Errorf("name: got %q, want %q", got, "second")
	}
}
