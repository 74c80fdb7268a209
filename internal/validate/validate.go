// Package validate checks the cross-cutting invariants of a parsed layout
// document and reports every violation it finds, rather than stopping at the
// first. The layout and keybind builders fail fast; this pass exists so a
// document author sees all problems in one run instead of a fix-rerun cycle
// per error.
package validate

import (
	"fmt"

	"layout-lens/internal/document"
	"layout-lens/internal/keybind"
)

// Rule identifies the invariant a violation breaks.
type Rule string

const (
	RuleMultipleFocusedTabs      Rule = "multiple-focused-tabs"
	RuleCommandChildrenConflict  Rule = "command-children-conflict"
	RuleOrphanChildrenMarker     Rule = "orphan-children-marker"
	RuleDuplicateTemplateMarker  Rule = "duplicate-template-marker"
	RuleDuplicateTemplate        Rule = "duplicate-template"
	RuleUnknownPluginScheme      Rule = "unknown-plugin-scheme"
	RuleUnknownLayoutNode        Rule = "unknown-layout-node"
	RuleUnknownKeybindScope      Rule = "unknown-keybind-scope"
	RuleUnknownAction            Rule = "unknown-action"
	RuleMalformedChord           Rule = "malformed-chord"
	RuleMalformedBind            Rule = "malformed-bind"
	RuleInvalidSplitDirection    Rule = "invalid-split-direction"
	RuleMixedTabsAndPanes        Rule = "mixed-tabs-and-panes"
	RuleCommandAttributeMisplace Rule = "command-attribute-misplaced"
)

// Violation is one broken invariant with its source position.
type Violation struct {
	Rule Rule   `json:"rule"`
	Pos  string `json:"pos,omitempty"`
	Msg  string `json:"msg"`
}

func (v Violation) String() string {
	if v.Pos != "" {
		return fmt.Sprintf("%s: %s (%s)", v.Pos, v.Msg, v.Rule)
	}
	return fmt.Sprintf("%s (%s)", v.Msg, v.Rule)
}

type checker struct {
	violations []Violation
}

func (c *checker) add(rule Rule, pos document.Pos, format string, args ...any) {
	c.violations = append(c.violations, Violation{
		Rule: rule,
		Pos:  pos.String(),
		Msg:  fmt.Sprintf(format, args...),
	})
}

// Check walks a parsed document and returns every violation found. A nil or
// empty result means the document satisfies all checked invariants (the
// builders may still reject exotic attribute type errors).
func Check(doc *document.Node) []Violation {
	c := &checker{}
	if layoutNode := doc.First("layout"); layoutNode != nil {
		c.checkLayout(layoutNode)
	}
	if keybindsNode := doc.First("keybinds"); keybindsNode != nil {
		c.checkKeybinds(keybindsNode)
	}
	return c.violations
}

func (c *checker) checkLayout(layoutNode *document.Node) {
	var focused []document.Pos
	sawTemplate := false
	sawTab := false
	sawPane := false

	for _, n := range layoutNode.Children {
		switch n.Tag {
		case "default_tab_template":
			if sawTemplate {
				c.add(RuleDuplicateTemplate, n.Pos, "duplicate default_tab_template")
			}
			sawTemplate = true
			c.checkTemplate(n)
		case "tab":
			sawTab = true
			if n.BoolAttr("focus", false) {
				focused = append(focused, n.Pos)
			}
			c.checkPaneTree(n, false)
		case "pane", "plugin":
			sawPane = true
			c.checkPaneTree(n, false)
		case "children":
			c.add(RuleOrphanChildrenMarker, n.Pos, "children marker outside default_tab_template")
		default:
			c.add(RuleUnknownLayoutNode, n.Pos, "unknown layout node %q", n.Tag)
		}
	}

	if sawTab && sawPane {
		c.add(RuleMixedTabsAndPanes, layoutNode.Pos, "cannot mix tab and pane nodes at the layout top level")
	}
	if len(focused) > 1 {
		c.add(RuleMultipleFocusedTabs, focused[1], "multiple focused tabs (%d tabs claim focus)", len(focused))
	}
}

// checkTemplate checks the splice marker count; everything else in the
// template body is checked like a regular pane tree, with markers allowed.
func (c *checker) checkTemplate(template *document.Node) {
	markers := 0
	var walk func(*document.Node)
	walk = func(n *document.Node) {
		for _, child := range n.Children {
			if child.Tag == "children" {
				markers++
				if markers > 1 {
					c.add(RuleDuplicateTemplateMarker, child.Pos, "default_tab_template has more than one children marker")
				}
				continue
			}
			walk(child)
		}
	}
	walk(template)
	c.checkPaneTree(template, true)
}

// checkPaneTree checks one tab/pane subtree: command+children conflicts,
// plugin location schemes, split_direction values, and stray markers.
func (c *checker) checkPaneTree(n *document.Node, markerOK bool) {
	if v, ok := n.Attr("split_direction"); ok {
		if v.Kind != document.StringVal || (v.Str != "horizontal" && v.Str != "vertical") {
			c.add(RuleInvalidSplitDirection, v.Pos, "split_direction must be horizontal or vertical")
		}
	}

	if n.Tag == "plugin" {
		if v, ok := n.Attr("location"); ok && v.Kind == document.StringVal {
			if !recognizedScheme(v.Str) {
				c.add(RuleUnknownPluginScheme, v.Pos, "unrecognized plugin location scheme in %q", v.Str)
			}
		}
		return
	}

	command := n.StringAttr("command", "")
	paneChildren := 0
	for _, child := range n.Children {
		switch child.Tag {
		case "pane", "plugin":
			paneChildren++
			c.checkPaneTree(child, markerOK)
		case "args":
			if command == "" && n.Tag == "pane" {
				c.add(RuleCommandAttributeMisplace, child.Pos, "args without command")
			}
		case "children":
			if !markerOK {
				c.add(RuleOrphanChildrenMarker, child.Pos, "children marker outside default_tab_template")
			}
		}
	}

	if command != "" && paneChildren > 0 {
		c.add(RuleCommandChildrenConflict, n.Pos, "pane has both a command and children")
	}
}

func recognizedScheme(location string) bool {
	for _, s := range []string{"zellij:", "file:", "http:", "https:"} {
		if len(location) > len(s) && location[:len(s)] == s {
			return true
		}
	}
	return false
}

func (c *checker) checkKeybinds(keybindsNode *document.Node) {
	for _, block := range keybindsNode.Children {
		if !knownScope(block.Tag) {
			c.add(RuleUnknownKeybindScope, block.Pos, "unknown keybind scope %q", block.Tag)
			continue
		}
		for _, entry := range block.Children {
			if entry.Tag != "bind" {
				c.add(RuleMalformedBind, entry.Pos, "unknown entry %q in scope %s (want bind)", entry.Tag, block.Tag)
				continue
			}
			if len(entry.Args) == 0 {
				c.add(RuleMalformedBind, entry.Pos, "bind without a chord")
			}
			for _, v := range entry.Args {
				if v.Kind != document.StringVal {
					c.add(RuleMalformedChord, v.Pos, "bind chord must be a string")
					continue
				}
				if err := keybind.CheckChord(v.Str); err != nil {
					c.add(RuleMalformedChord, v.Pos, "%v", err)
				}
			}
			for _, an := range entry.Children {
				if _, err := keybind.ParseAction(an); err != nil {
					c.add(RuleUnknownAction, an.Pos, "%v", err)
				}
			}
		}
	}
}

func knownScope(tag string) bool {
	switch tag {
	case "shared", "shared_except", "shared_among":
		return true
	}
	for _, m := range keybind.Modes {
		if tag == m {
			return true
		}
	}
	return false
}
