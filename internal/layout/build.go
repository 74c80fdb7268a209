package layout

import (
	"strings"

	"layout-lens/internal/document"
)

// Build translates the generic tree rooted at the "layout" node into an
// ordered sequence of tabs. It fails with *Error on the first structural
// violation; use the validate package to collect every violation at once.
func Build(layoutNode *document.Node) ([]Tab, error) {
	b := &builder{}
	return b.build(layoutNode)
}

type builder struct {
	template   *document.Node
	focusedTab string // position of the first focused tab, for the error message
}

func (b *builder) build(layoutNode *document.Node) ([]Tab, error) {
	var tabNodes []*document.Node
	var loose []*document.Node

	for _, c := range layoutNode.Children {
		switch c.Tag {
		case "default_tab_template":
			if b.template != nil {
				return nil, errf(c.Pos.String(), "duplicate default_tab_template")
			}
			if err := checkTemplateMarkers(c); err != nil {
				return nil, err
			}
			b.template = c
		case "tab":
			tabNodes = append(tabNodes, c)
		case "pane", "plugin":
			loose = append(loose, c)
		case "children":
			return nil, errf(c.Pos.String(), "children marker outside default_tab_template")
		default:
			return nil, errf(c.Pos.String(), "unknown layout node %q", c.Tag)
		}
	}

	if len(tabNodes) > 0 && len(loose) > 0 {
		return nil, errf(loose[0].Pos.String(), "cannot mix tab and pane nodes at the layout top level")
	}

	// Bare panes under layout form a single implicit tab.
	if len(tabNodes) == 0 && len(loose) > 0 {
		root, err := b.buildContainer(layoutNode, loose, SplitHorizontal)
		if err != nil {
			return nil, err
		}
		return []Tab{{Root: root}}, nil
	}

	var tabs []Tab
	for _, tn := range tabNodes {
		tab, err := b.buildTab(tn)
		if err != nil {
			return nil, err
		}
		tabs = append(tabs, tab)
	}
	return tabs, nil
}

// checkTemplateMarkers verifies the template contains at most one children
// marker. Zero markers is legal: tabs then cannot contribute content.
func checkTemplateMarkers(template *document.Node) error {
	count := 0
	var walk func(*document.Node) error
	walk = func(n *document.Node) error {
		for _, c := range n.Children {
			if c.Tag == "children" {
				count++
				if count > 1 {
					return errf(c.Pos.String(), "default_tab_template has more than one children marker")
				}
			}
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(template)
}

func (b *builder) buildTab(tn *document.Node) (Tab, error) {
	tab := Tab{Name: tn.StringAttr("name", "")}

	if v, ok := tn.Attr("focus"); ok {
		if v.Kind != document.BoolVal {
			return Tab{}, errf(tn.Pos.String(), "tab attribute focus: want bool, got %s", v.Kind)
		}
		tab.Focus = v.Bool
		if tab.Focus {
			if b.focusedTab != "" {
				return Tab{}, errf(tn.Pos.String(), "multiple focused tabs (first at %s)", b.focusedTab)
			}
			b.focusedTab = tn.Pos.String()
		}
	}

	body := tn.Children
	if b.template != nil {
		body = splice(b.template.Children, tn.Children)
	}

	root, err := b.buildContainer(tn, body, SplitHorizontal)
	if err != nil {
		return Tab{}, err
	}
	tab.Root = root
	return tab, nil
}

// splice replaces the children marker in the template body with the tab's
// own nodes. A tab with no explicit body yields the template verbatim.
func splice(template, tabBody []*document.Node) []*document.Node {
	out := make([]*document.Node, 0, len(template)+len(tabBody))
	for _, n := range template {
		if n.Tag == "children" {
			out = append(out, tabBody...)
			continue
		}
		if len(n.Children) > 0 {
			clone := *n
			clone.Children = splice(n.Children, tabBody)
			out = append(out, &clone)
			continue
		}
		out = append(out, n)
	}
	return out
}

// buildContainer builds a container node from dn's attributes and the given
// child document nodes. dn may be a tab node or a pane node.
func (b *builder) buildContainer(dn *document.Node, body []*document.Node, parentDir SplitDirection) (*Node, error) {
	n, err := b.paneAttrs(dn, parentDir)
	if err != nil {
		return nil, err
	}

	for _, c := range body {
		switch c.Tag {
		case "pane":
			child, err := b.buildContainer(c, c.Children, n.SplitDirection)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		case "plugin":
			child, err := b.buildPlugin(c)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		case "args":
			args, err := stringArgs(c)
			if err != nil {
				return nil, err
			}
			n.Args = args
		case "children":
			return nil, errf(c.Pos.String(), "children marker outside default_tab_template")
		default:
			return nil, errf(c.Pos.String(), "unknown node %q inside %s", c.Tag, dn.Tag)
		}
	}

	if n.Command == "" {
		if len(n.Args) > 0 {
			return nil, errf(dn.Pos.String(), "args without command")
		}
		if n.StartSuspended {
			return nil, errf(dn.Pos.String(), "start_suspended without command")
		}
	}
	if n.Command != "" && len(n.Children) > 0 {
		return nil, errf(dn.Pos.String(), "pane has both a command and children")
	}
	if n.Edit != "" && len(n.Children) > 0 {
		return nil, errf(dn.Pos.String(), "pane has both edit and children")
	}
	return n, nil
}

// paneAttrs resolves the common pane attributes on a tab or pane node.
func (b *builder) paneAttrs(dn *document.Node, parentDir SplitDirection) (*Node, error) {
	n := &Node{Kind: KindPane, SplitDirection: parentDir}

	for _, a := range dn.Attrs {
		switch a.Key {
		case "name":
			s, err := wantString(a)
			if err != nil {
				return nil, err
			}
			n.Name = s
		case "focus":
			v, err := wantBool(a)
			if err != nil {
				return nil, err
			}
			n.Focus = v
		case "split_direction":
			s, err := wantString(a)
			if err != nil {
				return nil, err
			}
			switch s {
			case "horizontal":
				n.SplitDirection = SplitHorizontal
			case "vertical":
				n.SplitDirection = SplitVertical
			default:
				return nil, errf(a.Pos.String(), "split_direction must be horizontal or vertical, got %q", s)
			}
		case "borderless":
			v, err := wantBool(a)
			if err != nil {
				return nil, err
			}
			n.Borderless = v
		case "size":
			sz, err := wantSize(a)
			if err != nil {
				return nil, err
			}
			n.Size = sz
		case "command":
			s, err := wantString(a)
			if err != nil {
				return nil, err
			}
			n.Command = s
		case "start_suspended":
			v, err := wantBool(a)
			if err != nil {
				return nil, err
			}
			n.StartSuspended = v
		case "edit":
			s, err := wantString(a)
			if err != nil {
				return nil, err
			}
			n.Edit = s
		default:
			return nil, errf(a.Pos.String(), "unknown %s attribute %q", dn.Tag, a.Key)
		}
	}
	return n, nil
}

// buildPlugin builds a plugin pane. Plugins are leaves: they cannot have
// pane children, and their location must use a recognized scheme.
func (b *builder) buildPlugin(dn *document.Node) (*Node, error) {
	n := &Node{Kind: KindPlugin}

	for _, a := range dn.Attrs {
		switch a.Key {
		case "location":
			s, err := wantString(a)
			if err != nil {
				return nil, err
			}
			if err := checkScheme(s, a.Pos.String()); err != nil {
				return nil, err
			}
			n.Location = s
		case "size":
			sz, err := wantSize(a)
			if err != nil {
				return nil, err
			}
			n.Size = sz
		case "borderless":
			v, err := wantBool(a)
			if err != nil {
				return nil, err
			}
			n.Borderless = v
		case "name":
			s, err := wantString(a)
			if err != nil {
				return nil, err
			}
			n.Name = s
		default:
			return nil, errf(a.Pos.String(), "unknown plugin attribute %q", a.Key)
		}
	}

	if n.Location == "" {
		return nil, errf(dn.Pos.String(), "plugin without location")
	}
	if len(dn.Children) > 0 {
		return nil, errf(dn.Pos.String(), "plugin cannot have children")
	}
	return n, nil
}

func checkScheme(location, pos string) error {
	idx := strings.Index(location, ":")
	if idx <= 0 {
		return errf(pos, "plugin location %q has no scheme (want one of %s)",
			location, strings.Join(PluginSchemes, ", "))
	}
	scheme := location[:idx]
	for _, s := range PluginSchemes {
		if scheme == s {
			return nil
		}
	}
	return errf(pos, "unrecognized plugin location scheme %q (want one of %s)",
		scheme, strings.Join(PluginSchemes, ", "))
}

func stringArgs(dn *document.Node) ([]string, error) {
	if len(dn.Args) == 0 {
		return nil, errf(dn.Pos.String(), "args without values")
	}
	out := make([]string, 0, len(dn.Args))
	for _, v := range dn.Args {
		if v.Kind != document.StringVal {
			return nil, errf(v.Pos.String(), "args values must be strings, got %s", v.Kind)
		}
		out = append(out, v.Str)
	}
	return out, nil
}

func wantString(a document.Attr) (string, error) {
	if a.Value.Kind != document.StringVal {
		return "", errf(a.Pos.String(), "attribute %s: want string, got %s", a.Key, a.Value.Kind)
	}
	return a.Value.Str, nil
}

func wantBool(a document.Attr) (bool, error) {
	if a.Value.Kind != document.BoolVal {
		return false, errf(a.Pos.String(), "attribute %s: want bool, got %s", a.Key, a.Value.Kind)
	}
	return a.Value.Bool, nil
}

func wantSize(a document.Attr) (Size, error) {
	switch a.Value.Kind {
	case document.IntVal:
		if a.Value.Int <= 0 {
			return Size{}, errf(a.Pos.String(), "size must be positive, got %d", a.Value.Int)
		}
		return Size{Value: a.Value.Int}, nil
	case document.PercentVal:
		if a.Value.Int < 1 || a.Value.Int > 100 {
			return Size{}, errf(a.Pos.String(), "size percentage must be between 1 and 100, got %d%%", a.Value.Int)
		}
		return Size{Value: a.Value.Int, Percent: true}, nil
	default:
		return Size{}, errf(a.Pos.String(), "attribute size: want int or percentage, got %s", a.Value.Kind)
	}
}

// FocusedTab returns the index of the focused tab, or -1 if none.
func FocusedTab(tabs []Tab) int {
	for i, t := range tabs {
		if t.Focus {
			return i
		}
	}
	return -1
}

// CountPanes returns the number of leaf panes (including plugins) in a tree.
func CountPanes(n *Node) int {
	if n == nil {
		return 0
	}
	if len(n.Children) == 0 {
		return 1
	}
	total := 0
	for _, c := range n.Children {
		total += CountPanes(c)
	}
	return total
}
