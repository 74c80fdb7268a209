package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Render serializes tabs back into document syntax. Rendering a built layout
// and parsing it again yields an equivalent tree (comments and the original
// template structure are not preserved: the template is already spliced).
func Render(tabs []Tab) string {
	var b strings.Builder
	b.WriteString("layout {\n")
	for _, t := range tabs {
		renderTab(&b, t, 1)
	}
	b.WriteString("}\n")
	return b.String()
}

func renderTab(b *strings.Builder, t Tab, depth int) {
	indent := strings.Repeat("    ", depth)
	b.WriteString(indent + "tab")
	if t.Name != "" {
		fmt.Fprintf(b, " name=%s", strconv.Quote(t.Name))
	}
	if t.Focus {
		b.WriteString(" focus=true")
	}
	if t.Root != nil {
		writeRootAttrs(b, t.Root)
		if len(t.Root.Children) > 0 {
			b.WriteString(" {\n")
			for _, c := range t.Root.Children {
				renderNode(b, c, t.Root.SplitDirection, depth+1)
			}
			b.WriteString(indent + "}")
		}
	}
	b.WriteString("\n")
}

// writeRootAttrs writes the attributes a tab carries on its root container.
// Name and focus already live on the Tab itself.
func writeRootAttrs(b *strings.Builder, root *Node) {
	if root.SplitDirection != SplitHorizontal && root.SplitDirection != SplitInherit {
		fmt.Fprintf(b, " split_direction=%s", strconv.Quote(string(root.SplitDirection)))
	}
}

func renderNode(b *strings.Builder, n *Node, parentDir SplitDirection, depth int) {
	indent := strings.Repeat("    ", depth)

	if n.Kind == KindPlugin {
		b.WriteString(indent + "plugin")
		if n.Name != "" {
			fmt.Fprintf(b, " name=%s", strconv.Quote(n.Name))
		}
		fmt.Fprintf(b, " location=%s", strconv.Quote(n.Location))
		writeSize(b, n)
		b.WriteString("\n")
		return
	}

	b.WriteString(indent + "pane")
	if n.Name != "" {
		fmt.Fprintf(b, " name=%s", strconv.Quote(n.Name))
	}
	if n.Focus {
		b.WriteString(" focus=true")
	}
	if n.SplitDirection != parentDir && n.SplitDirection != SplitInherit {
		fmt.Fprintf(b, " split_direction=%s", strconv.Quote(string(n.SplitDirection)))
	}
	writeSize(b, n)
	if n.Command != "" {
		fmt.Fprintf(b, " command=%s", strconv.Quote(n.Command))
	}
	if n.StartSuspended {
		b.WriteString(" start_suspended=true")
	}
	if n.Edit != "" {
		fmt.Fprintf(b, " edit=%s", strconv.Quote(n.Edit))
	}

	hasBody := len(n.Children) > 0 || len(n.Args) > 0
	if hasBody {
		b.WriteString(" {\n")
		if len(n.Args) > 0 {
			b.WriteString(strings.Repeat("    ", depth+1) + "args")
			for _, a := range n.Args {
				b.WriteString(" " + strconv.Quote(a))
			}
			b.WriteString("\n")
		}
		for _, c := range n.Children {
			renderNode(b, c, n.SplitDirection, depth+1)
		}
		b.WriteString(indent + "}")
	}
	b.WriteString("\n")
}

func writeSize(b *strings.Builder, n *Node) {
	if !n.Size.IsZero() {
		fmt.Fprintf(b, " size=%s", n.Size)
	}
	if n.Borderless {
		b.WriteString(" borderless=true")
	}
}
