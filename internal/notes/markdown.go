package notes

import (
	"fmt"
	"strings"
	"time"
)

// Markdown renders a note as a Markdown document.
func Markdown(n *Note) string {
	var b strings.Builder

	b.WriteString("# Meeting notes\n\n")
	if !n.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "_%s_\n\n", n.CreatedAt.UTC().Format(time.RFC1123))
	}

	b.WriteString("## Summary\n\n")
	b.WriteString(n.Summary)
	b.WriteString("\n\n")

	b.WriteString("## Action items\n\n")
	if len(n.ActionItems) == 0 {
		b.WriteString("_None._\n")
	}
	for _, item := range n.ActionItems {
		fmt.Fprintf(&b, "- [ ] %s", item.Text)
		var meta []string
		if item.Owner != nil {
			meta = append(meta, "owner: "+*item.Owner)
		}
		if item.DueDate != nil {
			meta = append(meta, "due: "+*item.DueDate)
		}
		if len(meta) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(meta, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n## Decisions\n\n")
	if len(n.Decisions) == 0 {
		b.WriteString("_None._\n")
	}
	for _, d := range n.Decisions {
		fmt.Fprintf(&b, "- %s\n", d)
	}

	if len(n.Keywords) > 0 {
		b.WriteString("\n## Keywords\n\n")
		tags := make([]string, len(n.Keywords))
		for i, k := range n.Keywords {
			tags[i] = "`" + k + "`"
		}
		b.WriteString(strings.Join(tags, " "))
		b.WriteString("\n")
	}

	return b.String()
}
