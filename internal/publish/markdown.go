package publish

import (
	"bytes"
	"fmt"
	"strings"

	"formbuilder/internal/model"
	"formbuilder/internal/mutate"
)

type RenderOptions struct {
	// Title heads the document. Empty means "Form".
	Title string
	// IncludeIDs appends each block's id in backticks.
	IncludeIDs bool
}

// RenderFormMarkdown renders the whole outline as a Markdown document. Top-level
// containers become headings; everything else is a nested bullet list.
func RenderFormMarkdown(forest []model.Node, opt RenderOptions) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	title := strings.TrimSpace(opt.Title)
	if title == "" {
		title = "Form"
	}
	writeLn("# " + title)
	writeLn("")
	writeLn(fmt.Sprintf("%d blocks, %d pages.", len(model.IDs(forest)), countType(forest, model.BlockPage)))
	writeLn("")

	if len(forest) == 0 {
		writeLn("_Empty outline._")
		return buf.String()
	}

	var loose []model.Node
	flushLoose := func() {
		if len(loose) == 0 {
			return
		}
		writeList(&buf, loose, 0, opt)
		writeLn("")
		loose = nil
	}
	for _, n := range forest {
		if !n.CanHaveChildren {
			loose = append(loose, n)
			continue
		}
		flushLoose()
		writeLn("## " + blockTitle(n, opt))
		writeLn("")
		if len(n.Children) == 0 {
			writeLn("_No blocks._")
		} else {
			writeList(&buf, n.Children, 0, opt)
		}
		writeLn("")
	}
	flushLoose()
	return buf.String()
}

// RenderPageMarkdown renders a single top-level block and its subtree.
func RenderPageMarkdown(forest []model.Node, id string, opt RenderOptions) (string, error) {
	n, ok := mutate.Find(forest, strings.TrimSpace(id))
	if !ok {
		return "", mutate.NotFoundError{Kind: "block", ID: id}
	}
	var buf bytes.Buffer
	buf.WriteString("# " + blockTitle(n, opt) + "\n\n")
	if len(n.Children) == 0 {
		buf.WriteString("_No blocks._\n")
		return buf.String(), nil
	}
	writeList(&buf, n.Children, 0, opt)
	return buf.String(), nil
}

func writeList(buf *bytes.Buffer, nodes []model.Node, depth int, opt RenderOptions) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		line := indent + "- " + blockTitle(n, opt)
		if n.Collapsed && len(n.Children) > 0 {
			line += " _(collapsed)_"
		}
		buf.WriteString(line + "\n")
		writeList(buf, n.Children, depth+1, opt)
	}
}

func blockTitle(n model.Node, opt RenderOptions) string {
	label := strings.TrimSpace(n.Label)
	if label == "" {
		label = string(n.Type)
	}
	s := "**" + escape(label) + "**"
	if string(n.Type) != label {
		s += " (" + string(n.Type) + ")"
	}
	if opt.IncludeIDs {
		s += " `" + n.ID + "`"
	}
	return s
}

func escape(s string) string {
	r := strings.NewReplacer(`*`, `\*`, `_`, `\_`, "`", "\\`")
	return r.Replace(s)
}

func countType(forest []model.Node, t model.BlockType) int {
	total := 0
	for _, n := range forest {
		if n.Type == t {
			total++
		}
		total += countType(n.Children, t)
	}
	return total
}
