// Package document loads the guideline text the pipeline answers
// against. The document is read once at process start and never
// mutated afterwards.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Load reads the guideline from path and returns its plain text.
// Markdown files are stripped to prose so the chunker sees paragraph
// and sentence boundaries instead of markup. A missing or empty file
// is an error: the service has nothing to answer against.
func Load(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}

	var docText string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		docText = StripMarkdown(content)
	default:
		docText = string(content)
	}

	docText = strings.TrimSpace(docText)
	if docText == "" {
		return "", fmt.Errorf("document %s is empty", path)
	}
	return docText, nil
}

var mdParser = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)

// StripMarkdown parses markdown and returns its text content, with
// block elements separated by blank lines and headings kept on their
// own line. Tables come out as pipe-separated rows.
func StripMarkdown(content []byte) string {
	doc := mdParser.Parser().Parse(text.NewReader(content))

	var builder strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading, *ast.Paragraph:
			ensureParagraphBreak(&builder)
			return ast.WalkContinue, nil

		case *ast.ListItem:
			ensureLineBreak(&builder)
			return ast.WalkContinue, nil

		case *ast.Text:
			builder.Write(node.Segment.Value(content))
			if node.SoftLineBreak() || node.HardLineBreak() {
				builder.WriteString("\n")
			}
			return ast.WalkContinue, nil

		case *ast.String:
			builder.Write(node.Value)
			return ast.WalkContinue, nil

		case *ast.CodeBlock:
			ensureParagraphBreak(&builder)
			writeLines(&builder, node, content)
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			ensureParagraphBreak(&builder)
			writeLines(&builder, node, content)
			return ast.WalkSkipChildren, nil
		}

		// Table extension nodes are matched by kind name, same trick
		// the goldmark docs use for extension ASTs.
		kindName := n.Kind().String()
		if strings.Contains(kindName, "TableRow") || strings.Contains(kindName, "TableHeader") {
			ensureLineBreak(&builder)
			builder.WriteString(tableRowText(n, content))
			return ast.WalkSkipChildren, nil
		}

		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(builder.String())
}

// writeLines appends a block node's raw lines.
func writeLines(builder *strings.Builder, n ast.Node, content []byte) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		builder.Write(line.Value(content))
	}
}

// tableRowText flattens a table row into pipe-separated cells.
func tableRowText(row ast.Node, content []byte) string {
	var cells []string
	_ = ast.Walk(row, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if strings.Contains(n.Kind().String(), "TableCell") {
			cells = append(cells, strings.TrimSpace(nodeText(n, content)))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(cells, " | ")
}

// nodeText collects the text content of a node and its children.
func nodeText(n ast.Node, content []byte) string {
	var builder strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			builder.Write(v.Segment.Value(content))
		case *ast.String:
			builder.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return builder.String()
}

func ensureParagraphBreak(builder *strings.Builder) {
	s := builder.String()
	if s == "" || strings.HasSuffix(s, "\n\n") {
		return
	}
	if strings.HasSuffix(s, "\n") {
		builder.WriteString("\n")
		return
	}
	builder.WriteString("\n\n")
}

func ensureLineBreak(builder *strings.Builder) {
	s := builder.String()
	if s == "" || strings.HasSuffix(s, "\n") {
		return
	}
	builder.WriteString("\n")
}
