package channel

import (
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

type Style string

const (
	StyleBold   Style = "bold"
	StyleItalic Style = "italic"
	StyleStrike Style = "strike"
	StyleCode   Style = "code"
)

// Segment is a run of text sharing one set of styles.
type Segment struct {
	Text   string
	Styles []Style
	Href   string
}

// Paragraph is one output line. An empty paragraph is a blank line.
type Paragraph []Segment

// Document is markdown flattened into styled lines, the common ground of
// the platforms' rich text formats.
type Document struct {
	Paragraphs []Paragraph
}

// PlainText drops styling and joins the lines.
func (d Document) PlainText() string {
	var b strings.Builder
	for i, p := range d.Paragraphs {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, seg := range p {
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

func ParseMarkdown(md string) Document {
	if strings.TrimSpace(md) == "" {
		return Document{}
	}

	exts := parser.CommonExtensions | parser.NoEmptyLineBeforeBlock |
		parser.Strikethrough | parser.FencedCode | parser.Autolink | parser.Tables
	doc := parser.NewWithExtensions(exts).Parse([]byte(md))

	b := &docBuilder{}
	b.renderNode(doc)
	b.flush()
	return Document{Paragraphs: b.paragraphs}
}

type docBuilder struct {
	paragraphs []Paragraph
	current    Paragraph
	styles     []Style // stack for nested emphasis
}

func (b *docBuilder) flush() {
	if len(b.current) > 0 {
		b.paragraphs = append(b.paragraphs, b.current)
		b.current = nil
	}
}

// endBlock closes a block and leaves a blank line before the next one.
func (b *docBuilder) endBlock(node ast.Node) {
	b.flush()
	if ast.GetNextNode(node) != nil && len(b.paragraphs) > 0 {
		b.paragraphs = append(b.paragraphs, Paragraph{})
	}
}

func (b *docBuilder) addText(text string, extra ...Style) {
	if text == "" {
		return
	}
	b.current = append(b.current, Segment{Text: text, Styles: b.activeStyles(extra...)})
}

func (b *docBuilder) activeStyles(extra ...Style) []Style {
	if len(b.styles) == 0 && len(extra) == 0 {
		return nil
	}
	seen := make(map[Style]bool, len(b.styles)+len(extra))
	var out []Style
	for _, s := range append(append([]Style(nil), b.styles...), extra...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func (b *docBuilder) push(s Style) { b.styles = append(b.styles, s) }
func (b *docBuilder) pop()         { b.styles = b.styles[:len(b.styles)-1] }

func (b *docBuilder) renderChildren(node ast.Node) {
	for _, child := range node.GetChildren() {
		b.renderNode(child)
	}
}

func (b *docBuilder) renderNode(node ast.Node) {
	switch n := node.(type) {
	case *ast.Document:
		b.renderChildren(node)
	case *ast.Paragraph:
		b.renderChildren(node)
		if _, inItem := node.GetParent().(*ast.ListItem); !inItem {
			b.endBlock(node)
		}
	case *ast.Heading:
		b.push(StyleBold)
		b.renderChildren(node)
		b.pop()
		b.endBlock(node)
	case *ast.BlockQuote:
		b.renderChildren(node)
	case *ast.List:
		b.renderList(n)
		b.endBlock(node)
	case *ast.Strong:
		b.push(StyleBold)
		b.renderChildren(node)
		b.pop()
	case *ast.Emph:
		b.push(StyleItalic)
		b.renderChildren(node)
		b.pop()
	case *ast.Del:
		b.push(StyleStrike)
		b.renderChildren(node)
		b.pop()
	case *ast.Code:
		b.addText(string(n.Literal), StyleCode)
	case *ast.CodeBlock:
		b.flush()
		for _, line := range strings.Split(strings.TrimRight(string(n.Literal), "\n"), "\n") {
			b.addText(line, StyleCode)
			b.flush()
		}
		b.endBlock(node)
	case *ast.Link:
		text := collectText(node)
		if text == "" {
			text = string(n.Destination)
		}
		b.current = append(b.current, Segment{Text: text, Styles: b.activeStyles(), Href: string(n.Destination)})
	case *ast.Image:
		b.current = append(b.current, Segment{Text: collectText(node), Href: string(n.Destination)})
	case *ast.Text:
		b.addText(string(n.Literal))
	case *ast.Softbreak, *ast.Hardbreak:
		b.flush()
	case *ast.HorizontalRule:
		b.flush()
		b.addText(strings.Repeat("-", 10))
		b.endBlock(node)
	case *ast.HTMLBlock:
		b.addText(string(n.Literal))
		b.endBlock(node)
	case *ast.HTMLSpan:
		b.addText(string(n.Literal))
	case *ast.Table:
		b.renderTable(n)
		b.endBlock(node)
	default:
		if len(node.GetChildren()) > 0 {
			b.renderChildren(node)
			return
		}
		if leaf := node.AsLeaf(); leaf != nil && len(leaf.Literal) > 0 {
			b.addText(string(leaf.Literal))
		}
	}
}

func (b *docBuilder) renderList(list *ast.List) {
	ordered := list.ListFlags&ast.ListTypeOrdered != 0
	index := list.Start
	if index <= 0 {
		index = 1
	}

	for _, one := range list.GetChildren() {
		item, ok := one.(*ast.ListItem)
		if !ok {
			continue
		}
		b.flush()
		if ordered {
			b.addText(strconv.Itoa(index) + ". ")
			index++
		} else {
			b.addText("- ")
		}
		b.renderChildren(item)
		b.flush()
	}
}

func (b *docBuilder) renderTable(table *ast.Table) {
	b.flush()
	ast.WalkFunc(table, func(node ast.Node, entering bool) ast.WalkStatus {
		row, ok := node.(*ast.TableRow)
		if !ok || !entering {
			return ast.GoToNext
		}
		cells := make([]string, 0, len(row.GetChildren()))
		for _, cell := range row.GetChildren() {
			cells = append(cells, strings.TrimSpace(collectText(cell)))
		}
		b.addText(strings.Join(cells, " | "))
		b.flush()
		return ast.SkipChildren
	})
}

func collectText(node ast.Node) string {
	var sb strings.Builder
	ast.WalkFunc(node, func(n ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		if leaf := n.AsLeaf(); leaf != nil {
			sb.Write(leaf.Literal)
		}
		return ast.GoToNext
	})
	return sb.String()
}
