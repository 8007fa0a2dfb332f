package markup

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// BlockKind classifies a top-level unit of a fragment.
type BlockKind int

const (
	BlockHeading BlockKind = iota + 1
	BlockParagraph
	BlockList
	BlockRaw
)

// Block is one flattened unit of an HTML fragment. Containers such as div or
// section are unwrapped; their children become blocks of their own.
type Block struct {
	Kind     BlockKind
	Level    int      // Heading level, 1..6
	HTML     string   // Inner HTML for headings and paragraphs, outer HTML otherwise
	Text     string   // Collapsed plain text
	Items    []string // List item inner HTML
	Ordered  bool
	InHeader bool // Inside a <header> element or a container classed "header"
}

// Lines splits a paragraph's inner HTML on <br> and newlines.
func (b Block) Lines() []string {
	return SplitLines(b.HTML)
}

// Blocks flattens an HTML fragment into heading, paragraph, list and raw
// blocks in document order. Comments, scripts and styles are dropped.
func Blocks(fragment string) []Block {
	nodes := parseFragment(fragment)
	w := &blockWalker{}
	w.walkNodes(nodes, false)
	w.flush(false)
	return w.out
}

// Render serializes blocks back into a canonical fragment.
func Render(blocks []Block) string {
	var b strings.Builder
	for _, bl := range blocks {
		b.WriteString(RenderBlock(bl))
	}
	return b.String()
}

// RenderBlock serializes one block.
func RenderBlock(bl Block) string {
	switch bl.Kind {
	case BlockHeading:
		return Heading(bl.Level, bl.HTML)
	case BlockParagraph:
		return Paragraph(bl.HTML)
	case BlockList:
		if bl.Ordered {
			return "<ol>" + strings.TrimSuffix(strings.TrimPrefix(List(bl.Items), "<ul>"), "</ul>") + "</ol>"
		}
		return List(bl.Items)
	default:
		return bl.HTML
	}
}

func parseFragment(fragment string) []*html.Node {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return nil
	}
	return nodes
}

type blockWalker struct {
	out    []Block
	inline []*html.Node
}

func (w *blockWalker) walkNodes(nodes []*html.Node, inHeader bool) {
	for _, n := range nodes {
		w.walk(n, inHeader)
	}
}

func (w *blockWalker) walkChildren(n *html.Node, inHeader bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, inHeader)
	}
}

func (w *blockWalker) walk(n *html.Node, inHeader bool) {
	switch n.Type {
	case html.TextNode:
		w.inline = append(w.inline, n)
		return
	case html.ElementNode:
	case html.DocumentNode:
		w.walkChildren(n, inHeader)
		return
	default:
		return
	}

	tag := n.Data
	if isInline(tag) {
		w.inline = append(w.inline, n)
		return
	}

	w.flush(inHeader)
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		w.add(Block{Kind: BlockHeading, Level: int(tag[1] - '0'), HTML: strings.TrimSpace(innerHTML(n)), Text: TextOf(n)}, inHeader)
	case "p", "li", "dt", "dd", "figcaption", "address":
		w.add(Block{Kind: BlockParagraph, HTML: strings.TrimSpace(innerHTML(n)), Text: TextOf(n)}, inHeader)
	case "ul", "ol":
		bl := Block{Kind: BlockList, Ordered: tag == "ol", InHeader: inHeader}
		var texts []string
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || c.Data != "li" {
				continue
			}
			bl.Items = append(bl.Items, strings.TrimSpace(innerHTML(c)))
			texts = append(texts, TextOf(c))
		}
		bl.Text = strings.Join(texts, "\n")
		bl.HTML = outerHTML(n)
		if len(bl.Items) > 0 {
			w.out = append(w.out, bl)
		}
	case "script", "style", "head", "title", "meta", "link", "noscript", "template":
	case "table", "pre", "blockquote", "hr", "img", "figure":
		w.out = append(w.out, Block{Kind: BlockRaw, HTML: outerHTML(n), Text: TextOf(n), InHeader: inHeader})
	default:
		w.walkChildren(n, inHeader || isHeaderContainer(n))
		w.flush(inHeader || isHeaderContainer(n))
	}
}

func (w *blockWalker) add(b Block, inHeader bool) {
	if b.Text == "" && b.Kind != BlockRaw {
		return
	}
	b.InHeader = inHeader
	w.out = append(w.out, b)
}

// flush turns a pending run of inline nodes into a paragraph.
func (w *blockWalker) flush(inHeader bool) {
	if len(w.inline) == 0 {
		return
	}
	var inner, text strings.Builder
	for _, n := range w.inline {
		inner.WriteString(renderNode(n))
		text.WriteString(rawText(n))
	}
	w.inline = w.inline[:0]
	t := CollapseLines(text.String())
	if t == "" {
		return
	}
	w.out = append(w.out, Block{Kind: BlockParagraph, HTML: strings.TrimSpace(inner.String()), Text: t, InHeader: inHeader})
}

func isInline(tag string) bool {
	switch tag {
	case "a", "b", "strong", "em", "i", "u", "span", "code", "small", "sup", "sub",
		"mark", "abbr", "time", "s", "del", "ins", "br", "font", "label":
		return true
	}
	return false
}

func isHeaderContainer(n *html.Node) bool {
	if n.Data == "header" {
		return true
	}
	for _, a := range n.Attr {
		if (a.Key == "class" || a.Key == "id") && strings.Contains(strings.ToLower(a.Val), "header") {
			return true
		}
	}
	return false
}

func innerHTML(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(renderNode(c))
	}
	return b.String()
}

func outerHTML(n *html.Node) string {
	return renderNode(n)
}

func renderNode(n *html.Node) string {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return ""
	}
	return b.String()
}

// TextOf returns the collapsed text content of n; <br> counts as a line break.
func TextOf(n *html.Node) string {
	return CollapseLines(rawText(n))
}

func rawText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "br":
			b.WriteString("\n")
		case n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style"):
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && !isInline(n.Data) {
			b.WriteString("\n")
		}
	}
	walk(n)
	return b.String()
}

// CollapseLines collapses whitespace within each line and drops blank lines.
func CollapseLines(s string) string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if l = CollapseSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}

// Text returns the plain text of an HTML fragment.
func Text(fragment string) string {
	var parts []string
	for _, n := range parseFragment(fragment) {
		parts = append(parts, rawText(n))
	}
	return CollapseLines(strings.Join(parts, ""))
}
