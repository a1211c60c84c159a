package source

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "table": true, "tr": true, "blockquote": true,
	"header": true, "footer": true, "dl": true, "dt": true, "dd": true,
}

// HTMLText flattens an HTML document into plain text. Block elements start
// new lines and list items become "- " bullet lines, so exported question
// documents keep the shape the text strategies expect.
func HTMLText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	flatten(root, &b)
	return tidy(b.String()), nil
}

func flatten(sel *goquery.Selection, b *strings.Builder) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		switch {
		case name == "#text":
			writeText(b, s.Text())
		case name == "script" || name == "style" || name == "head" || name == "#comment":
		case name == "br":
			b.WriteByte('\n')
		case name == "pre":
			newline(b)
			b.WriteString(s.Text())
			newline(b)
		case name == "li":
			newline(b)
			b.WriteString("- ")
			flatten(s, b)
			newline(b)
		case blockTags[name]:
			newline(b)
			flatten(s, b)
			newline(b)
		default:
			flatten(s, b)
		}
	})
}

func newline(b *strings.Builder) {
	if s := b.String(); s != "" && !strings.HasSuffix(s, "\n") {
		b.WriteByte('\n')
	}
}

// writeText collapses whitespace runs in t, keeping one separating space
// at either edge so adjacent inline elements do not run together.
func writeText(b *strings.Builder, t string) {
	words := strings.Fields(t)
	if len(words) == 0 {
		if t != "" {
			space(b)
		}
		return
	}
	if isSpace(t[0]) {
		space(b)
	}
	b.WriteString(strings.Join(words, " "))
	if isSpace(t[len(t)-1]) {
		space(b)
	}
}

func space(b *strings.Builder) {
	if s := b.String(); s != "" && !strings.HasSuffix(s, " ") && !strings.HasSuffix(s, "\n") {
		b.WriteByte(' ')
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// tidy strips trailing whitespace from each line and drops blank lines.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, ln := range lines {
		if ln = strings.TrimRight(ln, " \t"); strings.TrimSpace(ln) != "" {
			out = append(out, ln)
		}
	}
	return strings.Join(out, "\n")
}
