// Package htmltext pulls the text a reader would see out of an HTML document
// so it can be scored like plain text.
package htmltext

import (
	"io"
	"strings"

	"github.com/conneroisu/stegtext/internal/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var skipped = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
}

// VisibleText returns the text nodes of the document outside head, script
// and style elements and outside elements hidden with the hidden attribute
// or an inline display:none / visibility:hidden style. Runs of whitespace
// collapse to one space; invisible format characters are kept.
func VisibleText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", errors.WrapIO(err, errors.ErrCodeInternalError, "failed to parse HTML")
	}

	var parts []string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && (skipped[n.DataAtom] || hidden(n)) {
			return
		}
		if n.Type == html.TextNode {
			parts = append(parts, strings.Fields(n.Data)...)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)

	return strings.Join(parts, " "), nil
}

// VisibleString is VisibleText over a string.
func VisibleString(doc string) (string, error) {
	return VisibleText(strings.NewReader(doc))
}

func hidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "style":
			style := strings.ToLower(strings.ReplaceAll(a.Val, " ", ""))
			if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}
