// Package htmldoc provides small traversal helpers over golang.org/x/net/html
// parse trees. Extractors search by element name and class rather than full
// CSS selectors, which keeps matching behavior explicit when upstream markup
// shifts.
package htmldoc

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Parse builds a parse tree from page content. The parser never fails on
// malformed markup; only reader errors surface.
func Parse(content string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("htmldoc: parse document: %w", err)
	}
	return doc, nil
}

// Predicate selects nodes during traversal.
type Predicate func(*html.Node) bool

// FindAll walks the subtree rooted at n in document order and returns every
// element node matching the predicate.
func FindAll(n *html.Node, match Predicate) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && match(node) {
			found = append(found, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return found
}

// Find returns the first element matching the predicate, or nil.
func Find(n *html.Node, match Predicate) *html.Node {
	var walk func(*html.Node) *html.Node
	walk = func(node *html.Node) *html.Node {
		if node.Type == html.ElementNode && match(node) {
			return node
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if hit := walk(c); hit != nil {
				return hit
			}
		}
		return nil
	}
	if n == nil {
		return nil
	}
	return walk(n)
}

// Element matches nodes by tag name.
func Element(name string) Predicate {
	return func(n *html.Node) bool {
		return n.Data == name
	}
}

// ElementWithClasses matches nodes by tag name carrying every listed class.
func ElementWithClasses(name string, classes ...string) Predicate {
	return func(n *html.Node) bool {
		if n.Data != name {
			return false
		}
		for _, class := range classes {
			if !HasClass(n, class) {
				return false
			}
		}
		return true
	}
}

// Attr returns the value of the named attribute, or "".
func Attr(n *html.Node, name string) string {
	if n == nil {
		return ""
	}
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

// HasClass reports whether the node's class attribute contains the class as a
// whole token. Tokens with special characters (Tailwind variants like
// "lg:py-10") compare literally.
func HasClass(n *html.Node, class string) bool {
	for _, token := range strings.Fields(Attr(n, "class")) {
		if token == class {
			return true
		}
	}
	return false
}

// HasClassSubstring reports whether the raw class attribute contains the
// given fragment anywhere. Useful for state markers that appear inside
// compound utility classes.
func HasClassSubstring(n *html.Node, fragment string) bool {
	return strings.Contains(Attr(n, "class"), fragment)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Text returns the node's visible text with whitespace collapsed, inserting
// spaces at block element boundaries so adjacent blocks do not run together.
func Text(n *html.Node) string {
	var buf strings.Builder
	collectText(n, &buf)
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(buf.String(), " "))
}

func collectText(n *html.Node, buf *strings.Builder) {
	if n == nil {
		return
	}
	if n.Type == html.TextNode {
		buf.WriteString(n.Data)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style":
			return
		case "p", "div", "br", "li", "section", "h1", "h2", "h3", "h4", "h5", "h6":
			buf.WriteString(" ")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, buf)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "li", "section", "h1", "h2", "h3", "h4", "h5", "h6":
			buf.WriteString(" ")
		}
	}
}

// NextMatch returns the first element after marker, in document order within
// the subtree rooted at root, that satisfies the predicate.
func NextMatch(root, marker *html.Node, match Predicate) *html.Node {
	if root == nil || marker == nil {
		return nil
	}
	seen := false
	var hit *html.Node
	var walk func(*html.Node) bool
	walk = func(node *html.Node) bool {
		if node == marker {
			seen = true
		} else if seen && node.Type == html.ElementNode && match(node) {
			hit = node
			return true
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(root)
	return hit
}

// NextElementSibling returns the next sibling that is an element node.
func NextElementSibling(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for sib := n.NextSibling; sib != nil; sib = sib.NextSibling {
		if sib.Type == html.ElementNode {
			return sib
		}
	}
	return nil
}

// Children returns the node's direct element children.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	if n == nil {
		return out
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// JSONLDBlocks returns the raw contents of every ld+json script in the
// document, in order.
func JSONLDBlocks(doc *html.Node) []string {
	scripts := FindAll(doc, func(n *html.Node) bool {
		return n.Data == "script" && strings.EqualFold(Attr(n, "type"), "application/ld+json")
	})
	blocks := make([]string, 0, len(scripts))
	for _, script := range scripts {
		var buf strings.Builder
		for c := script.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				buf.WriteString(c.Data)
			}
		}
		if text := strings.TrimSpace(buf.String()); text != "" {
			blocks = append(blocks, text)
		}
	}
	return blocks
}
