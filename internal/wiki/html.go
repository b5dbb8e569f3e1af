package wiki

import (
	"strings"

	"golang.org/x/net/html"
)

// hasClass checks if a node has a specific CSS class
func hasClass(n *html.Node, className string) bool {
	if n.Type != html.ElementNode {
		return false
	}

	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, class := range strings.Fields(attr.Val) {
				if class == className {
					return true
				}
			}
		}
	}
	return false
}

func getAttribute(n *html.Node, attrKey string) string {
	for _, attr := range n.Attr {
		if attr.Key == attrKey {
			return attr.Val
		}
	}
	return ""
}

// findAll finds all nodes matching a predicate
func findAll(n *html.Node, predicate func(*html.Node) bool) []*html.Node {
	var results []*html.Node

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if predicate(node) {
			results = append(results, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return results
}

// findFirst finds the first node matching a predicate, depth first
func findFirst(n *html.Node, predicate func(*html.Node) bool) *html.Node {
	var result *html.Node

	var walk func(*html.Node) bool
	walk = func(node *html.Node) bool {
		if predicate(node) {
			result = node
			return true
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}

	walk(n)
	return result
}

// isElement reports whether n is an element with one of the given tags
func isElement(n *html.Node, tags ...string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, t := range tags {
		if n.Data == t {
			return true
		}
	}
	return false
}

// noise lists the classes whose subtree never carries article prose
var noise = []string{
	"infobox", "navbox", "reference", "mw-editsection", "thumb", "reflist",
	"hatnote", "mw-empty-elt", "sidebar", "metadata", "ambox", "shortdescription",
	"mw-references-wrap", "toc", "noprint",
}

func isNoise(n *html.Node) bool {
	if n.Type == html.CommentNode {
		return true
	}
	if n.Type != html.ElementNode {
		return false
	}
	if isElement(n, "style", "script", "figure", "table", "sup", "link", "meta") {
		return true
	}
	for _, c := range noise {
		if hasClass(n, c) {
			return true
		}
	}
	return false
}

// blockTags break the surrounding text into separate words
var blockTags = map[string]bool{
	"p": true, "li": true, "dd": true, "dt": true, "br": true, "div": true,
	"blockquote": true, "ul": true, "ol": true, "dl": true,
}

// textOf returns the visible prose below n with whitespace collapsed
func textOf(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if isNoise(node) {
			return
		}
		if node.Type == html.TextNode {
			buf.WriteString(node.Data)
			return
		}
		block := node.Type == html.ElementNode && blockTags[node.Data]
		if block {
			buf.WriteString(" ")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			buf.WriteString(" ")
		}
	}

	walk(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}
