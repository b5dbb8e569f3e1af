package wiki

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/wikitopics/internal/model"
)

// ParseArticle builds a Page from rendered article HTML. Lead paragraphs
// become the summary; every heading opens a section nested under the
// nearest shallower one.
func ParseArticle(r io.Reader, ref model.PageRef) (*model.Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	page := &model.Page{ID: ref.ID, Title: ref.Title}

	content := findFirst(doc, func(n *html.Node) bool {
		return isElement(n, "div") && hasClass(n, "mw-parser-output")
	})
	if content == nil {
		content = findFirst(doc, func(n *html.Node) bool {
			return getAttribute(n, "id") == "mw-content-text"
		})
	}
	if content == nil {
		content = doc
	}

	var (
		lead  []string
		stack []*model.Section // open sections, shallowest first
		paras []string         // text of the innermost open section
	)

	flush := func() {
		if len(stack) > 0 {
			stack[len(stack)-1].Text = strings.Join(paras, "\n")
		}
		paras = nil
	}

	// closeTo pops every open section at level >= level and attaches it to
	// its parent, or to the page when it is top-level
	closeTo := func(level int) {
		for len(stack) > 0 && stack[len(stack)-1].Level >= level {
			done := *stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				page.Sections = append(page.Sections, done)
			} else {
				parent := stack[len(stack)-1]
				parent.Subsections = append(parent.Subsections, done)
			}
		}
	}

	var visit func(parent *html.Node)
	visit = func(parent *html.Node) {
		for c := parent.FirstChild; c != nil; c = c.NextSibling {
			if level, title, ok := heading(c); ok {
				flush()
				closeTo(level)
				stack = append(stack, &model.Section{Title: title, Level: level})
				continue
			}
			if isElement(c, "section") {
				// Parsoid output wraps each section in <section>
				visit(c)
				continue
			}
			if isNoise(c) || c.Type != html.ElementNode {
				continue
			}

			text := textOf(c)
			if text == "" {
				continue
			}
			if len(stack) == 0 {
				if isElement(c, "p") {
					lead = append(lead, text)
				}
				continue
			}
			paras = append(paras, text)
		}
	}
	visit(content)
	flush()
	closeTo(0)

	page.Summary = strings.Join(lead, "\n")
	page.Categories = categories(doc)
	return page, nil
}

// heading recognises both heading layouts: the bare <h2> with a
// span.mw-headline inside, and the div.mw-heading wrapper around an <h2>
func heading(n *html.Node) (int, string, bool) {
	if n.Type != html.ElementNode {
		return 0, "", false
	}

	h := n
	if isElement(n, "div") && hasClass(n, "mw-heading") {
		h = findFirst(n, func(x *html.Node) bool {
			return isElement(x, "h2", "h3", "h4", "h5", "h6")
		})
		if h == nil {
			return 0, "", false
		}
	}
	if !isElement(h, "h2", "h3", "h4", "h5", "h6") {
		return 0, "", false
	}

	level := int(h.Data[1] - '0')
	title := textOf(h)
	if headline := findFirst(h, func(x *html.Node) bool { return hasClass(x, "mw-headline") }); headline != nil {
		title = textOf(headline)
	}
	return level, title, true
}

func categories(doc *html.Node) []string {
	box := findFirst(doc, func(n *html.Node) bool {
		return getAttribute(n, "id") == "mw-normal-catlinks"
	})
	if box == nil {
		return nil
	}

	var out []string
	for _, li := range findAll(box, func(n *html.Node) bool { return isElement(n, "li") }) {
		if name := textOf(li); name != "" {
			out = append(out, name)
		}
	}
	return out
}
