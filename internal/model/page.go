package model

import "strings"

// MemberKind tells a category member apart as a page or a nested category
type MemberKind int

const (
	MemberPage     MemberKind = iota // namespace 0
	MemberCategory                   // namespace 14
)

func (k MemberKind) String() string {
	switch k {
	case MemberPage:
		return "page"
	case MemberCategory:
		return "category"
	default:
		return "unknown"
	}
}

// Member is one entry of a category listing. Kind is decided when the
// listing is fetched.
type Member struct {
	Kind  MemberKind `json:"kind"`
	ID    int        `json:"pageid"`
	Title string     `json:"title"`
}

// Ref returns the page identity of the member
func (m Member) Ref() PageRef {
	return PageRef{ID: m.ID, Title: m.Title}
}

// PageRef identifies a page. Title is the identity used for deduplication;
// ID is needed for batched API lookups.
type PageRef struct {
	ID    int    `json:"pageid"`
	Title string `json:"title"`
}

// Page is a fetched article
type Page struct {
	ID         int       `json:"pageid"`
	Title      string    `json:"title"`
	Summary    string    `json:"summary"`
	Sections   []Section `json:"sections"`
	Categories []string  `json:"categories,omitempty"`
}

// Section is an article section. Text holds only the paragraphs before the
// first subsection heading.
type Section struct {
	Title       string    `json:"title"`
	Level       int       `json:"level"`
	Text        string    `json:"text"`
	Subsections []Section `json:"subsections,omitempty"`
}

// Texts returns the non-empty texts of the section and all its subsections,
// depth first
func (s Section) Texts() []string {
	var out []string
	if s.Text != "" {
		out = append(out, s.Text)
	}
	for _, sub := range s.Subsections {
		out = append(out, sub.Texts()...)
	}
	return out
}

// Text returns the raw page text: summary followed by every section
func (p *Page) Text() string {
	parts := make([]string, 0, len(p.Sections)+1)
	if p.Summary != "" {
		parts = append(parts, p.Summary)
	}
	for _, s := range p.Sections {
		parts = append(parts, s.Texts()...)
	}
	return strings.Join(parts, "\n\n")
}

// UnknownAuthor marks a page whose infobox names no author
const UnknownAuthor = "NA"

// Document is the ordered list of section texts retained for one page
type Document []string

// TokenList is the normalized token sequence for one document
type TokenList []string
