package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/wikitopics/internal/model"
	"github.com/ppiankov/wikitopics/internal/worker"
)

// AuthorBatchSize is the number of page ids sent per revisions query
const AuthorBatchSize = 50

var (
	authorLine = regexp.MustCompile(`author *=[^\n]*`)
	authorName = regexp.MustCompile(`[^\[\]<>()|+&"']+`)
)

// WikitextSource returns lead-section wikitext keyed by page id
type WikitextSource interface {
	LeadWikitext(ctx context.Context, ids []int) (map[int]string, error)
}

// AuthorExtractor reads the author field of each page's infobox
type AuthorExtractor struct {
	source WikitextSource
}

// NewAuthorExtractor creates an extractor reading from source
func NewAuthorExtractor(source WikitextSource) *AuthorExtractor {
	return &AuthorExtractor{source: source}
}

// Extract returns one author per page, index-aligned with pages. Pages
// without a usable author field get model.UnknownAuthor. Any failed batch fails
// the whole call.
func (e *AuthorExtractor) Extract(ctx context.Context, pages []model.PageRef) ([]string, error) {
	authors := make([]string, 0, len(pages))

	for i, batch := range worker.Chunk(pages, AuthorBatchSize) {
		ids := make([]int, len(batch))
		for j, p := range batch {
			ids[j] = p.ID
		}

		texts, err := e.source.LeadWikitext(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("author batch %d: %w", i, err)
		}

		for _, id := range ids {
			authors = append(authors, ParseAuthor(texts[id]))
		}
	}

	return authors, nil
}

// ParseAuthor pulls the author out of infobox wikitext: the first
// "author =" line, cut at the first link, markup or punctuation character
func ParseAuthor(wikitext string) string {
	line := authorLine.FindString(wikitext)
	if line == "" {
		return model.UnknownAuthor
	}

	_, value, _ := strings.Cut(line, "=")
	name := strings.TrimSpace(authorName.FindString(strings.TrimSpace(value)))
	if name == "" {
		return model.UnknownAuthor
	}
	return name
}
