// Package extract turns fetched pages into the raw material of the corpus:
// the retained section texts of each page and the author of each novel.
package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/wikitopics/internal/model"
)

// SectionExtractor keeps the sections whose titles mention a keyword
type SectionExtractor struct {
	keywords        []string
	summaryFallback bool
	log             io.Writer
	verbose         bool
}

// NewSectionExtractor creates an extractor. An empty keyword list keeps
// every section.
func NewSectionExtractor(cfg model.SectionsConfig, log io.Writer, verbose bool) *SectionExtractor {
	keywords := make([]string, 0, len(cfg.Keywords))
	for _, k := range cfg.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}
	if log == nil {
		log = io.Discard
	}
	return &SectionExtractor{
		keywords:        keywords,
		summaryFallback: cfg.UseSummaryFallback,
		log:             log,
		verbose:         verbose,
	}
}

// Extract returns the texts of the matching top-level sections and all of
// their subsections, in page order. When nothing matches, the summary is
// used instead if the fallback is enabled.
func (e *SectionExtractor) Extract(page *model.Page) model.Document {
	var doc model.Document
	for _, s := range page.Sections {
		if !e.matches(s.Title) {
			e.tracef("    ignoring section %q\n", s.Title)
			continue
		}
		e.tracef("    using section %q\n", s.Title)
		doc = append(doc, s.Texts()...)
	}

	if len(doc) == 0 && e.summaryFallback {
		e.tracef("    no matching section in %q, using summary\n", page.Title)
		return model.Document{page.Summary}
	}
	return doc
}

func (e *SectionExtractor) matches(title string) bool {
	if len(e.keywords) == 0 {
		return true
	}
	lower := strings.ToLower(title)
	for _, k := range e.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func (e *SectionExtractor) tracef(format string, args ...any) {
	if e.verbose {
		_, _ = fmt.Fprintf(e.log, format, args...)
	}
}
