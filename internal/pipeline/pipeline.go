// Package pipeline runs a harvest end to end: walk the categories, fetch
// and cut the pages, look up authors, normalize, build the corpus and write
// it out.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ppiankov/wikitopics/internal/collect"
	"github.com/ppiankov/wikitopics/internal/corpus"
	"github.com/ppiankov/wikitopics/internal/extract"
	"github.com/ppiankov/wikitopics/internal/model"
	"github.com/ppiankov/wikitopics/internal/nlp"
	"github.com/ppiankov/wikitopics/internal/persist"
	"github.com/ppiankov/wikitopics/internal/store/sqlite"
	"github.com/ppiankov/wikitopics/internal/wiki"
	"github.com/ppiankov/wikitopics/internal/worker"
)

// PageSource fetches a parsed article
type PageSource interface {
	Page(ctx context.Context, ref model.PageRef) (*model.Page, error)
}

// Sources bundles the external collaborators of a pipeline
type Sources struct {
	Members  collect.MemberLister
	Pages    PageSource
	Wikitext extract.WikitextSource
	Tagger   nlp.Tagger
}

// Pipeline orchestrates a complete harvest
type Pipeline struct {
	walker     *collect.Walker
	pages      PageSource
	sections   *extract.SectionExtractor
	authors    *extract.AuthorExtractor
	normalizer *nlp.Normalizer
	config     *model.Config
	log        io.Writer
}

// New creates a pipeline over explicit sources. Progress goes to log.
func New(cfg *model.Config, src Sources, log io.Writer) *Pipeline {
	if log == nil {
		log = io.Discard
	}
	verbose := cfg.Output.Verbose
	return &Pipeline{
		walker:     collect.NewWalker(src.Members, log, verbose),
		pages:      src.Pages,
		sections:   extract.NewSectionExtractor(cfg.Sections, log, verbose),
		authors:    extract.NewAuthorExtractor(src.Wikitext),
		normalizer: nlp.NewNormalizer(src.Tagger),
		config:     cfg,
		log:        log,
	}
}

// NewFromConfig wires the Wikipedia client and the prose tagger
func NewFromConfig(cfg *model.Config, log io.Writer) (*Pipeline, error) {
	stopwords := nlp.DefaultStopwords()
	if cfg.Normalize.StopwordsFile != "" {
		s, err := nlp.LoadStopwords(cfg.Normalize.StopwordsFile)
		if err != nil {
			return nil, err
		}
		stopwords = s
	}

	tagger, err := nlp.NewProseTagger(stopwords)
	if err != nil {
		return nil, err
	}

	client := wiki.NewClient(cfg)
	return New(cfg, Sources{
		Members:  client,
		Pages:    client,
		Wikitext: client,
		Tagger:   tagger,
	}, log), nil
}

// Result is the outcome of a harvest
type Result struct {
	Run      *persist.Run
	Manifest *persist.Manifest
	// Skipped lists pages that were missing or disallowed by robots.txt
	Skipped []model.PageRef
	// Empty lists pages whose documents had no surviving tokens
	Empty []model.PageRef
}

// Collect walks the configured seed categories
func (p *Pipeline) Collect(ctx context.Context) ([]model.PageRef, error) {
	opts := collect.Options{
		Threshold: p.config.Collect.Threshold,
		MaxDepth:  p.config.Collect.MaxDepth,
	}
	p.logf("⚙️  Walking %d seed categories (threshold %d, max depth %d)\n",
		len(p.config.Collect.Seeds), opts.Threshold, opts.MaxDepth)

	refs, err := p.walker.CollectSeeds(ctx, p.config.Collect.Seeds, opts)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	p.logf("✓ Collected %d pages\n", len(refs))
	return refs, nil
}

// Harvest runs every stage and writes the artifacts to the output directory
func (p *Pipeline) Harvest(ctx context.Context) (*Result, error) {
	start := time.Now()

	refs, err := p.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return p.HarvestPages(ctx, refs, start)
}

// HarvestPages runs every stage after the category walk on refs
func (p *Pipeline) HarvestPages(ctx context.Context, refs []model.PageRef, start time.Time) (*Result, error) {
	res := &Result{}

	p.logf("⚙️  Fetching %d pages with %d workers\n", len(refs), p.config.Concurrency.Workers)
	docs, err := p.fetchDocuments(ctx, refs, res)
	if err != nil {
		return nil, err
	}

	p.logf("⚙️  Looking up authors in batches of %d\n", extract.AuthorBatchSize)
	authors, err := p.authors.Extract(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("authors: %w", err)
	}

	p.logf("⚙️  Normalizing %d documents\n", len(docs))
	opts := nlp.OptionsFromConfig(p.config.Normalize)
	lists := make([]model.TokenList, len(docs))
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tokens, err := p.normalizer.Normalize(doc, opts)
		if err != nil {
			return nil, fmt.Errorf("normalize %q: %w", refs[i].Title, err)
		}
		lists[i] = tokens
	}

	c := corpus.Build(lists)
	kept := make(map[int]bool, len(c.Kept))
	for _, i := range c.Kept {
		kept[i] = true
	}
	for i, ref := range refs {
		if !kept[i] {
			res.Empty = append(res.Empty, ref)
		}
	}
	p.logf("✓ Corpus: %d documents, %d tokens in vocabulary (%d dropped as empty)\n",
		len(c.Kept), c.Dictionary.Len(), len(refs)-len(c.Kept))

	keptAuthors := corpus.Select(authors, c.Kept)
	res.Run = &persist.Run{
		CreatedAt: time.Now().UTC(),
		Seeds:     p.config.Collect.Seeds,
		Collected: len(refs),
		Corpus:    c,
		Pages:     corpus.Select(refs, c.Kept),
		Authors:   keptAuthors,
		AuthorMap: corpus.BuildAuthorMap(keptAuthors),
	}

	manifest, err := persist.NewWriter(p.config.Output.Dir).Write(res.Run)
	if err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}
	res.Manifest = manifest
	p.logf("✓ Wrote run %s to %s\n", manifest.RunID, p.config.Output.Dir)

	if path := p.config.Output.SQLitePath; path != "" {
		if err := saveCatalogue(ctx, path, res.Run); err != nil {
			return nil, err
		}
		p.logf("✓ Catalogued run in %s\n", path)
	}

	p.logf("✓ Done in %s\n", time.Since(start).Round(time.Millisecond))
	return res, nil
}

func saveCatalogue(ctx context.Context, path string, run *persist.Run) error {
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("catalogue: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("catalogue: %w", err)
	}
	return nil
}

type pageJob struct {
	ref      model.PageRef
	pages    PageSource
	sections *extract.SectionExtractor
}

type pageResult struct {
	ref     model.PageRef
	doc     model.Document
	chars   int
	skipped bool
	err     error
}

func (r *pageResult) GetError() error { return r.err }

func (j *pageJob) Execute(ctx context.Context) worker.Result {
	page, err := j.pages.Page(ctx, j.ref)
	if err != nil {
		if errors.Is(err, wiki.ErrNotFound) || errors.Is(err, wiki.ErrDisallowed) {
			return &pageResult{ref: j.ref, skipped: true, err: err}
		}
		return &pageResult{ref: j.ref, err: err}
	}
	return &pageResult{
		ref:   j.ref,
		doc:   j.sections.Extract(page),
		chars: len([]rune(page.Text())),
	}
}

// fetchDocuments fetches every page and cuts it into a document. The
// returned slice is index-aligned with refs; skipped pages yield empty
// documents that the corpus builder drops.
func (p *Pipeline) fetchDocuments(ctx context.Context, refs []model.PageRef, res *Result) ([]model.Document, error) {
	pool := worker.NewPool(ctx, p.config.Concurrency.Workers)
	pool.Start()
	defer pool.Shutdown()

	for _, ref := range refs {
		if !pool.Submit(&pageJob{ref: ref, pages: p.pages, sections: p.sections}) {
			break
		}
	}
	results := pool.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(results) != len(refs) {
		return nil, fmt.Errorf("fetch pages: %d of %d completed", len(results), len(refs))
	}

	docs := make([]model.Document, len(refs))
	for i, r := range results {
		pr := r.(*pageResult)
		switch {
		case pr.skipped:
			p.logf("✗ Skipping %q: %v\n", pr.ref.Title, pr.err)
			res.Skipped = append(res.Skipped, pr.ref)
		case pr.err != nil:
			return nil, fmt.Errorf("fetch pages: %w", pr.err)
		default:
			docs[i] = pr.doc
			p.tracef("  ✓ %s: %d chars, %d texts kept\n", pr.ref.Title, pr.chars, len(pr.doc))
		}
	}
	return docs, nil
}

func (p *Pipeline) logf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.log, format, args...)
}

func (p *Pipeline) tracef(format string, args ...any) {
	if p.config.Output.Verbose {
		p.logf(format, args...)
	}
}
