// Package collect walks the Wikipedia category graph and gathers the pages
// below a set of seed categories.
package collect

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/wikitopics/internal/model"
)

// MemberLister lists the direct members of a category
type MemberLister interface {
	CategoryMembers(ctx context.Context, title string) ([]model.Member, error)
}

// Options bounds the walk. A negative value disables the limit.
type Options struct {
	// Threshold stops descent below a category that already has this many
	// direct pages
	Threshold int
	// MaxDepth is the deepest subcategory level visited; seeds are level 0
	MaxDepth int
}

// Walker collects pages from categories
type Walker struct {
	lister  MemberLister
	log     io.Writer
	verbose bool
}

// NewWalker creates a walker. Progress goes to log when verbose is set.
func NewWalker(lister MemberLister, log io.Writer, verbose bool) *Walker {
	if log == nil {
		log = io.Discard
	}
	return &Walker{lister: lister, log: log, verbose: verbose}
}

type walkState struct {
	pages    []model.PageRef
	seen     map[string]bool           // page titles, shared by all seeds
	members  map[string][]model.Member // listings already fetched
	expanded map[string]int            // shallowest depth walked, per seed
}

func newWalkState() *walkState {
	return &walkState{
		seen:     make(map[string]bool),
		members:  make(map[string][]model.Member),
		expanded: make(map[string]int),
	}
}

// Collect returns the pages of category and, within opts, of its
// subcategories. Each title appears once, in first-seen order.
func (w *Walker) Collect(ctx context.Context, category string, opts Options) ([]model.PageRef, error) {
	st := newWalkState()
	if err := w.walk(ctx, category, 0, opts, st); err != nil {
		return nil, err
	}
	return st.pages, nil
}

// CollectSeeds walks every seed on its own and merges the results. The
// first seed fixes the order; later seeds only append pages not yet
// collected.
func (w *Walker) CollectSeeds(ctx context.Context, seeds []string, opts Options) ([]model.PageRef, error) {
	st := newWalkState()
	for _, seed := range seeds {
		st.expanded = make(map[string]int)
		before := len(st.pages)
		if err := w.walk(ctx, seed, 0, opts, st); err != nil {
			return nil, err
		}
		w.logf("✓ %s: %d new pages (%d total)\n", seed, len(st.pages)-before, len(st.pages))
	}
	return st.pages, nil
}

func (w *Walker) walk(ctx context.Context, category string, depth int, opts Options, st *walkState) error {
	// A category reached again at the same or a deeper level has nothing
	// new below it. Reaching it higher up allows a deeper descent.
	if d, ok := st.expanded[category]; ok && d <= depth {
		return nil
	}
	st.expanded[category] = depth

	if err := ctx.Err(); err != nil {
		return err
	}

	members, ok := st.members[category]
	if !ok {
		var err error
		members, err = w.lister.CategoryMembers(ctx, category)
		if err != nil {
			return fmt.Errorf("collect %s: %w", category, err)
		}
		st.members[category] = members
	}

	indent := strings.Repeat("*", depth+1)
	direct := 0
	var subcategories []model.Member
	for _, m := range members {
		switch m.Kind {
		case model.MemberPage:
			direct++
			if st.seen[m.Title] {
				continue
			}
			st.seen[m.Title] = true
			st.pages = append(st.pages, m.Ref())
			w.tracef("  %s %s: page added\n", indent, m.Title)
		case model.MemberCategory:
			subcategories = append(subcategories, m)
		}
	}

	belowThreshold := opts.Threshold < 0 || direct < opts.Threshold
	belowDepth := opts.MaxDepth < 0 || depth < opts.MaxDepth
	if !belowThreshold || !belowDepth {
		if len(subcategories) > 0 {
			w.tracef("  %s ignoring %d subcategories of %s\n", indent, len(subcategories), category)
		}
		return nil
	}

	for _, sub := range subcategories {
		w.tracef("  %s (subcategory) %s\n", indent, sub.Title)
		if err := w.walk(ctx, sub.Title, depth+1, opts, st); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) logf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.log, format, args...)
}

func (w *Walker) tracef(format string, args ...any) {
	if w.verbose {
		w.logf(format, args...)
	}
}
