package sqlite

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/ppiankov/wikitopics/internal/corpus"
	"github.com/ppiankov/wikitopics/internal/model"
	"github.com/ppiankov/wikitopics/internal/persist"
)

func TestStore_SaveRun(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	authors := []string{"Philip K. Dick", "NA", "Philip K. Dick"}
	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	run := &persist.Run{
		ID:        persist.NewRunID(created),
		CreatedAt: created,
		Seeds:     []string{"Category:A", "Category:B"},
		Collected: 4,
		Corpus: corpus.Build([]model.TokenList{
			{"android", "dream", "android"},
			{"scanner"},
			{"android", "castle"},
		}),
		Pages:     []model.PageRef{{ID: 1, Title: "Ubik"}, {ID: 2, Title: "X"}, {ID: 3, Title: "The Man in the High Castle"}},
		Authors:   authors,
		AuthorMap: corpus.BuildAuthorMap(authors),
	}

	// saving twice must not duplicate rows
	for i := 0; i < 2; i++ {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	runs, err := store.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != run.ID || runs[0].Documents != 3 || runs[0].Vocabulary != 4 {
		t.Errorf("unexpected runs: %+v", runs)
	}
	if !runs[0].CreatedAt.Equal(created) {
		t.Errorf("created_at = %v", runs[0].CreatedAt)
	}

	docs, err := store.DocumentsByAuthor(ctx, run.ID, "Philip K. Dick")
	if err != nil {
		t.Fatalf("DocumentsByAuthor failed: %v", err)
	}
	if !reflect.DeepEqual(docs, []int{0, 2}) {
		t.Errorf("docs = %v", docs)
	}

	n, err := store.TokenCount(ctx, run.ID, "android")
	if err != nil {
		t.Fatalf("TokenCount failed: %v", err)
	}
	if n != 3 {
		t.Errorf("android count = %d, want 3", n)
	}

	n, err = store.TokenCount(ctx, run.ID, "missing")
	if err != nil || n != 0 {
		t.Errorf("missing token: %d, %v", n, err)
	}
}
