package persist

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/wikitopics/internal/corpus"
	"github.com/ppiankov/wikitopics/internal/model"
)

func sampleRun() *Run {
	c := corpus.Build([]model.TokenList{
		{"robot", "city", "robot"},
		{"worm", "city"},
	})
	authors := []string{"Isaac Asimov", "NA"}
	return &Run{
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Seeds:     []string{"Category:Science fiction novels by writer"},
		Collected: 3,
		Corpus:    c,
		Pages:     []model.PageRef{{ID: 1, Title: "I, Robot"}, {ID: 2, Title: "Dune"}},
		Authors:   authors,
		AuthorMap: corpus.BuildAuthorMap(authors),
	}
}

func TestWriteDictionary(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDictionary(&buf, sampleRun().Corpus.Dictionary); err != nil {
		t.Fatalf("WriteDictionary failed: %v", err)
	}

	want := "2\n1\tcity\t2\n0\trobot\t1\n2\tworm\t1\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteMatrixMarket(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMatrixMarket(&buf, sampleRun().Corpus); err != nil {
		t.Fatalf("WriteMatrixMarket failed: %v", err)
	}

	want := "%%MatrixMarket matrix coordinate real general\n" +
		"2 3 4\n" +
		"1 1 2\n" +
		"1 2 1\n" +
		"2 2 1\n" +
		"2 3 1\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	run := sampleRun()

	manifest, err := NewWriter(dir).Write(run)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if len(manifest.RunID) != 26 {
		t.Errorf("expected ULID run id, got %q", manifest.RunID)
	}
	if manifest.Documents != 2 || manifest.Vocabulary != 3 || manifest.NNZ != 4 || manifest.Collected != 3 {
		t.Errorf("unexpected manifest: %+v", manifest)
	}

	for _, name := range []string{AuthorsFile, TokensFile, DictionaryFile, CorpusFile, PagesFile, ManifestFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	var authors map[string][]int
	readJSON(t, filepath.Join(dir, AuthorsFile), &authors)
	if len(authors["Isaac Asimov"]) != 1 || authors["unknown_0"][0] != 1 {
		t.Errorf("unexpected authors.json: %v", authors)
	}

	var tokens [][]string
	readJSON(t, filepath.Join(dir, TokensFile), &tokens)
	if len(tokens) != 2 || strings.Join(tokens[1], " ") != "worm city" {
		t.Errorf("unexpected tokens.json: %v", tokens)
	}

	var pages []PageRecord
	readJSON(t, filepath.Join(dir, PagesFile), &pages)
	if len(pages) != 2 || pages[1].Title != "Dune" || pages[1].Author != "NA" {
		t.Errorf("unexpected pages.json: %+v", pages)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestWriter_AllDocumentsDropped(t *testing.T) {
	dir := t.TempDir()
	c := corpus.Build([]model.TokenList{{}, nil})
	run := &Run{
		Collected: 2,
		Corpus:    c,
		Pages:     corpus.Select([]model.PageRef{{ID: 1}, {ID: 2}}, c.Kept),
		Authors:   corpus.Select([]string{"NA", "NA"}, c.Kept),
		AuthorMap: corpus.BuildAuthorMap(nil),
	}

	manifest, err := NewWriter(dir).Write(run)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if manifest.Documents != 0 || manifest.Vocabulary != 0 {
		t.Errorf("unexpected manifest: %+v", manifest)
	}

	for name, want := range map[string]string{
		TokensFile:  "[]\n",
		AuthorsFile: "{}\n",
		PagesFile:   "[]\n",
	} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != want {
			t.Errorf("%s = %q, want %q", name, data, want)
		}
	}
}

func TestWriter_Misaligned(t *testing.T) {
	run := sampleRun()
	run.Authors = run.Authors[:1]
	if _, err := NewWriter(t.TempDir()).Write(run); err == nil {
		t.Error("expected error for misaligned run")
	}
}

func TestNewRunID_Sortable(t *testing.T) {
	now := time.Now()
	a := NewRunID(now)
	b := NewRunID(now)
	if a >= b {
		t.Errorf("run ids not increasing: %s then %s", a, b)
	}
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}
