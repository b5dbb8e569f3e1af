// Package persist writes a finished run to disk in the formats the topic
// model trainer reads: a gensim text dictionary and a Matrix Market corpus,
// plus JSON side files.
package persist

import (
	"bufio"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ppiankov/wikitopics/internal/corpus"
	"github.com/ppiankov/wikitopics/internal/model"
)

// Artifact file names
const (
	AuthorsFile    = "authors.json"
	TokensFile     = "tokens.json"
	DictionaryFile = "dictionary.txt"
	CorpusFile     = "corpus.mm"
	PagesFile      = "pages.json"
	ManifestFile   = "manifest.json"
)

// Run is everything produced by one harvest. Pages and Authors are aligned
// with the corpus documents.
type Run struct {
	ID        string
	CreatedAt time.Time
	Seeds     []string
	Collected int // pages found by the walk, before empty documents were dropped
	Corpus    *corpus.Corpus
	Pages     []model.PageRef
	Authors   []string
	AuthorMap corpus.AuthorMap
}

// PageRecord is one line of pages.json
type PageRecord struct {
	Doc    int    `json:"doc"`
	PageID int    `json:"pageid"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Manifest describes a written run
type Manifest struct {
	RunID      string    `json:"run_id"`
	CreatedAt  time.Time `json:"created_at"`
	Seeds      []string  `json:"seeds"`
	Collected  int       `json:"collected"`
	Documents  int       `json:"documents"`
	Vocabulary int       `json:"vocabulary"`
	NNZ        int       `json:"nnz"`
	Authors    int       `json:"authors"`
	Artifacts  []string  `json:"artifacts"`
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewRunID returns a lexically sortable run identifier
func NewRunID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Writer writes runs into a directory
type Writer struct {
	dir string
}

// NewWriter creates a writer for dir; the directory is created on Write
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write stores every artifact of run and returns the manifest
func (w *Writer) Write(run *Run) (*Manifest, error) {
	if len(run.Pages) != len(run.Corpus.Tokens) || len(run.Authors) != len(run.Corpus.Tokens) {
		return nil, fmt.Errorf("run is misaligned: %d pages, %d authors, %d documents",
			len(run.Pages), len(run.Authors), len(run.Corpus.Tokens))
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	if run.ID == "" {
		if run.CreatedAt.IsZero() {
			run.CreatedAt = time.Now().UTC()
		}
		run.ID = NewRunID(run.CreatedAt)
	}

	steps := []struct {
		name  string
		write func(io.Writer) error
	}{
		{AuthorsFile, func(out io.Writer) error { return writeJSON(out, run.AuthorMap) }},
		{TokensFile, func(out io.Writer) error { return writeJSON(out, run.Corpus.Tokens) }},
		{DictionaryFile, func(out io.Writer) error { return WriteDictionary(out, run.Corpus.Dictionary) }},
		{CorpusFile, func(out io.Writer) error { return WriteMatrixMarket(out, run.Corpus) }},
		{PagesFile, func(out io.Writer) error { return writeJSON(out, pageRecords(run)) }},
	}

	manifest := &Manifest{
		RunID:      run.ID,
		CreatedAt:  run.CreatedAt,
		Seeds:      run.Seeds,
		Collected:  run.Collected,
		Documents:  len(run.Corpus.Tokens),
		Vocabulary: run.Corpus.Dictionary.Len(),
		NNZ:        run.Corpus.NNZ(),
		Authors:    len(run.AuthorMap),
	}

	for _, s := range steps {
		if err := w.writeFile(s.name, s.write); err != nil {
			return nil, err
		}
		manifest.Artifacts = append(manifest.Artifacts, s.name)
	}

	if err := w.writeFile(ManifestFile, func(out io.Writer) error { return writeJSON(out, manifest) }); err != nil {
		return nil, err
	}
	return manifest, nil
}

// writeFile writes through a temp file and renames it into place
func (w *Writer) writeFile(name string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(w.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	buf := bufio.NewWriter(tmp)
	if err := write(buf); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := buf.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(w.dir, name)); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func pageRecords(run *Run) []PageRecord {
	records := make([]PageRecord, len(run.Pages))
	for i, p := range run.Pages {
		records[i] = PageRecord{Doc: i, PageID: p.ID, Title: p.Title, Author: run.Authors[i]}
	}
	return records
}

// WriteDictionary writes the gensim save_as_text layout: the document
// count, then one id<TAB>token<TAB>docfreq line per token sorted by token
func WriteDictionary(out io.Writer, d *corpus.Dictionary) error {
	if _, err := fmt.Fprintf(out, "%d\n", d.NumDocs()); err != nil {
		return err
	}

	ids := make([]int, d.Len())
	for i := range ids {
		ids[i] = i
	}
	sort.Slice(ids, func(i, j int) bool { return d.Token(ids[i]) < d.Token(ids[j]) })

	for _, id := range ids {
		if _, err := fmt.Fprintf(out, "%d\t%s\t%d\n", id, d.Token(id), d.DocFreq(id)); err != nil {
			return err
		}
	}
	return nil
}

// WriteMatrixMarket writes the corpus as a 1-based coordinate matrix with
// documents as rows and token ids as columns
func WriteMatrixMarket(out io.Writer, c *corpus.Corpus) error {
	if _, err := fmt.Fprintf(out, "%%%%MatrixMarket matrix coordinate real general\n%d %d %d\n",
		len(c.BOW), c.Dictionary.Len(), c.NNZ()); err != nil {
		return err
	}
	for doc, bow := range c.BOW {
		for _, p := range bow {
			if _, err := fmt.Fprintf(out, "%d %d %d\n", doc+1, p.ID+1, p.Count); err != nil {
				return err
			}
		}
	}
	return nil
}
