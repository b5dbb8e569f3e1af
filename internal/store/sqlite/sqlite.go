// Package sqlite keeps a queryable catalogue of harvest runs next to the
// flat artifact files.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/wikitopics/internal/persist"
)

// Store is a SQLite run catalogue
type Store struct {
	db *sql.DB
}

// Open opens or creates the catalogue at path
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalogue: %w", err)
	}

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	seeds TEXT NOT NULL,
	collected INTEGER NOT NULL,
	documents INTEGER NOT NULL,
	vocabulary INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
	run_id TEXT NOT NULL,
	doc INTEGER NOT NULL,
	page_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	author TEXT NOT NULL,
	tokens INTEGER NOT NULL,
	PRIMARY KEY(run_id, doc),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS dictionary (
	run_id TEXT NOT NULL,
	token_id INTEGER NOT NULL,
	token TEXT NOT NULL,
	doc_freq INTEGER NOT NULL,
	PRIMARY KEY(run_id, token_id),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS bow (
	run_id TEXT NOT NULL,
	doc INTEGER NOT NULL,
	token_id INTEGER NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY(run_id, doc, token_id),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_documents_author ON documents(run_id, author);
`

// SaveRun stores a run in one transaction. Saving the same run id twice
// replaces the earlier copy.
func (s *Store) SaveRun(ctx context.Context, run *persist.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// foreign_keys is per connection, so child rows are cleared explicitly
	for _, table := range []string{"bow", "dictionary", "documents"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE run_id=?`, run.ID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id=?`, run.ID); err != nil {
		return fmt.Errorf("clear run: %w", err)
	}

	c := run.Corpus
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, seeds, collected, documents, vocabulary) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(time.RFC3339), strings.Join(run.Seeds, "\n"), run.Collected, len(c.Tokens), c.Dictionary.Len(),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	docStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO documents (run_id, doc, page_id, title, author, tokens) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare documents: %w", err)
	}
	defer func() { _ = docStmt.Close() }()

	for i, p := range run.Pages {
		if _, err := docStmt.ExecContext(ctx, run.ID, i, p.ID, p.Title, run.Authors[i], len(c.Tokens[i])); err != nil {
			return fmt.Errorf("insert document %d: %w", i, err)
		}
	}

	dictStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO dictionary (run_id, token_id, token, doc_freq) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare dictionary: %w", err)
	}
	defer func() { _ = dictStmt.Close() }()

	for id := 0; id < c.Dictionary.Len(); id++ {
		if _, err := dictStmt.ExecContext(ctx, run.ID, id, c.Dictionary.Token(id), c.Dictionary.DocFreq(id)); err != nil {
			return fmt.Errorf("insert token %d: %w", id, err)
		}
	}

	bowStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO bow (run_id, doc, token_id, count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare bow: %w", err)
	}
	defer func() { _ = bowStmt.Close() }()

	for doc, bow := range c.BOW {
		for _, p := range bow {
			if _, err := bowStmt.ExecContext(ctx, run.ID, doc, p.ID, p.Count); err != nil {
				return fmt.Errorf("insert bow %d/%d: %w", doc, p.ID, err)
			}
		}
	}

	return tx.Commit()
}

// RunSummary is one row of the runs table
type RunSummary struct {
	ID         string
	CreatedAt  time.Time
	Collected  int
	Documents  int
	Vocabulary int
}

// Runs lists stored runs, newest first
func (s *Store) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, collected, documents, vocabulary FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []RunSummary
	for rows.Next() {
		var (
			r       RunSummary
			created string
		)
		if err := rows.Scan(&r.ID, &created, &r.Collected, &r.Documents, &r.Vocabulary); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// DocumentsByAuthor returns the document indices of author in a run
func (s *Store) DocumentsByAuthor(ctx context.Context, runID, author string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM documents WHERE run_id=? AND author=? ORDER BY doc`, runID, author)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []int
	for rows.Next() {
		var d int
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// TokenCount returns how often token occurs across a run's corpus
func (s *Store) TokenCount(ctx context.Context, runID, token string) (int, error) {
	var n sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT SUM(b.count) FROM bow b
		JOIN dictionary d ON d.run_id = b.run_id AND d.token_id = b.token_id
		WHERE b.run_id=? AND d.token=?`, runID, token).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("token count: %w", err)
	}
	return int(n.Int64), nil
}
