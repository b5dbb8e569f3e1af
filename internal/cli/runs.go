package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/wikitopics/internal/store/sqlite"
)

var (
	runsDB     string
	runsID     string
	runsAuthor string
	runsToken  string
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Query the SQLite run catalogue",
	Long: `Runs lists the harvests recorded in the SQLite catalogue. With --author
or --token it queries a single run instead, the newest unless --run names
one.

Example:
  wikitopics runs --db runs.db
  wikitopics runs --db runs.db --author "Frank Herbert"
  wikitopics runs --db runs.db --run 01HX... --token spice`,
	Args: cobra.NoArgs,
	RunE: runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().StringVar(&runsDB, "db", "", "SQLite catalogue (default: output.sqlite_path)")
	runsCmd.Flags().StringVar(&runsID, "run", "", "run id to query (default: newest)")
	runsCmd.Flags().StringVar(&runsAuthor, "author", "", "list the documents of this author")
	runsCmd.Flags().StringVar(&runsToken, "token", "", "count occurrences of this token")
}

func runRuns(cmd *cobra.Command, args []string) error {
	path := runsDB
	if path == "" {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		path = cfg.Output.SQLitePath
	}
	if path == "" {
		return errors.New("no catalogue: pass --db or set output.sqlite_path")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return queryRuns(ctx, store, cmd.OutOrStdout(), runsQuery{
		RunID:  runsID,
		Author: runsAuthor,
		Token:  runsToken,
	})
}

// runsQuery selects what the runs command prints
type runsQuery struct {
	RunID  string
	Author string
	Token  string
}

func queryRuns(ctx context.Context, store *sqlite.Store, out io.Writer, q runsQuery) error {
	runs, err := store.Runs(ctx)
	if err != nil {
		return err
	}

	if q.Author == "" && q.Token == "" {
		if len(runs) == 0 {
			fmt.Fprintln(out, "No runs recorded")
			return nil
		}
		for _, r := range runs {
			fmt.Fprintf(out, "%s\t%s\t%d collected\t%d documents\t%d tokens\n",
				r.ID, r.CreatedAt.Format(time.RFC3339), r.Collected, r.Documents, r.Vocabulary)
		}
		return nil
	}

	runID := q.RunID
	if runID == "" {
		if len(runs) == 0 {
			return errors.New("no runs recorded")
		}
		runID = runs[0].ID
	} else if !hasRun(runs, runID) {
		return fmt.Errorf("run %s not found", runID)
	}

	if q.Author != "" {
		docs, err := store.DocumentsByAuthor(ctx, runID, q.Author)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d documents %v\n", q.Author, len(docs), docs)
	}
	if q.Token != "" {
		n, err := store.TokenCount(ctx, runID, q.Token)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d occurrences\n", q.Token, n)
	}
	return nil
}

func hasRun(runs []sqlite.RunSummary, id string) bool {
	for _, r := range runs {
		if r.ID == id {
			return true
		}
	}
	return false
}
