package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/wikitopics/internal/model"
	"github.com/ppiankov/wikitopics/internal/pipeline"
)

var (
	outputDir   string
	sqlitePath  string
	pagesFile   string
	keywords    []string
	allowedPOS  []string
	minLength   int
	noLemmatize bool
	stopwords   string
)

// harvestCmd represents the harvest command
var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Build the topic modeling corpus",
	Long: `Harvest runs the whole pipeline:
- Walk the seed categories and collect novel pages
- Keep the sections whose titles match the keywords (summary as fallback)
- Read each novel's author from its infobox
- Reduce the text to lemmatized nouns, verbs, adjectives and adverbs
- Write dictionary.txt, corpus.mm, authors.json, tokens.json and pages.json

Example:
  wikitopics harvest
  wikitopics harvest --out ./run1 --workers 4 --sqlite runs.db
  wikitopics harvest --seed "Category:Cyberpunk novels" --threshold -1 --max-depth 1`,
	Args: cobra.NoArgs,
	RunE: runHarvest,
}

func init() {
	rootCmd.AddCommand(harvestCmd)
	addWalkFlags(harvestCmd)

	f := harvestCmd.Flags()
	f.StringVar(&outputDir, "out", "", "output directory")
	f.StringVar(&sqlitePath, "sqlite", "", "also catalogue the run in this SQLite database")
	f.StringVar(&pagesFile, "pages", "", "skip the walk and harvest the pages in this JSON file (from collect --json)")
	f.StringSliceVar(&keywords, "keywords", nil, "section title keywords (empty keeps every section)")
	f.StringSliceVar(&allowedPOS, "pos", nil, "allowed universal POS tags")
	f.IntVar(&minLength, "min-length", 3, "minimum token length in characters")
	f.BoolVar(&noLemmatize, "no-lemmatize", false, "keep surface forms instead of lemmas")
	f.StringVar(&stopwords, "stopwords", "", "YAML stoplist replacing the built-in one")
}

func runHarvest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if err := applyWalkFlags(cmd, cfg); err != nil {
		return err
	}
	applyHarvestFlags(cmd, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Seeds: %s\n", strings.Join(cfg.Collect.Seeds, ", "))
		fmt.Fprintf(os.Stderr, "Output: %s\n", cfg.Output.Dir)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewFromConfig(cfg, os.Stderr)
	if err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}

	var result *pipeline.Result
	if pagesFile != "" {
		refs, err := readPageList(pagesFile)
		if err != nil {
			return err
		}
		result, err = p.HarvestPages(ctx, refs, time.Now())
		if err != nil {
			return fmt.Errorf("harvest failed: %w", err)
		}
	} else {
		result, err = p.Harvest(ctx)
		if err != nil {
			return fmt.Errorf("harvest failed: %w", err)
		}
	}

	m := result.Manifest
	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d documents, %d tokens, %d authors -> %s\n",
		m.RunID, m.Documents, m.Vocabulary, m.Authors, cfg.Output.Dir)
	if len(result.Skipped) > 0 {
		fmt.Fprintf(os.Stderr, "✗ %d pages skipped (missing or disallowed)\n", len(result.Skipped))
	}
	return nil
}

func applyHarvestFlags(cmd *cobra.Command, cfg *model.Config) {
	f := cmd.Flags()
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if sqlitePath != "" {
		cfg.Output.SQLitePath = sqlitePath
	}
	if f.Changed("keywords") {
		cfg.Sections.Keywords = keywords
	}
	if f.Changed("pos") {
		cfg.Normalize.AllowedPOS = allowedPOS
	}
	if f.Changed("min-length") {
		cfg.Normalize.MinLength = minLength
	}
	if noLemmatize {
		cfg.Normalize.Lemmatize = false
	}
	if stopwords != "" {
		cfg.Normalize.StopwordsFile = stopwords
	}
}

func readPageList(path string) ([]model.PageRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pages: %w", err)
	}
	var refs []model.PageRef
	if err := json.Unmarshal(data, &refs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return refs, nil
}
