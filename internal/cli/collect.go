package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/wikitopics/internal/collect"
	"github.com/ppiankov/wikitopics/internal/model"
	"github.com/ppiankov/wikitopics/internal/wiki"
)

var collectOut string

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "List the pages below the seed categories",
	Long: `Collect walks the category tree only, without fetching articles, and
prints the pages a harvest would process.

Example:
  wikitopics collect --seed "Category:Cyberpunk novels" --max-depth 1
  wikitopics collect --json pages.json`,
	Args: cobra.NoArgs,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)
	addWalkFlags(collectCmd)
	collectCmd.Flags().StringVar(&collectOut, "json", "", "write the page list as JSON to this path")
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if err := applyWalkFlags(cmd, cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	walker := collect.NewWalker(wiki.NewClient(cfg), os.Stderr, cfg.Output.Verbose)
	refs, err := walker.CollectSeeds(ctx, cfg.Collect.Seeds, collect.Options{
		Threshold: cfg.Collect.Threshold,
		MaxDepth:  cfg.Collect.MaxDepth,
	})
	if err != nil {
		return fmt.Errorf("collect failed: %w", err)
	}

	if collectOut != "" {
		return writePageList(collectOut, refs)
	}

	out := cmd.OutOrStdout()
	for _, ref := range refs {
		fmt.Fprintf(out, "%d\t%s\n", ref.ID, ref.Title)
	}
	return nil
}

func writePageList(path string, refs []model.PageRef) error {
	data, err := json.MarshalIndent(refs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode pages: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "✓ Wrote %d pages to %s\n", len(refs), path)
	return nil
}
