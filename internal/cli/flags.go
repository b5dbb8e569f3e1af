package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/wikitopics/internal/model"
	"github.com/ppiankov/wikitopics/internal/worker"
)

var (
	seeds       []string
	seedsFile   string
	threshold   int
	maxDepth    int
	workers     int
	runTimeout  time.Duration
	httpTimeout time.Duration
	userAgent   string
	baseURL     string
	noCache     bool
	noRobots    bool
	insecureTLS bool
	httpProxy   string
	httpsProxy  string
	noProxy     string
)

// addWalkFlags registers the flags shared by every command that talks to
// Wikipedia
func addWalkFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArrayVar(&seeds, "seed", nil, "seed category (repeatable; replaces configured seeds)")
	f.StringVar(&seedsFile, "seeds-file", "", "file with one seed category per line")
	f.IntVar(&threshold, "threshold", 10, "stop descending below a category with this many pages (-1: no limit)")
	f.IntVar(&maxDepth, "max-depth", 2, "deepest subcategory level to visit (-1: no limit)")
	f.IntVar(&workers, "workers", 1, "concurrent page fetches")
	f.DurationVar(&runTimeout, "timeout", 2*time.Hour, "overall run timeout")
	f.DurationVar(&httpTimeout, "http-timeout", 30*time.Second, "timeout for a single request")
	f.StringVar(&userAgent, "ua", "", "HTTP User-Agent")
	f.StringVar(&baseURL, "base-url", "", "Wikipedia base URL")
	f.BoolVar(&noCache, "no-cache", false, "disable response cache (force fresh fetch)")
	f.BoolVar(&noRobots, "no-robots", false, "do not consult robots.txt before fetching articles")
	f.BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification")
	f.StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	f.StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	f.StringVar(&noProxy, "no-proxy", "", "comma separated hosts that bypass the proxy")
}

// applyWalkFlags copies explicitly set flags over cfg
func applyWalkFlags(cmd *cobra.Command, cfg *model.Config) error {
	f := cmd.Flags()

	if seedsFile != "" {
		lines, err := worker.ReadLinesFromFile(seedsFile)
		if err != nil {
			return err
		}
		cfg.Collect.Seeds = lines
	}
	if f.Changed("seed") {
		cfg.Collect.Seeds = seeds
	}
	if f.Changed("threshold") {
		cfg.Collect.Threshold = threshold
	}
	if f.Changed("max-depth") {
		cfg.Collect.MaxDepth = maxDepth
	}
	if f.Changed("workers") {
		cfg.Concurrency.Workers = workers
	}
	if f.Changed("http-timeout") {
		cfg.HTTP.Timeout = httpTimeout
	}
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	if baseURL != "" {
		cfg.Wiki.BaseURL = baseURL
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noRobots {
		cfg.Wiki.RespectRobots = false
	}
	if insecureTLS {
		cfg.HTTP.InsecureTLS = true
	}
	if httpProxy != "" {
		cfg.HTTP.HTTPProxy = httpProxy
	}
	if httpsProxy != "" {
		cfg.HTTP.HTTPSProxy = httpsProxy
	}
	if noProxy != "" {
		cfg.HTTP.NoProxy = noProxy
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose
	return nil
}
