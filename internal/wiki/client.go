package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ppiankov/wikitopics/internal/cache"
	"github.com/ppiankov/wikitopics/internal/model"
	"github.com/ppiankov/wikitopics/internal/util"
	"github.com/ppiankov/wikitopics/internal/worker"
)

var (
	// ErrNotFound means the page or category does not exist
	ErrNotFound = errors.New("wiki: not found")
	// ErrDisallowed means robots.txt forbids fetching the article
	ErrDisallowed = errors.New("wiki: disallowed by robots.txt")
)

// MaxPageIDs is the Action API limit on ids per revisions query
const MaxPageIDs = 50

const (
	nsPage     = 0
	nsCategory = 14
)

// Client talks to one Wikipedia instance. Every request goes through the
// response cache, then the per-host limiter, then the retrying fetcher.
type Client struct {
	cfg     model.WikiConfig
	fetcher *Fetcher
	limiter *worker.Limiter
	cache   cache.Cache
	robots  *util.RobotsChecker
}

// NewClient wires a client from the full configuration
func NewClient(cfg *model.Config) *Client {
	fetcher := NewFetcher(
		cfg.HTTP.Timeout,
		cfg.HTTP.UserAgent,
		cfg.HTTP.MaxBodyBytes,
		cfg.HTTP.InsecureTLS,
		cfg.HTTP.HTTPProxy,
		cfg.HTTP.HTTPSProxy,
		cfg.HTTP.NoProxy,
	)

	c := &Client{
		cfg:     cfg.Wiki,
		fetcher: fetcher,
		limiter: worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		cache:   cache.New(cfg.Cache),
	}
	if cfg.Wiki.RespectRobots {
		c.robots = util.NewRobotsChecker(fetcher.HTTPClient(), cfg.HTTP.UserAgent)
	}
	return c
}

// get returns the body for rawURL, from cache when possible
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	key := cache.Key(rawURL)
	if data, ok := c.cache.Get(key); ok {
		return data, nil
	}

	if err := c.limiter.Wait(ctx, rawURL); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	data, err := c.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrNotFound)
		}
		return nil, err
	}

	_ = c.cache.Set(key, data, 0)
	return data, nil
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type categoryMembersResponse struct {
	Error    *apiError         `json:"error,omitempty"`
	Continue map[string]string `json:"continue,omitempty"`
	Query    struct {
		CategoryMembers []struct {
			PageID int    `json:"pageid"`
			NS     int    `json:"ns"`
			Title  string `json:"title"`
		} `json:"categorymembers"`
	} `json:"query"`
}

// CategoryMembers lists the pages and subcategories of a category,
// following continuation until the listing is complete. Members of other
// namespaces are dropped.
func (c *Client) CategoryMembers(ctx context.Context, title string) ([]model.Member, error) {
	if !strings.HasPrefix(title, "Category:") {
		title = "Category:" + title
	}

	var (
		members []model.Member
		cont    string
	)
	for {
		params := url.Values{
			"action":        {"query"},
			"list":          {"categorymembers"},
			"cmtitle":       {title},
			"cmlimit":       {"500"},
			"cmprop":        {"ids|title|type"},
			"format":        {"json"},
			"formatversion": {"2"},
		}
		if cont != "" {
			params.Set("cmcontinue", cont)
		}

		data, err := c.get(ctx, c.cfg.APIURL()+"?"+params.Encode())
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", title, err)
		}

		var resp categoryMembersResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("decode %s listing: %w", title, err)
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("list %s: api error %s: %s", title, resp.Error.Code, resp.Error.Info)
		}

		for _, m := range resp.Query.CategoryMembers {
			switch m.NS {
			case nsPage:
				members = append(members, model.Member{Kind: model.MemberPage, ID: m.PageID, Title: m.Title})
			case nsCategory:
				members = append(members, model.Member{Kind: model.MemberCategory, ID: m.PageID, Title: m.Title})
			}
		}

		cont = resp.Continue["cmcontinue"]
		if cont == "" {
			return members, nil
		}
	}
}

// ArticleURL returns the rendered article URL for a title
func (c *Client) ArticleURL(title string) string {
	return c.cfg.BaseURL + "/wiki/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}

// Page fetches and parses the rendered article
func (c *Client) Page(ctx context.Context, ref model.PageRef) (*model.Page, error) {
	articleURL := c.ArticleURL(ref.Title)

	if c.robots != nil {
		if _, ok := c.cache.Get(cache.Key(articleURL)); !ok {
			allowed, delay, err := c.robots.CanFetch(ctx, articleURL)
			if err != nil {
				return nil, fmt.Errorf("robots check: %w", err)
			}
			if !allowed {
				return nil, fmt.Errorf("%s: %w", ref.Title, ErrDisallowed)
			}
			if delay > 0 {
				if err := c.limiter.WaitWithDelay(ctx, articleURL, delay); err != nil {
					return nil, fmt.Errorf("crawl delay: %w", err)
				}
			}
		}
	}

	data, err := c.get(ctx, articleURL)
	if err != nil {
		return nil, fmt.Errorf("fetch page %q: %w", ref.Title, err)
	}

	page, err := ParseArticle(strings.NewReader(string(data)), ref)
	if err != nil {
		return nil, fmt.Errorf("page %q: %w", ref.Title, err)
	}
	return page, nil
}

type revisionsResponse struct {
	Error *apiError `json:"error,omitempty"`
	Query struct {
		Pages []struct {
			PageID    int  `json:"pageid"`
			Missing   bool `json:"missing,omitempty"`
			Revisions []struct {
				Slots struct {
					Main struct {
						Content string `json:"content"`
					} `json:"main"`
				} `json:"slots"`
			} `json:"revisions"`
		} `json:"pages"`
	} `json:"query"`
}

// LeadWikitext returns the lead-section wikitext of up to MaxPageIDs pages,
// keyed by page id. Missing pages are absent from the map.
func (c *Client) LeadWikitext(ctx context.Context, ids []int) (map[int]string, error) {
	if len(ids) == 0 {
		return map[int]string{}, nil
	}
	if len(ids) > MaxPageIDs {
		return nil, fmt.Errorf("lead wikitext: %d ids exceeds limit of %d", len(ids), MaxPageIDs)
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}

	params := url.Values{
		"action":        {"query"},
		"prop":          {"revisions"},
		"rvprop":        {"content"},
		"rvslots":       {"main"},
		"rvsection":     {"0"},
		"pageids":       {strings.Join(parts, "|")},
		"format":        {"json"},
		"formatversion": {"2"},
	}

	data, err := c.get(ctx, c.cfg.APIURL()+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("lead wikitext: %w", err)
	}

	var resp revisionsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode revisions: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("lead wikitext: api error %s: %s", resp.Error.Code, resp.Error.Info)
	}

	out := make(map[int]string, len(resp.Query.Pages))
	for _, p := range resp.Query.Pages {
		if p.Missing || len(p.Revisions) == 0 {
			continue
		}
		out[p.PageID] = p.Revisions[0].Slots.Main.Content
	}
	return out, nil
}
