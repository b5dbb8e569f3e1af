package wiki

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/wikitopics/internal/model"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := model.DefaultConfig()
	cfg.Wiki.BaseURL = server.URL
	cfg.HTTP.Timeout = 5 * time.Second
	cfg.RateLimiting.RequestsPerSecond = 0
	cfg.Cache.Enabled = false
	return NewClient(cfg), server
}

func TestCategoryMembers_Paging(t *testing.T) {
	var calls atomic.Int32
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()
		if q.Get("list") != "categorymembers" || q.Get("cmtitle") != "Category:Cyberpunk novels" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		if q.Get("cmcontinue") == "" {
			_, _ = fmt.Fprint(w, `{"continue":{"cmcontinue":"page|2","continue":"-||"},"query":{"categorymembers":[
				{"pageid":1,"ns":0,"title":"Neuromancer"},
				{"pageid":2,"ns":14,"title":"Category:Novels by William Gibson"}]}}`)
			return
		}
		_, _ = fmt.Fprint(w, `{"query":{"categorymembers":[
			{"pageid":3,"ns":0,"title":"Snow Crash"},
			{"pageid":4,"ns":10,"title":"Template:Cyberpunk"}]}}`)
	}))

	members, err := client.CategoryMembers(context.Background(), "Cyberpunk novels")
	if err != nil {
		t.Fatalf("CategoryMembers failed: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 requests, got %d", calls.Load())
	}

	want := []model.Member{
		{Kind: model.MemberPage, ID: 1, Title: "Neuromancer"},
		{Kind: model.MemberCategory, ID: 2, Title: "Category:Novels by William Gibson"},
		{Kind: model.MemberPage, ID: 3, Title: "Snow Crash"},
	}
	if len(members) != len(want) {
		t.Fatalf("expected %d members, got %+v", len(want), members)
	}
	for i := range want {
		if members[i] != want[i] {
			t.Errorf("member %d = %+v, want %+v", i, members[i], want[i])
		}
	}
}

func TestCategoryMembers_APIError(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"error":{"code":"badvalue","info":"bad title"}}`)
	}))

	_, err := client.CategoryMembers(context.Background(), "Category:")
	if err == nil || !strings.Contains(err.Error(), "badvalue") {
		t.Errorf("expected api error, got %v", err)
	}
}

func TestLeadWikitext(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("pageids") != "10|11" || q.Get("rvsection") != "0" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		_, _ = fmt.Fprint(w, `{"query":{"pages":[
			{"pageid":10,"title":"Dune","revisions":[{"slots":{"main":{"content":"{{Infobox book\n| author = Frank Herbert\n}}"}}}]},
			{"pageid":11,"missing":true}]}}`)
	}))

	texts, err := client.LeadWikitext(context.Background(), []int{10, 11})
	if err != nil {
		t.Fatalf("LeadWikitext failed: %v", err)
	}
	if !strings.Contains(texts[10], "Frank Herbert") {
		t.Errorf("unexpected wikitext: %q", texts[10])
	}
	if _, ok := texts[11]; ok {
		t.Error("missing page should be absent")
	}
}

func TestLeadWikitext_TooManyIDs(t *testing.T) {
	client, _ := testClient(t, http.NotFoundHandler())
	ids := make([]int, MaxPageIDs+1)
	if _, err := client.LeadWikitext(context.Background(), ids); err == nil {
		t.Error("expected error above id limit")
	}
}

func TestPage(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wiki/Snow_Crash":
			_, _ = fmt.Fprint(w, `<div class="mw-parser-output"><p>Lead.</p><h2>Plot</h2><p>Hiro delivers pizza.</p></div>`)
		default:
			http.NotFound(w, r)
		}
	}))

	page, err := client.Page(context.Background(), model.PageRef{ID: 3, Title: "Snow Crash"})
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	if page.Summary != "Lead." || len(page.Sections) != 1 || page.Sections[0].Text != "Hiro delivers pizza." {
		t.Errorf("unexpected page: %+v", page)
	}

	_, err = client.Page(context.Background(), model.PageRef{Title: "Nope"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPage_RobotsDisallowed(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /wiki/\n")
			return
		}
		t.Errorf("article fetched despite robots.txt: %s", r.URL.Path)
	}))

	_, err := client.Page(context.Background(), model.PageRef{Title: "Dune"})
	if !errors.Is(err, ErrDisallowed) {
		t.Errorf("expected ErrDisallowed, got %v", err)
	}
}

func TestClient_UsesCache(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = fmt.Fprint(w, `{"query":{"categorymembers":[{"pageid":1,"ns":0,"title":"Dune"}]}}`)
	}))
	defer server.Close()

	cfg := model.DefaultConfig()
	cfg.Wiki.BaseURL = server.URL
	cfg.Cache.Dir = t.TempDir()
	client := NewClient(cfg)

	for i := 0; i < 2; i++ {
		if _, err := client.CategoryMembers(context.Background(), "Category:X"); err != nil {
			t.Fatalf("CategoryMembers failed: %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("expected cached second call, server saw %d requests", calls.Load())
	}
}

func TestArticleURL(t *testing.T) {
	cfg := model.DefaultConfig()
	client := NewClient(cfg)
	got := client.ArticleURL("The Left Hand of Darkness")
	if got != "https://en.wikipedia.org/wiki/The_Left_Hand_of_Darkness" {
		t.Errorf("ArticleURL = %s", got)
	}
}
