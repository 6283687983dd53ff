package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/oncallpulse/burnout-meter/internal/cache"
	"github.com/oncallpulse/burnout-meter/internal/config"
	"github.com/oncallpulse/burnout-meter/internal/monitoring"
	"github.com/oncallpulse/burnout-meter/internal/resilience"
	"github.com/oncallpulse/burnout-meter/internal/types"
)

// GitHubAdapter fetches commit and pull-request activity for correlated
// engineers via the GitHub search API.
type GitHubAdapter struct {
	baseURL string
	token   string
	orgs    []string
	hours   config.BusinessHours
	client  *http.Client
	limiter *rate.Limiter
	cache   *cache.Cache
	logger  *monitoring.Logger
}

// NewGitHubAdapter creates a GitHub adapter scoped to the given
// organizations. Business hours drive the after-hours flag on each record.
func NewGitHubAdapter(token string, orgs []string, hours config.BusinessHours, logger *monitoring.Logger) *GitHubAdapter {
	return &GitHubAdapter{
		baseURL: "https://api.github.com",
		token:   token,
		orgs:    orgs,
		hours:   hours,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		cache:   cache.New(15 * time.Minute),
		logger:  logger,
	}
}

type commitSearchResult struct {
	Items []struct {
		SHA    string `json:"sha"`
		Commit struct {
			Author struct {
				Date  time.Time `json:"date"`
				Email string    `json:"email"`
			} `json:"author"`
		} `json:"commit"`
		Author struct {
			Login string `json:"login"`
		} `json:"author"`
		Repository struct {
			FullName string `json:"full_name"`
		} `json:"repository"`
	} `json:"items"`
}

type issueSearchResult struct {
	Items []struct {
		Number    int       `json:"number"`
		CreatedAt time.Time `json:"created_at"`
	} `json:"items"`
}

// FetchActivity collects commits and PRs for one login over the window.
func (g *GitHubAdapter) FetchActivity(ctx context.Context, login string, since, until time.Time) (*types.CodeActivityRecord, error) {
	rec := &types.CodeActivityRecord{Login: login}

	dateRange := fmt.Sprintf("%s..%s", since.Format("2006-01-02"), until.Format("2006-01-02"))

	for _, org := range g.orgs {
		commitQuery := fmt.Sprintf("author:%s org:%s committer-date:%s", login, org, dateRange)
		endpoint := fmt.Sprintf("%s/search/commits?q=%s&per_page=100&sort=committer-date&order=asc", g.baseURL, url.QueryEscape(commitQuery))

		body, err := g.get(ctx, endpoint, "application/vnd.github.cloak-preview")
		if err != nil {
			return nil, fmt.Errorf("search commits for %s in %s: %w", login, org, err)
		}
		var result commitSearchResult
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("decode commit search: %w", err)
		}
		for _, item := range result.Items {
			ts := item.Commit.Author.Date
			rec.Commits = append(rec.Commits, types.Commit{
				Timestamp:  ts,
				Repository: item.Repository.FullName,
				AfterHours: g.afterHours(ts),
				Weekend:    isWeekend(ts),
			})
		}

		prQuery := fmt.Sprintf("author:%s type:pr org:%s created:%s", login, org, dateRange)
		endpoint = fmt.Sprintf("%s/search/issues?q=%s&per_page=100", g.baseURL, url.QueryEscape(prQuery))

		body, err = g.get(ctx, endpoint, "")
		if err != nil {
			return nil, fmt.Errorf("search PRs for %s in %s: %w", login, org, err)
		}
		var prs issueSearchResult
		if err := json.Unmarshal(body, &prs); err != nil {
			return nil, fmt.Errorf("decode PR search: %w", err)
		}
		for _, item := range prs.Items {
			rec.PullRequests = append(rec.PullRequests, types.PullRequest{
				CreatedAt:  item.CreatedAt,
				AfterHours: g.afterHours(item.CreatedAt),
				Weekend:    isWeekend(item.CreatedAt),
			})
		}
	}

	return rec, nil
}

// FetchOrgLogins lists member logins across the configured organizations,
// feeding the identity correlation candidate set.
func (g *GitHubAdapter) FetchOrgLogins(ctx context.Context) ([]string, error) {
	var logins []string
	seen := map[string]struct{}{}

	for _, org := range g.orgs {
		for page := 1; ; page++ {
			endpoint := fmt.Sprintf("%s/orgs/%s/members?per_page=100&page=%d", g.baseURL, org, page)
			body, err := g.get(ctx, endpoint, "")
			if err != nil {
				return nil, fmt.Errorf("list members of %s: %w", org, err)
			}
			var members []struct {
				Login string `json:"login"`
			}
			if err := json.Unmarshal(body, &members); err != nil {
				return nil, fmt.Errorf("decode members: %w", err)
			}
			if len(members) == 0 {
				break
			}
			for _, m := range members {
				if _, ok := seen[m.Login]; !ok {
					seen[m.Login] = struct{}{}
					logins = append(logins, m.Login)
				}
			}
		}
	}
	return logins, nil
}

// FetchCommitAuthors builds an email-to-login index from commits pushed to
// the configured organizations over the window. Commits whose author has no
// linked GitHub account carry no login and are skipped.
func (g *GitHubAdapter) FetchCommitAuthors(ctx context.Context, since, until time.Time) (map[string]string, error) {
	index := map[string]string{}
	dateRange := fmt.Sprintf("%s..%s", since.Format("2006-01-02"), until.Format("2006-01-02"))

	for _, org := range g.orgs {
		query := fmt.Sprintf("org:%s committer-date:%s", org, dateRange)
		endpoint := fmt.Sprintf("%s/search/commits?q=%s&per_page=100", g.baseURL, url.QueryEscape(query))

		body, err := g.get(ctx, endpoint, "application/vnd.github.cloak-preview")
		if err != nil {
			return nil, fmt.Errorf("search commit authors in %s: %w", org, err)
		}
		var result commitSearchResult
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("decode commit search: %w", err)
		}
		for _, item := range result.Items {
			email := strings.ToLower(item.Commit.Author.Email)
			if email == "" || item.Author.Login == "" {
				continue
			}
			if _, ok := index[email]; !ok {
				index[email] = item.Author.Login
			}
		}
	}
	return index, nil
}

func (g *GitHubAdapter) afterHours(t time.Time) bool {
	if isWeekend(t) {
		return true
	}
	h := t.Hour()
	return h < g.hours.Start || h >= g.hours.End
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (g *GitHubAdapter) get(ctx context.Context, endpoint, accept string) ([]byte, error) {
	key := cache.Key("github", endpoint)
	if data, ok := g.cache.Get(key); ok {
		return data, nil
	}

	var body []byte
	err := resilience.Retry(ctx, func() error {
		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		if g.token != "" {
			req.Header.Set("Authorization", "token "+g.token)
		}
		if accept != "" {
			req.Header.Set("Accept", accept)
		}

		start := time.Now()
		resp, err := g.client.Do(req)
		if err != nil {
			g.logger.CollectorLogger("github", endpoint, 0, time.Since(start), false)
			return err
		}
		defer resp.Body.Close()
		g.logger.CollectorLogger("github", endpoint, resp.StatusCode, time.Since(start), resp.StatusCode == http.StatusOK)

		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("github API status %d: %s", resp.StatusCode, string(msg))
		}

		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	g.cache.Set(key, body)
	return body, nil
}
