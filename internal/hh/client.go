// Package hh fetches the most recent vacancies from the hh.ru public API.
package hh

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"vacstat/internal/breaker"
	"vacstat/internal/cache"
	"vacstat/internal/core"
	"vacstat/internal/ingest"
)

const (
	DefaultLimit = 10
	maxLimit     = 100
	userAgent    = "vacstat/1.0 (vacancy statistics)"
)

var ErrUnavailable = errors.New("hh.ru unavailable")

type Client struct {
	baseURL string
	http    *http.Client
	cache   *cache.LRUCache[[]core.LatestVacancy]
	breaker *gobreaker.CircuitBreaker[[]core.LatestVacancy]
}

// NewClient creates a client for baseURL. Results are cached for ttl; a zero
// ttl disables caching.
func NewClient(baseURL string, ttl time.Duration, httpClient *http.Client) *Client {
	return newClient(baseURL, ttl, httpClient, breaker.DefaultConfig("hh_api"))
}

func newClient(baseURL string, ttl time.Duration, httpClient *http.Client, cfg breaker.Config) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		breaker: breaker.New[[]core.LatestVacancy](cfg),
	}
	if ttl > 0 {
		c.cache = cache.NewLRUCache[[]core.LatestVacancy]("hh_latest", 32, ttl)
	}
	return c
}

// Cache exposes the result cache for periodic cleanup; nil when disabled.
func (c *Client) Cache() *cache.LRUCache[[]core.LatestVacancy] {
	return c.cache
}

// Latest returns up to limit vacancies matching query, newest first.
func (c *Client) Latest(ctx context.Context, query string, limit int) ([]core.LatestVacancy, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	key := query + "|" + strconv.Itoa(limit)
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			return v, nil
		}
	}

	out, err := c.breaker.Execute(func() ([]core.LatestVacancy, error) {
		return c.fetch(ctx, query, limit)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(key, out)
	}
	return out, nil
}

type vacanciesResponse struct {
	Items []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Area struct {
			Name string `json:"name"`
		} `json:"area"`
		Employer struct {
			Name string `json:"name"`
		} `json:"employer"`
		Salary *struct {
			From     *float64 `json:"from"`
			To       *float64 `json:"to"`
			Currency string   `json:"currency"`
		} `json:"salary"`
		PublishedAt  string `json:"published_at"`
		AlternateURL string `json:"alternate_url"`
	} `json:"items"`
}

func (c *Client) fetch(ctx context.Context, query string, limit int) ([]core.LatestVacancy, error) {
	q := url.Values{}
	q.Set("text", query)
	q.Set("order_by", "publication_time")
	q.Set("per_page", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/vacancies?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request vacancies: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request vacancies: unexpected status %d", resp.StatusCode)
	}

	var body vacanciesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode vacancies: %w", err)
	}

	out := make([]core.LatestVacancy, 0, len(body.Items))
	for _, it := range body.Items {
		v := core.LatestVacancy{
			ID:          it.ID,
			Title:       it.Name,
			Company:     it.Employer.Name,
			Region:      it.Area.Name,
			PublishedAt: ingest.ParsePublishedAt(it.PublishedAt),
			URL:         it.AlternateURL,
		}
		if it.Salary != nil {
			v.Salary = FormatSalary(it.Salary.From, it.Salary.To, it.Salary.Currency)
		}
		out = append(out, v)
	}
	return out, nil
}

// FormatSalary renders a salary range the way vacancy listings show it.
func FormatSalary(from, to *float64, currency string) string {
	var parts []string
	if from != nil && *from > 0 {
		parts = append(parts, "от "+strconv.FormatFloat(*from, 'f', -1, 64))
	}
	if to != nil && *to > 0 {
		parts = append(parts, "до "+strconv.FormatFloat(*to, 'f', -1, 64))
	}
	if len(parts) == 0 {
		return ""
	}
	if currency != "" {
		parts = append(parts, currency)
	}
	return strings.Join(parts, " ")
}
