// Package trendsource fetches trending search topics from SerpAPI's Google
// Trends "trending now" engine.
package trendsource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"blogsmith/internal/core"
	"blogsmith/internal/logger"
)

const defaultBaseURL = "https://serpapi.com/search"

// Client fetches trending topics from SerpAPI.
type Client struct {
	apiKey    string
	baseURL   string
	client    *http.Client
	rateLimit time.Duration
	lastCall  time.Time
}

// NewClient creates a SerpAPI trend client. It fails fast when the API key
// is empty.
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("serpapi API key is required. Set SERPAPI_API_KEY environment variable or serpapi.api_key in config file")
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		rateLimit: 1 * time.Second,
	}, nil
}

// SetBaseURL overrides the API endpoint, used by tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// apiResponse covers both response shapes the trending-now engine has been
// observed to return: a flat trending_searches list, and an older
// daily_searches grouping.
type apiResponse struct {
	TrendingSearches []story `json:"trending_searches"`
	DailySearches    []struct {
		Searches []story `json:"searches"`
	} `json:"daily_searches"`
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type story struct {
	Query              string          `json:"query"`
	SearchVolume       json.RawMessage `json:"search_volume"`
	IncreasePercentage int             `json:"increase_percentage"`
	Categories         []struct {
		Name string `json:"name"`
	} `json:"categories"`
	TrendBreakdown []string `json:"trend_breakdown"`
	RelatedQueries []struct {
		Query string `json:"query"`
	} `json:"related_queries"`
	// Older format nests the query under a title object.
	Title struct {
		Query            string `json:"query"`
		FormattedTraffic string `json:"formattedTraffic"`
	} `json:"title"`
	Articles []struct {
		Title  string `json:"title"`
		Source string `json:"source"`
	} `json:"articles"`
}

// FetchTrending returns the current trending topics for the region, ranked
// in API order. Entries with no recoverable keyword are skipped.
func (c *Client) FetchTrending(ctx context.Context, region string, windowHours int) ([]core.Topic, error) {
	if elapsed := time.Since(c.lastCall); elapsed < c.rateLimit {
		time.Sleep(c.rateLimit - elapsed)
	}
	c.lastCall = time.Now()

	if region == "" {
		region = "US"
	}
	if windowHours <= 0 {
		windowHours = 24
	}

	params := url.Values{}
	params.Set("engine", "google_trends_trending_now")
	params.Set("geo", strings.ToUpper(region))
	params.Set("hl", "en")
	params.Set("hours", strconv.Itoa(windowHours))
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create SerpAPI request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute SerpAPI request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SerpAPI request failed with status: %d", resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse SerpAPI response: %w", err)
	}
	if apiResp.Error.Code != 0 {
		return nil, fmt.Errorf("SerpAPI error (%d): %s", apiResp.Error.Code, apiResp.Error.Message)
	}

	stories := apiResp.TrendingSearches
	if len(stories) == 0 && len(apiResp.DailySearches) > 0 {
		stories = apiResp.DailySearches[0].Searches
	}

	now := time.Now().UTC()
	loc := strings.ToLower(region)
	var topics []core.Topic
	for i, s := range stories {
		t, ok := s.toTopic(i+1, loc, now)
		if !ok {
			continue
		}
		topics = append(topics, t)
	}

	logger.Info("trending topics fetched", "region", region, "count", len(topics))
	return topics, nil
}

func (s story) toTopic(rank int, location string, now time.Time) (core.Topic, bool) {
	keyword := strings.TrimSpace(s.Query)
	related := s.TrendBreakdown
	category := joinCategories(s)

	if keyword == "" {
		// Older format: query nested under title, related keywords and
		// category recovered from the attached articles.
		keyword = strings.TrimSpace(s.Title.Query)
		if keyword == "" {
			return core.Topic{}, false
		}
		var sources, titles []string
		for _, a := range s.Articles {
			if a.Source != "" {
				sources = append(sources, a.Source)
			}
			if a.Title != "" {
				titles = append(titles, a.Title)
			}
		}
		category = strings.Join(sources, ", ")
		related = titles
	} else if len(related) == 0 {
		for _, q := range s.RelatedQueries {
			if q.Query != "" {
				related = append(related, q.Query)
			}
		}
	}

	return core.Topic{
		Keyword:            keyword,
		Rank:               rank,
		Location:           location,
		Timestamp:          now,
		SearchVolume:       parseVolume(s.SearchVolume, s.Title.FormattedTraffic),
		IncreasePercentage: s.IncreasePercentage,
		Category:           category,
		RelatedKeywords:    related,
	}, true
}

func joinCategories(s story) string {
	var names []string
	for _, c := range s.Categories {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	return strings.Join(names, ", ")
}

// parseVolume accepts the volume as a JSON number, a numeric string, or the
// older formatted traffic strings like "200K+".
func parseVolume(raw json.RawMessage, formatted string) int {
	if len(raw) > 0 {
		var n int
		if err := json.Unmarshal(raw, &n); err == nil {
			return n
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if v, ok := parseTraffic(s); ok {
				return v
			}
		}
	}
	if v, ok := parseTraffic(formatted); ok {
		return v
	}
	return 0
}

func parseTraffic(s string) (int, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.ToUpper(s), "+"))
	if s == "" {
		return 0, false
	}
	mult := 1
	switch {
	case strings.HasSuffix(s, "M"):
		mult = 1000000
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "K"):
		mult = 1000
		s = strings.TrimSuffix(s, "K")
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f * float64(mult)), true
}
