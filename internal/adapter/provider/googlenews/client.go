// Package googlenews implements the news provider over the Google News
// RSS search feed.
package googlenews

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BthnIsler/finoria/internal/domain"
)

// DefaultBaseURL is the public Google News host
const DefaultBaseURL = "https://news.google.com"

// Client fetches and parses RSS search results. It implements
// domain.NewsProvider.
type Client struct {
	httpc   *http.Client
	baseURL string
	locale  string // hl/gl/ceid parameter set, e.g. "tr"
}

// New creates a Google News client. An empty URL uses the public host;
// an empty locale defaults to Turkish, matching the app's audience.
func New(baseURL, locale string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if locale == "" {
		locale = "tr"
	}
	return &Client{
		httpc:   &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
		locale:  locale,
	}
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
	Source  struct {
		Name string `xml:",chardata"`
	} `xml:"source"`
}

// Search returns the feed's articles for a free-text query, in feed order
func (c *Client) Search(ctx context.Context, query string) ([]domain.Article, error) {
	region := c.locale
	addr := fmt.Sprintf("%s/rss/search?q=%s&hl=%s&gl=%s&ceid=%s",
		c.baseURL,
		url.QueryEscape(query),
		region,
		url.QueryEscape(strings.ToUpper(region)),
		url.QueryEscape(strings.ToUpper(region)+":"+region),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot http GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("malformed rss feed: %w", err)
	}

	articles := make([]domain.Article, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		if item.Title == "" || item.Link == "" {
			continue
		}
		articles = append(articles, domain.Article{
			Title:       item.Title,
			Link:        item.Link,
			PublishedAt: item.PubDate,
			Source:      item.Source.Name,
		})
	}
	return articles, nil
}
