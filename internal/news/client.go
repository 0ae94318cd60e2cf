package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const currencyQuery = "currency OR forex OR rupee OR dollar OR euro OR yen OR pound"

// Article is a normalized news item for the feed.
type Article struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	CreatedAt string `json:"createdAt"`
	Content   string `json:"content"`
	URL       string `json:"url"`
}

type gnewsResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Client fetches currency-related articles from the news aggregator.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CurrencyNews fetches up to 10 articles for the fixed currency query and
// normalizes them for the feed.
func (c *Client) CurrencyNews(ctx context.Context) ([]Article, error) {
	params := url.Values{}
	params.Set("q", currencyQuery)
	params.Set("lang", "en")
	params.Set("max", "10")
	params.Set("apikey", c.apiKey)

	fullURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news API returned status %d", resp.StatusCode)
	}

	var gnews gnewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gnews); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	articles := make([]Article, 0, len(gnews.Articles))
	for i, item := range gnews.Articles {
		author := item.Source.Name
		if author == "" {
			author = "Unknown"
		}
		articles = append(articles, Article{
			ID:        i,
			Title:     item.Title,
			Author:    author,
			CreatedAt: item.PublishedAt,
			Content:   item.Description,
			URL:       item.URL,
		})
	}

	return articles, nil
}
