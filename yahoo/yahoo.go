// Package yahoo fetches quotes and headlines from Yahoo Finance's public
// endpoints. No API key is required, but Yahoo rate limits aggressively,
// so responses are cached on disk and expire daily.
package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/assetbook"
)

// DefaultBaseURL is Yahoo Finance's public query endpoint.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client queries Yahoo Finance. It implements assetbook.MarketSource.
type Client struct {
	base string
	http *http.Client
}

// NewClient returns a client against the public Yahoo endpoint, with
// responses cached on disk for the day.
func NewClient() *Client {
	return &Client{base: DefaultBaseURL, http: newDailyCachingClient()}
}

/*
	{
	    "chart": {
	        "result": [
	            {
	                "meta": {
	                    "currency": "USD",
	                    "symbol": "NVDA",
	                    "regularMarketPrice": 177.99,
	                    ...
*/
func (c *Client) Quote(ctx context.Context, symbol string) (assetbook.Money, error) {
	var zero assetbook.Money
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", c.base, url.PathEscape(symbol))

	var jobj any
	if err := jwget(ctx, c.http, addr, &jobj); err != nil {
		return zero, fmt.Errorf("error in wget %q: %w", symbol, err)
	}

	price, err := extractFloat("$.chart.result[0].meta.regularMarketPrice", jobj)
	if err != nil {
		return zero, fmt.Errorf("error parsing quote %q: %w", symbol, err)
	}
	// The currency is informative only; missing means USD, which is what
	// every US-listed symbol quotes in anyway.
	cur, err := extractString("$.chart.result[0].meta.currency", jobj)
	if err != nil {
		cur = "USD"
	}
	return assetbook.M(price, cur), nil
}

/*
	{
	    "news": [
	        {
	            "uuid": "...",
	            "title": "Nvidia earnings on deck as AI trade wobbles",
	            "publisher": "Yahoo Finance",
	            "link": "https://finance.yahoo.com/news/...",
	            "providerPublishTime": 1756012800,
	            ...
*/
type newsResult struct {
	Title       string `json:"title"`
	Publisher   string `json:"publisher"`
	Link        string `json:"link"`
	PublishTime int64  `json:"providerPublishTime"`
}

// Headlines returns up to limit recent news items mentioning symbol, most
// recent first as Yahoo serves them. The Symbol field is left empty; the
// caller tags items with the asset they were collected for.
func (c *Client) Headlines(ctx context.Context, symbol string, limit int) ([]assetbook.NewsItem, error) {
	addr := fmt.Sprintf("%s/v1/finance/search?q=%s&newsCount=%d&quotesCount=0", c.base, url.QueryEscape(symbol), limit)

	var content struct {
		News []newsResult `json:"news"`
	}
	if err := jwget(ctx, c.http, addr, &content); err != nil {
		return nil, fmt.Errorf("error in wget news %q: %w", symbol, err)
	}

	items := make([]assetbook.NewsItem, 0, len(content.News))
	for _, n := range content.News {
		if n.Title == "" {
			continue
		}
		items = append(items, assetbook.NewsItem{
			Title:     n.Title,
			Publisher: n.Publisher,
			Published: time.Unix(n.PublishTime, 0).UTC(),
			URL:       n.Link,
		})
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

// extractFloat evaluates a jsonpath expression expected to yield a number.
func extractFloat(path string, jobj any) (float64, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, fmt.Errorf("%q %w", path, err)
	}
	// because jsonpath is never clear about wheter it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return 0, fmt.Errorf("%q not a float: %v", path, jval)
	}
	return val, nil
}

// extractString evaluates a jsonpath expression expected to yield a string.
func extractString(path string, jobj any) (string, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return "", fmt.Errorf("%q %w", path, err)
	}
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(string)
	if !ok {
		return "", fmt.Errorf("%q not a string: %v", path, jval)
	}
	return val, nil
}
