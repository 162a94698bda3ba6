// Package fetch downloads listing pages and reduces them to visible text.
package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
)

const userAgent = "numismaticMarket-extractor/1.0"

type PageFetcher struct {
	client *resty.Client
}

func NewPageFetcher(timeout time.Duration) *PageFetcher {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(2)
	client.SetRetryWaitTime(500 * time.Millisecond)
	client.SetHeader("User-Agent", userAgent)
	client.SetHeader("Accept", "text/html,text/plain;q=0.9,*/*;q=0.5")

	return &PageFetcher{client: client}
}

// Fetch returns the page's text content. HTML is stripped of markup, scripts
// and styles; other content types are returned as is.
func (f *PageFetcher) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode())
	}

	body := resp.String()
	if strings.Contains(resp.Header().Get("Content-Type"), "html") {
		return VisibleText(body), nil
	}
	return body, nil
}

// VisibleText joins the text nodes of an HTML document with single spaces.
func VisibleText(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	var (
		sb   strings.Builder
		skip int
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(sb.String())
		case html.StartTagToken:
			if isHidden(z) {
				skip++
			}
		case html.EndTagToken:
			if isHidden(z) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			for _, word := range strings.Fields(string(z.Text())) {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(word)
			}
		}
	}
}

func isHidden(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style", "noscript", "template":
		return true
	}
	return false
}
