package prewarm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const (
	DefaultPathContentURL = "https://path-mppprod-app.azurewebsites.net/api/v1/AppContent/fetch?contentKey=PathAlert"

	pathAppName    = "RidePATH"
	pathAppVersion = "5.2.0"

	noAlertsText = "There are no active PATHAlerts at this time"

	sourceClientTimeout = 20 * time.Second
)

// Source lists the raw text of the currently active alerts.
type Source interface {
	Alerts(ctx context.Context) ([]string, error)
}

// PathContentSource reads the alert board served to the RidePATH app: a
// JSON envelope whose Content field is an HTML fragment.
type PathContentSource struct {
	url    string
	apiKey string
	client *http.Client
	log    *slog.Logger
}

func NewPathContentSource(url string, apiKey string, log *slog.Logger) *PathContentSource {
	if url == "" {
		url = DefaultPathContentURL
	}

	return &PathContentSource{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: sourceClientTimeout},
		log:    log,
	}
}

type appContent struct {
	ContentKey string `json:"ContentKey"`
	Content    string `json:"Content"`
}

func (s *PathContentSource) Alerts(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if s.apiKey != "" {
		req.Header.Set("apikey", s.apiKey)
	}
	req.Header.Set("appname", pathAppName)
	req.Header.Set("appversion", pathAppVersion)

	resp, err := s.client.Do(req) //nolint:gosec // configured URL
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			s.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"url", s.url)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)
	}

	var content appContent
	if err = json.NewDecoder(resp.Body).Decode(&content); err != nil {
		return nil, fmt.Errorf("decode app content: %w", err)
	}

	return parseAlertHTML(content.Content)
}

func parseAlertHTML(content string) ([]string, error) {
	if strings.Contains(content, noAlertsText) {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(strings.ReplaceAll(content, "&quot", "")))
	if err != nil {
		return nil, fmt.Errorf("create document from reader: %w", err)
	}

	var alerts []string
	doc.Find(".alertText").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			alerts = append(alerts, text)
		}
	})

	return alerts, nil
}

// FeedSource reads alerts from an RSS or Atom feed, one alert per item.
type FeedSource struct {
	url    string
	parser *gofeed.Parser
}

func NewFeedSource(url string) *FeedSource {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: sourceClientTimeout}

	return &FeedSource{url: url, parser: parser}
}

func (s *FeedSource) Alerts(ctx context.Context) ([]string, error) {
	parsed, err := s.parser.ParseURLWithContext(s.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed (URL = %s): %w", s.url, err)
	}

	alerts := make([]string, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		text := itemText(item)
		if text != "" {
			alerts = append(alerts, text)
		}
	}

	return alerts, nil
}

// itemText prefers the description, stripped of markup, over the title.
func itemText(item *gofeed.Item) string {
	if desc := strings.TrimSpace(item.Description); desc != "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(desc))
		if err == nil {
			if text := strings.TrimSpace(doc.Text()); text != "" {
				return text
			}
		}
	}

	return strings.TrimSpace(item.Title)
}
