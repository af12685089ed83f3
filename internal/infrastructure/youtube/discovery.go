package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/andriyandriyan/berandamuslim-scraper/internal/domain"
)

// Channel tabs whose listings feed the video pipeline.
const (
	TabVideos  = "videos"
	TabStreams = "streams"
)

const defaultChannelBaseURL = "https://www.youtube.com"

var initialDataExpr = regexp.MustCompile(`>var ytInitialData = (.*?);</script>`)

// tabIndex maps a tab name to its position inside the browse renderer.
var tabIndex = map[string]int{
	TabVideos:  1,
	TabStreams: 3,
}

// fetchChannelTab downloads the rendered channel tab page.
func fetchChannelTab(ctx context.Context, client *http.Client, baseURL, customURL, tab string) (string, error) {
	endpoint := fmt.Sprintf("%s/@%s/%s", strings.TrimSuffix(baseURL, "/"), customURL, tab)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept-Language", "en")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch channel tab %s/%s: %w", customURL, tab, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("channel tab %s/%s returned %s", customURL, tab, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read channel tab %s/%s: %w", customURL, tab, err)
	}

	return string(body), nil
}

// InitialDataScraper extracts video ids from the ytInitialData blob
// embedded in the channel page markup.
type InitialDataScraper struct {
	baseURL string
	client  *http.Client
	perTab  int
}

// NewInitialDataScraper caps ids per tab at perTab (12 when zero).
func NewInitialDataScraper(client *http.Client, perTab int) *InitialDataScraper {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if perTab <= 0 {
		perTab = 12
	}
	return &InitialDataScraper{baseURL: defaultChannelBaseURL, client: client, perTab: perTab}
}

// WithBaseURL points the scraper at a different host. Used by tests.
func (s *InitialDataScraper) WithBaseURL(baseURL string) *InitialDataScraper {
	s.baseURL = baseURL
	return s
}

// ChannelVideoIDs returns the first ids listed on one channel tab, in
// rendered order.
func (s *InitialDataScraper) ChannelVideoIDs(ctx context.Context, customURL, tab string) ([]string, error) {
	index, ok := tabIndex[tab]
	if !ok {
		return nil, fmt.Errorf("unknown channel tab %q", tab)
	}

	body, err := fetchChannelTab(ctx, s.client, s.baseURL, customURL, tab)
	if err != nil {
		return nil, err
	}

	match := initialDataExpr.FindStringSubmatch(body)
	if match == nil {
		return nil, fmt.Errorf("%w: ytInitialData not found on %s/%s", domain.ErrMalformedPayload, customURL, tab)
	}

	var data initialData
	if err := json.Unmarshal([]byte(match[1]), &data); err != nil {
		return nil, fmt.Errorf("%w: decode ytInitialData on %s/%s: %v", domain.ErrMalformedPayload, customURL, tab, err)
	}

	tabs := data.Contents.TwoColumnBrowseResultsRenderer.Tabs
	if index >= len(tabs) {
		return nil, fmt.Errorf("%w: tab %d missing on %s/%s", domain.ErrMalformedPayload, index, customURL, tab)
	}

	renderer := tabs[index].TabRenderer
	if renderer == nil || renderer.Content == nil || renderer.Content.RichGridRenderer == nil {
		return nil, fmt.Errorf("%w: grid renderer missing on %s/%s", domain.ErrMalformedPayload, customURL, tab)
	}

	contents := renderer.Content.RichGridRenderer.Contents
	if len(contents) > s.perTab {
		contents = contents[:s.perTab]
	}

	var ids []string
	for _, content := range contents {
		if content.RichItemRenderer == nil {
			continue
		}
		if renderer := content.RichItemRenderer.Content.VideoRenderer; renderer != nil && renderer.VideoID != "" {
			ids = append(ids, renderer.VideoID)
		}
	}

	return ids, nil
}

type initialData struct {
	Contents struct {
		TwoColumnBrowseResultsRenderer struct {
			Tabs []struct {
				TabRenderer *struct {
					Content *struct {
						RichGridRenderer *struct {
							Contents []struct {
								RichItemRenderer *struct {
									Content struct {
										VideoRenderer *struct {
											VideoID string `json:"videoId"`
										} `json:"videoRenderer"`
									} `json:"content"`
								} `json:"richItemRenderer"`
							} `json:"contents"`
						} `json:"richGridRenderer"`
					} `json:"content"`
				} `json:"tabRenderer"`
			} `json:"tabs"`
		} `json:"twoColumnBrowseResultsRenderer"`
	} `json:"contents"`
}

// AnchorScraper extracts video ids from watch links in rendered channel
// markup, for pages fetched through a browser that already executed the
// scripts. It yields the same shape as InitialDataScraper: ordered ids,
// capped per tab.
type AnchorScraper struct {
	baseURL string
	client  *http.Client
	perTab  int
}

// NewAnchorScraper caps ids per tab at perTab (12 when zero).
func NewAnchorScraper(client *http.Client, perTab int) *AnchorScraper {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if perTab <= 0 {
		perTab = 12
	}
	return &AnchorScraper{baseURL: defaultChannelBaseURL, client: client, perTab: perTab}
}

// WithBaseURL points the scraper at a different host. Used by tests.
func (s *AnchorScraper) WithBaseURL(baseURL string) *AnchorScraper {
	s.baseURL = baseURL
	return s
}

// ChannelVideoIDs parses watch?v= anchors below the grid marker, keeping
// first occurrence order and dropping duplicate ids.
func (s *AnchorScraper) ChannelVideoIDs(ctx context.Context, customURL, tab string) ([]string, error) {
	if _, ok := tabIndex[tab]; !ok {
		return nil, fmt.Errorf("unknown channel tab %q", tab)
	}

	body, err := fetchChannelTab(ctx, s.client, s.baseURL, customURL, tab)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse channel tab %s/%s: %v", domain.ErrMalformedPayload, customURL, tab, err)
	}

	grid := doc.Find("ytd-rich-grid-renderer")
	if grid.Length() == 0 {
		return nil, fmt.Errorf("%w: grid marker missing on %s/%s", domain.ErrMalformedPayload, customURL, tab)
	}

	seen := map[string]struct{}{}
	var ids []string
	grid.Find(`a[href*="watch?v="]`).EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		href, _ := anchor.Attr("href")
		id := watchID(href)
		if id == "" {
			return true
		}
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
		return len(ids) < s.perTab
	})

	return ids, nil
}

func watchID(href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return parsed.Query().Get("v")
}
