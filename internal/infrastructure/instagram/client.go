// Package instagram reads an account's recent feed through the
// internal web API used by the instagram.com frontend.
package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andriyandriyan/berandamuslim-scraper/internal/domain"
)

const defaultBaseURL = "https://www.instagram.com"

// Post is one feed item. Carousel posts carry their images under
// CarouselMedia instead of ImageVersions.
type Post struct {
	Code          string         `json:"code"`
	Caption       *Caption       `json:"caption"`
	ImageVersions *ImageVersions `json:"image_versions2"`
	CarouselMedia []CarouselItem `json:"carousel_media"`
}

// CarouselItem is one slide of a carousel post.
type CarouselItem struct {
	ImageVersions ImageVersions `json:"image_versions2"`
}

// Caption holds the post text the map link is embedded in.
type Caption struct {
	Text string `json:"text"`
}

// ImageVersions lists the same image at several resolutions.
type ImageVersions struct {
	Candidates []ImageCandidate `json:"candidates"`
}

// ImageCandidate is one resolution variant.
type ImageCandidate struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Client fetches user feeds. The app id and session cookie come from
// config; without them the API answers with a login redirect.
type Client struct {
	baseURL string
	appID   string
	cookie  string
	client  *http.Client
}

// NewClient wires the required headers; a nil client gets a 30s timeout.
func NewClient(appID, cookie string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: defaultBaseURL, appID: appID, cookie: cookie, client: client}
}

// WithBaseURL points the client at a different host. Used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// FetchFeed returns up to count recent posts for one username.
func (c *Client) FetchFeed(ctx context.Context, username string, count int) ([]Post, error) {
	params := url.Values{}
	params.Set("count", strconv.Itoa(count))

	endpoint := fmt.Sprintf("%s/api/v1/feed/user/%s/username?%s",
		strings.TrimSuffix(c.baseURL, "/"), username, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("x-ig-app-id", c.appID)
	req.Header.Set("cookie", c.cookie)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", username, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s returned %s", username, resp.Status)
	}

	var payload struct {
		Items []Post `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode feed %s: %v", domain.ErrMalformedPayload, username, err)
	}

	for i, item := range payload.Items {
		if item.Code == "" {
			return nil, fmt.Errorf("%w: feed %s item %d without code", domain.ErrMalformedPayload, username, i)
		}
	}

	return payload.Items, nil
}
