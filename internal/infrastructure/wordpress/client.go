// Package wordpress fetches posts through the WP REST API v2.
package wordpress

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andriyandriyan/berandamuslim-scraper/internal/domain"
)

const (
	postsPath   = "wp-json/wp/v2/posts"
	totalHeader = "X-WP-Total"

	pageFields = "id,title,date,modified,link,_links.wp:featuredmedia,_links.wp:term"
	pageEmbed  = "wp:featuredmedia,wp:term"
)

// RequestOptions travels with every call instead of mutating process
// state. InsecureSkipVerify exists for mirrored sites with broken
// certificates.
type RequestOptions struct {
	InsecureSkipVerify bool
}

// Client talks to a WordPress site's REST API.
type Client struct {
	client   *http.Client
	insecure *http.Client
}

// NewClient wires HTTP clients; a nil base client gets a 30s timeout.
// A second client with verification disabled backs the per-request
// InsecureSkipVerify option.
func NewClient(base *http.Client) *Client {
	if base == nil {
		base = &http.Client{Timeout: 30 * time.Second}
	}

	insecureTransport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // opt-in per request
	}

	return &Client{
		client:   base,
		insecure: &http.Client{Timeout: base.Timeout, Transport: insecureTransport},
	}
}

// FetchTotal probes the posts listing with a single-item page and reads
// the total post count from the X-WP-Total header.
func (c *Client) FetchTotal(ctx context.Context, baseURL string, opts RequestOptions) (int, error) {
	params := url.Values{}
	params.Set("_fields", "id")
	params.Set("per_page", "1")

	resp, err := c.get(ctx, baseURL, params, opts)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw := resp.Header.Get(totalHeader)
	if raw == "" {
		return 0, fmt.Errorf("%w: missing %s header", domain.ErrMalformedPayload, totalHeader)
	}

	total, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s header %q", domain.ErrMalformedPayload, totalHeader, raw)
	}

	return total, nil
}

// FetchPage returns one page of posts ordered ascending by id with
// featured media and taxonomy terms embedded, validated on decode.
func (c *Client) FetchPage(ctx context.Context, baseURL string, page, perPage int, opts RequestOptions) ([]Post, error) {
	params := url.Values{}
	params.Set("orderby", "id")
	params.Set("order", "asc")
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(page))
	params.Set("_fields", pageFields)
	params.Set("_embed", pageEmbed)

	resp, err := c.get(ctx, baseURL, params, opts)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var posts []Post
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return nil, fmt.Errorf("%w: decode posts page %d: %v", domain.ErrMalformedPayload, page, err)
	}

	for i := range posts {
		if err := posts[i].validate(); err != nil {
			return nil, fmt.Errorf("page %d item %d: %w", page, i, err)
		}
	}

	return posts, nil
}

func (c *Client) get(ctx context.Context, baseURL string, params url.Values, opts RequestOptions) (*http.Response, error) {
	base := baseURL
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	endpoint := fmt.Sprintf("%s/%s?%s", strings.TrimSuffix(base, "/"), postsPath, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "berandamuslim-scraper/1.0")

	client := c.client
	if opts.InsecureSkipVerify {
		client = c.insecure
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", baseURL, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%s returned %s", baseURL, resp.Status)
	}

	return resp, nil
}
