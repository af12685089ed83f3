// Package youtube covers both halves of the video pipeline: discovering
// video ids from channel pages and resolving them to metadata through
// the Data API v3.
package youtube

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

// MaxIDsPerCall is the Data API limit on ids per videos.list request.
const MaxIDsPerCall = 40

const defaultAPIEndpoint = "https://www.googleapis.com/youtube/v3/videos"

// Video is the raw metadata for one video as returned by videos.list.
type Video struct {
	ID                   string
	Title                string
	Description          string
	Thumbnail            string
	ChannelID            string
	LiveBroadcastContent string
	Duration             string
	PublishedAt          string
}

// MetadataClient batch-resolves video ids via the videos.list endpoint.
type MetadataClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewMetadataClient wires the API key; a nil client gets a 30s timeout.
func NewMetadataClient(apiKey string, client *http.Client) *MetadataClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &MetadataClient{endpoint: defaultAPIEndpoint, apiKey: apiKey, client: client}
}

// WithEndpoint points the client at a different base URL. Used by tests.
func (c *MetadataClient) WithEndpoint(endpoint string) *MetadataClient {
	c.endpoint = endpoint
	return c
}

// ListVideos fetches id, snippet and contentDetails for up to
// MaxIDsPerCall ids in one call.
func (c *MetadataClient) ListVideos(ctx context.Context, ids []string) ([]Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxIDsPerCall {
		return nil, fmt.Errorf("videos.list accepts at most %d ids, got %d", MaxIDsPerCall, len(ids))
	}

	params := url.Values{}
	params.Set("part", "id,snippet,contentDetails")
	params.Set("maxResults", strconv.Itoa(MaxIDsPerCall))
	params.Set("id", strings.Join(ids, ","))
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("videos.list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("videos.list returned %s", resp.Status)
	}

	var payload listResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode videos.list: %v", domain.ErrMalformedPayload, err)
	}

	videos := make([]Video, 0, len(payload.Items))
	for i, item := range payload.Items {
		video, err := item.toVideo()
		if err != nil {
			return nil, fmt.Errorf("videos.list item %d: %w", i, err)
		}
		videos = append(videos, video)
	}

	return videos, nil
}

type listResponse struct {
	Items []listItem `json:"items"`
}

type listItem struct {
	ID      string `json:"id"`
	Snippet *struct {
		Title                string `json:"title"`
		Description          string `json:"description"`
		ChannelID            string `json:"channelId"`
		PublishedAt          string `json:"publishedAt"`
		LiveBroadcastContent string `json:"liveBroadcastContent"`
		Thumbnails           struct {
			Medium *struct {
				URL string `json:"url"`
			} `json:"medium"`
		} `json:"thumbnails"`
	} `json:"snippet"`
	ContentDetails *struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
}

func (i listItem) toVideo() (Video, error) {
	switch {
	case i.ID == "":
		return Video{}, fmt.Errorf("%w: item without id", domain.ErrMalformedPayload)
	case i.Snippet == nil:
		return Video{}, fmt.Errorf("%w: video %s without snippet", domain.ErrMalformedPayload, i.ID)
	case i.ContentDetails == nil:
		return Video{}, fmt.Errorf("%w: video %s without contentDetails", domain.ErrMalformedPayload, i.ID)
	case i.Snippet.Title == "" || i.Snippet.ChannelID == "":
		return Video{}, fmt.Errorf("%w: video %s with incomplete snippet", domain.ErrMalformedPayload, i.ID)
	case i.Snippet.LiveBroadcastContent == "":
		return Video{}, fmt.Errorf("%w: video %s without broadcast status", domain.ErrMalformedPayload, i.ID)
	case i.Snippet.Thumbnails.Medium == nil || i.Snippet.Thumbnails.Medium.URL == "":
		return Video{}, fmt.Errorf("%w: video %s without medium thumbnail", domain.ErrMalformedPayload, i.ID)
	case i.Snippet.PublishedAt == "":
		return Video{}, fmt.Errorf("%w: video %s without publish timestamp", domain.ErrMalformedPayload, i.ID)
	}

	return Video{
		ID:                   i.ID,
		Title:                i.Snippet.Title,
		Description:          i.Snippet.Description,
		Thumbnail:            i.Snippet.Thumbnails.Medium.URL,
		ChannelID:            i.Snippet.ChannelID,
		LiveBroadcastContent: i.Snippet.LiveBroadcastContent,
		Duration:             i.ContentDetails.Duration,
		PublishedAt:          i.Snippet.PublishedAt,
	}, nil
}
