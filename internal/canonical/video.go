package canonical

import (
	"fmt"
	"time"

	"github.com/andriyandriyan/berandamuslim-scraper/internal/domain"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/infrastructure/youtube"
)

// Video maps raw video metadata into the local schema. The remote id is
// stable and reusable, so it doubles as the local key.
func Video(raw youtube.Video) (domain.Video, error) {
	publishedAt, err := time.Parse(time.RFC3339, raw.PublishedAt)
	if err != nil {
		return domain.Video{}, fmt.Errorf("%w: video %s publishedAt %q", domain.ErrMalformedPayload, raw.ID, raw.PublishedAt)
	}

	return domain.Video{
		ID:                   raw.ID,
		Title:                raw.Title,
		Description:          raw.Description,
		Thumbnail:            raw.Thumbnail,
		ChannelID:            raw.ChannelID,
		LiveBroadcastContent: raw.LiveBroadcastContent,
		Duration:             raw.Duration,
		PublishedAt:          publishedAt,
	}, nil
}
