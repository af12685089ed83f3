package domain

import "time"

// Broadcast states reported by the video metadata API.
const (
	BroadcastNone     = "none"
	BroadcastLive     = "live"
	BroadcastUpcoming = "upcoming"
)

// Video is a canonicalized YouTube video keyed by its native id, so
// persistence is a true upsert: re-ingesting a known id updates
// metadata in place.
type Video struct {
	ID                   string
	Title                string
	Description          string
	Thumbnail            string
	ChannelID            string
	LiveBroadcastContent string
	Duration             string
	PublishedAt          time.Time
}

// Final reports whether the video represents finished content. Live and
// upcoming broadcasts are excluded from persistence and picked up again
// on a later pass once they finish.
func (v Video) Final() bool {
	return v.LiveBroadcastContent != BroadcastLive && v.LiveBroadcastContent != BroadcastUpcoming
}
