package domain

import "time"

// Article is a canonicalized WordPress post. ID is generated locally at
// canonicalization time (the remote post id lives in OriginArticleID),
// so retried persistence never mints a second id for the same post.
type Article struct {
	ID              string
	Title           string
	Image           *string
	OriginArticleID int64
	CategoryID      *string
	Tags            []string
	SourceURL       string
	Date            time.Time
	Modified        time.Time
	SourceID        string
}

// ArticleCategory is a derived entity keyed by slug: unique across the
// whole store, created lazily on first sighting within a pass.
type ArticleCategory struct {
	ID   string
	Slug string
	Name string
}
