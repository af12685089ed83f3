package domain

import "time"

// Source is a WordPress site whose posts are mirrored as articles.
// ArticlesCount caches how many of its posts are already stored locally;
// the planner compares it against the remote total every pass.
type Source struct {
	ID            string
	Name          string
	URL           string
	ArticlesCount int
	DeletedAt     *time.Time
}

// Channel is a YouTube channel whose uploads and streams are mirrored.
type Channel struct {
	ID        string
	Name      string
	CustomURL string
	DeletedAt *time.Time
}

// InstagramAccount publishes kajian announcements. CityID is the
// account's configured city, used when a post carries no resolvable
// location.
type InstagramAccount struct {
	ID        string
	Username  string
	CityID    string
	DeletedAt *time.Time
}
