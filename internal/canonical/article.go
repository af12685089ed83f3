// Package canonical maps raw remote payloads into the local schema.
package canonical

import (
	"fmt"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/andriyandriyan/berandamuslim-scraper/internal/domain"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/infrastructure/wordpress"
)

const (
	// maxTitleBytes is the storage limit on article titles. Longer
	// titles are cut silently, byte-exact to the limit.
	maxTitleBytes = 250

	// articleIDLength matches the legacy id format of existing rows.
	articleIDLength = 12

	// WP reports never-modified posts with a year -1 placeholder.
	modifiedSentinelPrefix = "-0001"
)

// CategoryRef is a pass-local reference to a category by natural key,
// resolved to a stored id by the dedup coordinator before persistence.
type CategoryRef struct {
	Slug string
	Name string
}

// Article maps a WP post into the local schema. The local id is minted
// here rather than at persistence time, so retrying a failed commit
// reuses the same id for the same logical record.
//
// The primary category is the first embedded term with the category
// taxonomy; tags are kept as a plain name list on the record.
func Article(post wordpress.Post, sourceID string) (domain.Article, *CategoryRef, error) {
	id, err := gonanoid.New(articleIDLength)
	if err != nil {
		return domain.Article{}, nil, fmt.Errorf("generate article id: %w", err)
	}

	date, err := parseISO(post.Date)
	if err != nil {
		return domain.Article{}, nil, fmt.Errorf("%w: post %d date %q", domain.ErrMalformedPayload, post.ID, post.Date)
	}

	modified := date
	if !strings.HasPrefix(post.Modified, modifiedSentinelPrefix) {
		modified, err = parseISO(post.Modified)
		if err != nil {
			return domain.Article{}, nil, fmt.Errorf("%w: post %d modified %q", domain.ErrMalformedPayload, post.ID, post.Modified)
		}
	}

	terms := post.AllTerms()

	var category *CategoryRef
	for _, term := range terms {
		if term.Taxonomy == wordpress.TaxonomyCategory {
			category = &CategoryRef{Slug: term.Slug, Name: term.Name}
			break
		}
	}

	var tags []string
	for _, term := range terms {
		if term.Taxonomy == wordpress.TaxonomyPostTag {
			tags = append(tags, term.Name)
		}
	}

	var image *string
	if post.Embedded != nil && len(post.Embedded.FeaturedMedia) > 0 {
		if url := post.Embedded.FeaturedMedia[0].SourceURL; url != "" {
			image = &url
		}
	}

	article := domain.Article{
		ID:              id,
		Title:           truncate(post.Title.Rendered, maxTitleBytes),
		Image:           image,
		OriginArticleID: post.ID,
		Tags:            tags,
		SourceURL:       post.Link,
		Date:            date,
		Modified:        modified,
		SourceID:        sourceID,
	}

	return article, category, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

// isoLayouts covers WP's zone-less site-local timestamps plus fully
// qualified ones.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

func parseISO(value string) (time.Time, error) {
	for _, layout := range isoLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", value)
}
