package wordpress

import (
	"fmt"

	"github.com/andriyandriyan/berandamuslim-scraper/internal/domain"
)

// Taxonomies carried inside embedded wp:term groups.
const (
	TaxonomyCategory = "category"
	TaxonomyPostTag  = "post_tag"
)

// Post is the projected shape requested via _fields plus the embedded
// media and term expansions.
type Post struct {
	ID       int64     `json:"id"`
	Date     string    `json:"date"`
	Modified string    `json:"modified"`
	Link     string    `json:"link"`
	Title    Rendered  `json:"title"`
	Embedded *Embedded `json:"_embedded"`
}

// Rendered wraps WP's rendered-string objects.
type Rendered struct {
	Rendered string `json:"rendered"`
}

// Embedded groups the related entities expanded by _embed.
type Embedded struct {
	FeaturedMedia []FeaturedMedia `json:"wp:featuredmedia"`
	Terms         [][]Term        `json:"wp:term"`
}

// FeaturedMedia is a post's attached image.
type FeaturedMedia struct {
	ID        int64  `json:"id"`
	SourceURL string `json:"source_url"`
}

// Term is one taxonomy term (category or tag).
type Term struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Taxonomy string `json:"taxonomy"`
}

// AllTerms flattens the per-taxonomy term groups in embed order.
func (p Post) AllTerms() []Term {
	if p.Embedded == nil {
		return nil
	}

	var terms []Term
	for _, group := range p.Embedded.Terms {
		terms = append(terms, group...)
	}
	return terms
}

// validate rejects posts missing the fields canonicalization relies on,
// so a remote schema change fails at the adapter boundary.
func (p Post) validate() error {
	switch {
	case p.ID == 0:
		return fmt.Errorf("%w: post without id", domain.ErrMalformedPayload)
	case p.Title.Rendered == "":
		return fmt.Errorf("%w: post %d without title", domain.ErrMalformedPayload, p.ID)
	case p.Date == "":
		return fmt.Errorf("%w: post %d without date", domain.ErrMalformedPayload, p.ID)
	case p.Modified == "":
		return fmt.Errorf("%w: post %d without modified date", domain.ErrMalformedPayload, p.ID)
	case p.Link == "":
		return fmt.Errorf("%w: post %d without link", domain.ErrMalformedPayload, p.ID)
	}
	return nil
}
