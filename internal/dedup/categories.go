// Package dedup resolves pass-local derived-entity references so each
// natural key maps to exactly one stored entity, no matter how many
// concurrently canonicalized records discovered it.
package dedup

import (
	"context"
	"fmt"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/andriyandriyan/berandamuslim-scraper/internal/domain"
)

const categoryIDLength = 12

// CategoryStore is the slice of the transactional store the coordinator
// needs: one bulk lookup plus per-key creation.
type CategoryStore interface {
	CategoriesBySlugs(ctx context.Context, slugs []string) ([]domain.ArticleCategory, error)
	CreateCategory(ctx context.Context, category domain.ArticleCategory) error
}

// Categories accumulates category sightings for one pass and resolves
// them in a single read-then-create-missing step. Add is safe to call
// from concurrent canonicalization; Resolve must only run after every
// Add of the pass finished.
type Categories struct {
	mu    sync.Mutex
	order []string
	names map[string]string
}

// NewCategories returns an empty pass-scoped coordinator.
func NewCategories() *Categories {
	return &Categories{names: map[string]string{}}
}

// Add records one sighting of a category by natural key. The first
// sighting's name wins; later ones only confirm the key.
func (c *Categories) Add(slug, name string) {
	if slug == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.names[slug]; ok {
		return
	}
	c.names[slug] = name
	c.order = append(c.order, slug)
}

// Resolve looks every observed slug up in one query, creates exactly
// one entity per missing slug, and returns the slug → id mapping all
// referencing records of the pass resolve through. Creations for
// distinct new slugs run concurrently.
func (c *Categories) Resolve(ctx context.Context, store CategoryStore) (map[string]string, error) {
	c.mu.Lock()
	slugs := make([]string, len(c.order))
	copy(slugs, c.order)
	names := make(map[string]string, len(c.names))
	for slug, name := range c.names {
		names[slug] = name
	}
	c.mu.Unlock()

	resolved := make(map[string]string, len(slugs))
	if len(slugs) == 0 {
		return resolved, nil
	}

	existing, err := store.CategoriesBySlugs(ctx, slugs)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	for _, category := range existing {
		resolved[category.Slug] = category.ID
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	for _, slug := range slugs {
		if _, ok := resolved[slug]; ok {
			continue
		}

		id, err := gonanoid.New(categoryIDLength)
		if err != nil {
			return nil, fmt.Errorf("generate category id: %w", err)
		}

		category := domain.ArticleCategory{ID: id, Slug: slug, Name: names[slug]}
		group.Go(func() error {
			if err := store.CreateCategory(groupCtx, category); err != nil {
				return fmt.Errorf("create category %s: %w", category.Slug, err)
			}

			mu.Lock()
			resolved[category.Slug] = category.ID
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return resolved, nil
}
