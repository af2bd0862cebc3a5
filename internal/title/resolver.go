// Package title resolves free-text titles to catalog items using an
// in-memory Bleve index with fuzzy fallback.
package title

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/hyperjump/susume/internal/models"
)

// Resolver maps user-typed titles to catalog items. It is immutable after
// construction and rebuilt together with the catalog snapshot, so it is
// safe for concurrent readers.
type Resolver struct {
	index bleve.Index
	items []*models.MediaItem
	byID  map[string]*models.MediaItem
}

type titleDoc struct {
	Title string `json:"title"`
}

// NewResolver builds an in-memory title index over items.
func NewResolver(items []*models.MediaItem) (*Resolver, error) {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	titleFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so partial
	// titles match the words users actually typed.
	titleFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("create title index: %w", err)
	}

	byID := make(map[string]*models.MediaItem, len(items))
	batch := index.NewBatch()
	for _, item := range items {
		byID[item.ID] = item
		if err := batch.Index(item.ID, titleDoc{Title: item.Title}); err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("index title for %s: %w", item.ID, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("commit title index: %w", err)
	}
	return &Resolver{index: index, items: items, byID: byID}, nil
}

// Resolve returns the catalog item best matching query. Case-insensitive
// substring match wins first (catalog order); otherwise a Bleve match
// query, then a fuzzy query for typo tolerance. Returns models.ErrNotFound
// when nothing matches.
func (r *Resolver) Resolve(query string) (*models.MediaItem, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, fmt.Errorf("empty title: %w", models.ErrNotFound)
	}
	for _, item := range r.items {
		if strings.Contains(strings.ToLower(item.Title), q) {
			return item, nil
		}
	}

	if item := r.search(bleve.NewMatchQuery(query)); item != nil {
		return item, nil
	}
	fuzzy := bleve.NewFuzzyQuery(q)
	fuzzy.SetFuzziness(2)
	if item := r.search(fuzzy); item != nil {
		return item, nil
	}
	return nil, fmt.Errorf("title %q: %w", query, models.ErrNotFound)
}

func (r *Resolver) search(q blevequery.Query) *models.MediaItem {
	req := bleve.NewSearchRequest(q)
	req.Size = 1
	res, err := r.index.Search(req)
	if err != nil || len(res.Hits) == 0 {
		return nil
	}
	return r.byID[res.Hits[0].ID]
}

// Close releases the index.
func (r *Resolver) Close() error {
	return r.index.Close()
}
