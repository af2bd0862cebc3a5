// Package storage persists the imported media catalog.
package storage

import (
	"context"

	"github.com/hyperjump/susume/internal/models"
)

// Storage defines catalog persistence operations.
type Storage interface {
	UpsertItem(ctx context.Context, item *models.MediaItem) error
	GetItem(ctx context.Context, id string) (*models.MediaItem, error)
	ListItems(ctx context.Context, offset, limit int) ([]*models.MediaItem, error)
	// AllItems returns the full catalog in insertion order; this is the
	// snapshot the engine builds its vector store from.
	AllItems(ctx context.Context) ([]*models.MediaItem, error)
	DeleteItem(ctx context.Context, id string) error
	CountItems(ctx context.Context) (int64, error)
	Close() error
}
