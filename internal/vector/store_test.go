package vector

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/hyperjump/susume/internal/embedding"
	"github.com/hyperjump/susume/internal/models"
)

func testItems(n int) []*models.MediaItem {
	items := make([]*models.MediaItem, n)
	for i := range items {
		items[i] = &models.MediaItem{
			ID:          fmt.Sprintf("movie:%d", i),
			Title:       fmt.Sprintf("Film %d", i),
			Category:    models.CategoryMovie,
			Description: fmt.Sprintf("description number %d", i),
		}
	}
	return items
}

func TestBuild_indexStability(t *testing.T) {
	items := testItems(5)
	store, err := Build(context.Background(), items, embedding.NewMockEmbedder(8), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if store.Size() != 5 {
		t.Fatalf("Size=%d", store.Size())
	}
	for i, item := range items {
		id, vec := store.At(i)
		if id != item.ID {
			t.Errorf("At(%d) id=%s, want %s", i, id, item.ID)
		}
		got, err := store.Get(item.ID)
		if err != nil {
			t.Fatal(err)
		}
		if &got[0] != &vec[0] {
			t.Errorf("Get and At disagree for %s", item.ID)
		}
	}
}

func TestBuild_deterministic(t *testing.T) {
	items := testItems(3)
	emb := embedding.NewMockEmbedder(8)
	a, err := Build(context.Background(), items, emb, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(context.Background(), items, emb, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range items {
		_, va := a.At(i)
		_, vb := b.At(i)
		for j := range va {
			if va[j] != vb[j] {
				t.Fatalf("vectors differ at item %d component %d", i, j)
			}
		}
	}
}

type failingEmbedder struct {
	*embedding.MockEmbedder
	failOn string
}

func (f *failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == f.failOn {
		return nil, errors.New("model exploded")
	}
	return f.MockEmbedder.Embed(ctx, text)
}

func TestBuild_allOrNothing(t *testing.T) {
	items := testItems(3)
	emb := &failingEmbedder{MockEmbedder: embedding.NewMockEmbedder(8), failOn: items[1].Description}
	_, err := Build(context.Background(), items, emb, nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var encErr *EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected EncodingError, got %v", err)
	}
	if encErr.ItemID != items[1].ID {
		t.Errorf("EncodingError.ItemID=%s", encErr.ItemID)
	}
}

func TestBuild_duplicateID(t *testing.T) {
	items := testItems(2)
	items[1].ID = items[0].ID
	_, err := Build(context.Background(), items, embedding.NewMockEmbedder(4), nil, nil)
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestStore_GetNotFound(t *testing.T) {
	store, err := Build(context.Background(), testItems(2), embedding.NewMockEmbedder(4), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = store.Get("missing")
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_SaveLoad(t *testing.T) {
	items := testItems(4)
	store, err := Build(context.Background(), items, embedding.NewMockEmbedder(6), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "vectors.bin")
	if err := store.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path, 6)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Size() != store.Size() || loaded.Dimensions() != store.Dimensions() {
		t.Fatalf("loaded size=%d dims=%d", loaded.Size(), loaded.Dimensions())
	}
	for i := range items {
		idA, vecA := store.At(i)
		idB, vecB := loaded.At(i)
		if idA != idB {
			t.Errorf("id order changed: %s vs %s", idA, idB)
		}
		for j := range vecA {
			if vecA[j] != vecB[j] {
				t.Fatalf("vector %d differs after round trip", i)
			}
		}
	}
}

func TestLoad_dimensionMismatch(t *testing.T) {
	store, err := Build(context.Background(), testItems(2), embedding.NewMockEmbedder(6), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "vectors.bin")
	if err := store.Save(path); err != nil {
		t.Fatal(err)
	}
	_, err = Load(path, 8)
	var mismatch *DimensionMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected DimensionMismatchError, got %v", err)
	}
}

func TestBuild_progressCallback(t *testing.T) {
	var calls []int
	opts := &BuildOptions{Progress: func(done, total int) {
		if total != 3 {
			t.Errorf("total=%d", total)
		}
		calls = append(calls, done)
	}}
	_, err := Build(context.Background(), testItems(3), embedding.NewMockEmbedder(4), nil, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(calls) != 3 || calls[2] != 3 {
		t.Errorf("progress calls=%v", calls)
	}
}
