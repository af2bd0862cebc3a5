package vector

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/hyperjump/susume/internal/embedding"
	"github.com/hyperjump/susume/internal/models"
)

// TextFunc extracts the text to embed for a catalog item.
type TextFunc func(*models.MediaItem) string

// BuildOptions configures a store build.
type BuildOptions struct {
	// Progress, when set, is called after each item is encoded.
	Progress func(done, total int)
}

// Store holds one embedding per catalog item, aligned with catalog order.
// A Store is immutable after Build/Load; rebuilds produce a new Store that
// the caller swaps in, so concurrent readers need no locking.
type Store struct {
	dimensions int
	ids        []string
	vectors    [][]float32
	byID       map[string]int
}

// Build encodes every item's text and returns a new store. The build is
// all-or-nothing: an embedder failure on any item aborts with an
// EncodingError, and a vector of unexpected length aborts with a
// DimensionMismatchError. text may be nil, in which case the raw
// description is embedded.
func Build(ctx context.Context, items []*models.MediaItem, embedder embedding.Embedder, text TextFunc, opts *BuildOptions) (*Store, error) {
	if text == nil {
		text = func(m *models.MediaItem) string { return m.Description }
	}
	s := &Store{
		dimensions: embedder.Dimensions(),
		ids:        make([]string, 0, len(items)),
		vectors:    make([][]float32, 0, len(items)),
		byID:       make(map[string]int, len(items)),
	}
	for i, item := range items {
		if _, dup := s.byID[item.ID]; dup {
			return nil, fmt.Errorf("duplicate item id %s in catalog", item.ID)
		}
		vec, err := embedder.Embed(ctx, text(item))
		if err != nil {
			return nil, &EncodingError{ItemID: item.ID, Err: err}
		}
		if len(vec) != s.dimensions {
			return nil, &DimensionMismatchError{Want: s.dimensions, Got: len(vec)}
		}
		owned := make([]float32, s.dimensions)
		copy(owned, vec)
		s.byID[item.ID] = len(s.ids)
		s.ids = append(s.ids, item.ID)
		s.vectors = append(s.vectors, owned)
		if opts != nil && opts.Progress != nil {
			opts.Progress(i+1, len(items))
		}
	}
	return s, nil
}

// Get returns the vector for id. Returns models.ErrNotFound when id is
// absent. The returned slice is owned by the store and must not be mutated.
func (s *Store) Get(id string) ([]float32, error) {
	i, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("vector for %q: %w", id, models.ErrNotFound)
	}
	return s.vectors[i], nil
}

// At returns the id and vector at catalog index i. Index positions are
// stable for the lifetime of the store.
func (s *Store) At(i int) (string, []float32) {
	return s.ids[i], s.vectors[i]
}

// Contains reports whether the store holds a vector for id.
func (s *Store) Contains(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Size returns the number of vectors in the store.
func (s *Store) Size() int { return len(s.ids) }

// Dimensions returns the embedding dimensionality shared by all vectors.
func (s *Store) Dimensions() int { return s.dimensions }

// Save persists the store to path. Directory is created if needed.
// Format: dimensions (4), n (4), then per vector: idLen (4), id bytes,
// vector (dimensions*4 bytes), little-endian throughout.
func (s *Store) Save(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, uint32(s.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(s.ids))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for i, id := range s.ids {
		idBytes := []byte(id)
		if err := binary.Write(f, binary.LittleEndian, uint32(len(idBytes))); err != nil {
			return fmt.Errorf("write id len: %w", err)
		}
		if _, err := f.Write(idBytes); err != nil {
			return fmt.Errorf("write id: %w", err)
		}
		if _, err := f.Write(float32SliceToBytes(s.vectors[i])); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// Load reads a store persisted by Save. When dimensions > 0 the file must
// match it; a mismatch returns a DimensionMismatchError so that stale
// indexes force a rebuild instead of producing skewed similarities.
func Load(path string, dimensions int) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()
	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("read dimensions: %w", err)
	}
	if dimensions > 0 && int(dim) != dimensions {
		return nil, &DimensionMismatchError{Want: dimensions, Got: int(dim)}
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("read count: %w", err)
	}
	s := &Store{
		dimensions: int(dim),
		ids:        make([]string, 0, n),
		vectors:    make([][]float32, 0, n),
		byID:       make(map[string]int, n),
	}
	buf := make([]byte, s.dimensions*4)
	for i := uint32(0); i < n; i++ {
		var idLen uint32
		if err := binary.Read(f, binary.LittleEndian, &idLen); err != nil {
			return nil, fmt.Errorf("read id len: %w", err)
		}
		idBytes := make([]byte, idLen)
		if _, err := io.ReadFull(f, idBytes); err != nil {
			return nil, fmt.Errorf("read id: %w", err)
		}
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, fmt.Errorf("read vector: %w", err)
		}
		id := string(idBytes)
		if _, dup := s.byID[id]; dup {
			return nil, fmt.Errorf("duplicate item id %s in index file", id)
		}
		s.byID[id] = len(s.ids)
		s.ids = append(s.ids, id)
		s.vectors = append(s.vectors, bytesToFloat32Slice(buf))
	}
	return s, nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
