package embedding

import "testing"

func TestCache_hitAndMiss(t *testing.T) {
	c := NewCache(4)
	c.Set("a", []float32{1, 2})

	got, ok := c.Get("a")
	if !ok || len(got) != 2 || got[0] != 1 {
		t.Errorf("Get(a) = %v, %v", got, ok)
	}
	if _, ok := c.Get("b"); ok {
		t.Error("unexpected hit for missing key")
	}
}

func TestCache_evictsOldest(t *testing.T) {
	c := NewCache(2)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	c.Set("c", []float32{3})

	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("entry b should survive")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d", c.Len())
	}
}

func TestCache_getRefreshesRecency(t *testing.T) {
	c := NewCache(2)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	c.Get("a")
	c.Set("c", []float32{3})

	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry was evicted")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry should have been evicted")
	}
}

func TestCache_setOverwrites(t *testing.T) {
	c := NewCache(2)
	c.Set("a", []float32{1})
	c.Set("a", []float32{9})

	got, _ := c.Get("a")
	if got[0] != 9 {
		t.Errorf("got %v after overwrite", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d", c.Len())
	}
}
