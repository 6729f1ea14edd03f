package utils

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestCache_BasicOperations(t *testing.T) {
	cache := NewCache[string, int]()

	cache.Set("key1", 42)
	value, exists := cache.Get("key1")
	if !exists {
		t.Error("expected key1 to exist")
	}
	if value != 42 {
		t.Errorf("expected value 42, got %d", value)
	}

	if _, exists = cache.Get("nonexistent"); exists {
		t.Error("expected nonexistent key to not exist")
	}

	cache.Delete("key1")
	if _, exists = cache.Get("key1"); exists {
		t.Error("expected key1 to be deleted")
	}
}

func TestCache_Overwrite(t *testing.T) {
	cache := NewCache[string, string]()

	cache.Set("key1", "value1")
	cache.Set("key1", "value2")
	if value, _ := cache.Get("key1"); value != "value2" {
		t.Errorf("expected value2, got %q", value)
	}
}

func TestCache_FileValidation(t *testing.T) {
	cache := NewCache[string, string]()
	path := filepath.Join(t.TempDir(), "go.mod")

	if err := os.WriteFile(path, []byte("module example.com/a\n"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if err := cache.SetWithFileInfo(path, "example.com/a", path); err != nil {
		t.Fatalf("failed to cache: %v", err)
	}

	if value, ok := cache.GetWithFileValidation(path, path); !ok || value != "example.com/a" {
		t.Errorf("expected cached value, got %q (%v)", value, ok)
	}

	later := time.Now().Add(time.Hour)
	if err := os.WriteFile(path, []byte("module example.com/changed\n"), 0o644); err != nil {
		t.Fatalf("failed to rewrite file: %v", err)
	}
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("failed to touch file: %v", err)
	}

	if _, ok := cache.GetWithFileValidation(path, path); ok {
		t.Error("expected stale entry to be invalidated")
	}
	if _, ok := cache.Get(path); ok {
		t.Error("expected stale entry to be removed")
	}
}

func TestCache_SetWithFileInfoMissingFile(t *testing.T) {
	cache := NewCache[string, int]()
	if err := cache.SetWithFileInfo("k", 1, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCache_Concurrent(t *testing.T) {
	cache := NewCache[int, int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			cache.Set(n, n*n)
			cache.Get(n)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		if value, ok := cache.Get(i); !ok || value != i*i {
			t.Errorf("expected %d for key %d, got %d (%v)", i*i, i, value, ok)
		}
	}
}
