package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/roach88/beantag/internal/bean"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// sequentialIDs returns an id generator yielding prefix-001, prefix-002, ...
func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%03d", prefix, n)
	}
}

// storeMovie stores a movie bean with the given title.
func storeMovie(t *testing.T, s *Store, title string) *bean.Bean {
	t.Helper()
	b := bean.New("movie").Set("title", bean.String(title))
	if err := s.Store(context.Background(), b); err != nil {
		t.Fatalf("Store(movie %q) failed: %v", title, err)
	}
	return b
}

// storeTag stores a tag bean with the given title.
func storeTag(t *testing.T, s *Store, title string) *bean.Bean {
	t.Helper()
	b := bean.New("tag").Set("title", bean.String(title))
	if err := s.Store(context.Background(), b); err != nil {
		t.Fatalf("Store(tag %q) failed: %v", title, err)
	}
	return b
}

// titles extracts the title field of each bean.
func titles(beans []*bean.Bean) []string {
	out := make([]string, len(beans))
	for i, b := range beans {
		out[i] = b.String("title")
	}
	return out
}
