package content

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bilgisen/folio/internal/models"
	"github.com/bilgisen/folio/internal/storage"
)

// memStore is an in-memory storage.Store
type memStore struct {
	mu       sync.Mutex
	files    map[string]string
	reads    map[string]int
	failures map[string]error

	// beforeList runs at the start of every List, outside the lock
	beforeList func()
}

func newMemStore(files map[string]string) *memStore {
	if files == nil {
		files = make(map[string]string)
	}
	return &memStore{files: files, reads: make(map[string]int), failures: make(map[string]error)}
}

func (m *memStore) List(ctx context.Context) ([]string, error) {
	if m.beforeList != nil {
		m.beforeList()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var names []string
	for name := range m.files {
		if storage.IsMarkdown(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *memStore) Read(ctx context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reads[name]++
	if err := m.failures[name]; err != nil {
		return nil, err
	}
	body, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, storage.ErrNotExist)
	}
	return []byte(body), nil
}

func (m *memStore) put(name, body string) {
	m.mu.Lock()
	m.files[name] = body
	m.mu.Unlock()
}

func (m *memStore) fail(name string, err error) {
	m.mu.Lock()
	m.failures[name] = err
	m.mu.Unlock()
}

func doc(title, date, tag, summary, body string) string {
	return fmt.Sprintf("---\ntitle: %q\ndate: %q\ntag: %q\nsummary: %q\n---\n%s\n", title, date, tag, summary, body)
}

func companion(title, summary, body string) string {
	return fmt.Sprintf("---\ntitle: %q\nsummary: %q\n---\n%s\n", title, summary, body)
}

func newTestResolver(store storage.Store) *Resolver {
	return NewResolver(store, NewValidator(models.DefaultVocabulary()), NewRenderer())
}

func newTestService(store storage.Store, policy Policy) *Service {
	return NewService(store, newTestResolver(store), ServiceConfig{
		Policy:         policy,
		MaxConcurrency: 4,
	})
}
