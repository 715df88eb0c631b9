package content

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bilgisen/folio/internal/cache"
	"github.com/bilgisen/folio/internal/logger"
	"github.com/bilgisen/folio/internal/models"
	"github.com/bilgisen/folio/internal/storage"
	"github.com/rs/zerolog"
)

// Policy decides what a listing does with an entry that fails to resolve
type Policy int

const (
	// PolicyStrict fails the whole listing when any entry is invalid.
	PolicyStrict Policy = iota
	// PolicyBestEffort logs entries with integrity errors and leaves them out.
	// Read failures still fail the listing.
	PolicyBestEffort
)

// ParsePolicy maps a config value to a Policy
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "strict":
		return PolicyStrict, nil
	case "best-effort":
		return PolicyBestEffort, nil
	}
	return PolicyStrict, fmt.Errorf("unknown content policy %q", s)
}

func (p Policy) String() string {
	if p == PolicyBestEffort {
		return "best-effort"
	}
	return "strict"
}

// ServiceConfig tunes the collection service
type ServiceConfig struct {
	CacheTTL       time.Duration
	Policy         Policy
	MaxConcurrency int
}

// Service lists, looks up and navigates update entries.
//
// The listing is ordered newest first by date, with ties broken by slug in
// descending order, and is cached for CacheTTL. Under PolicyStrict a single
// invalid file fails List and the previous cached listing stays in place.
type Service struct {
	store       storage.Store
	resolver    *Resolver
	listing     *cache.Snapshot[[]*models.UpdateEntry]
	policy      Policy
	concurrency int
	log         zerolog.Logger
}

func NewService(store storage.Store, resolver *Resolver, cfg ServiceConfig) *Service {
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}

	s := &Service{
		store:       store,
		resolver:    resolver,
		policy:      cfg.Policy,
		concurrency: cfg.MaxConcurrency,
		log:         logger.Component("updates"),
	}
	s.listing = cache.NewSnapshot(cfg.CacheTTL, s.load)
	return s
}

// List returns every entry, newest first. The returned slice is shared; do not modify it.
func (s *Service) List(ctx context.Context) ([]*models.UpdateEntry, error) {
	return s.listing.Get(ctx)
}

// Invalidate drops the cached listing
func (s *Service) Invalidate() {
	s.listing.Invalidate()
	s.log.Info().Msg("Update listing invalidated")
}

// Get resolves a single entry by slug. It returns nil, nil when no such file exists.
func (s *Service) Get(ctx context.Context, slug string) (*models.UpdateEntry, error) {
	filename := slug + markdownExt
	if IsCompanion(filename) || storage.ValidateName(filename) != nil {
		return nil, nil
	}

	entry, err := s.resolver.ResolveFile(ctx, filename)
	if errors.Is(err, storage.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Adjacent returns the newer (Prev) and older (Next) neighbours of slug in the listing
func (s *Service) Adjacent(ctx context.Context, slug string) (models.Adjacency, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return models.Adjacency{}, err
	}
	return AdjacentIn(entries, slug), nil
}

// AdjacentIn finds the neighbours of slug in an already sorted listing
func AdjacentIn(entries []*models.UpdateEntry, slug string) models.Adjacency {
	index := -1
	for i, e := range entries {
		if e.Slug == slug {
			index = i
			break
		}
	}
	if index == -1 {
		return models.Adjacency{}
	}

	var adj models.Adjacency
	if index > 0 {
		adj.Prev = refOf(entries[index-1])
	}
	if index < len(entries)-1 {
		adj.Next = refOf(entries[index+1])
	}
	return adj
}

func refOf(e *models.UpdateEntry) *models.EntryRef {
	return &models.EntryRef{Slug: e.Slug, Title: e.Title()}
}

// FilterByTag keeps entries carrying tag, preserving order. A nil tag returns entries as is.
func FilterByTag(entries []*models.UpdateEntry, tag *models.UpdateTag) []*models.UpdateEntry {
	if tag == nil {
		return entries
	}

	out := make([]*models.UpdateEntry, 0, len(entries))
	for _, e := range entries {
		if e.Tag == *tag {
			out = append(out, e)
		}
	}
	return out
}

// SortEntries orders entries newest first: date descending, then slug descending
func SortEntries(entries []*models.UpdateEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date > entries[j].Date
		}
		return entries[i].Slug > entries[j].Slug
	})
}

type resolveResult struct {
	entry *models.UpdateEntry
	err   error
}

// load resolves every primary document concurrently and sorts the result
func (s *Service) load(ctx context.Context) ([]*models.UpdateEntry, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing content: %w", err)
	}

	var files []string
	for _, name := range names {
		if !IsCompanion(name) {
			files = append(files, name)
		}
	}

	results := make([]resolveResult, len(files))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, s.concurrency)

	for i, name := range files {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			entry, err := s.resolver.ResolveFile(ctx, name)
			results[i] = resolveResult{entry: entry, err: err}
		}(i, name)
	}
	wg.Wait()

	entries := make([]*models.UpdateEntry, 0, len(files))
	var errs []error
	for i, res := range results {
		if res.err != nil {
			var ie *IntegrityError
			if s.policy == PolicyBestEffort && errors.As(res.err, &ie) {
				s.log.Warn().
					Err(res.err).
					Str("file", files[i]).
					Msg("Skipping invalid update entry")
				continue
			}
			errs = append(errs, res.err)
			continue
		}
		entries = append(entries, res.entry)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("resolving updates: %d of %d entries failed: %w", len(errs), len(files), errors.Join(errs...))
	}

	SortEntries(entries)

	s.log.Info().
		Int("entries", len(entries)).
		Str("policy", s.policy.String()).
		Dur("duration", time.Since(start)).
		Msg("Resolved update listing")

	return entries, nil
}
