package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bilgisen/folio/internal/cache"
	"github.com/bilgisen/folio/internal/config"
	"github.com/bilgisen/folio/internal/content"
	"github.com/bilgisen/folio/internal/logger"
	"github.com/bilgisen/folio/internal/models"
	"github.com/bilgisen/folio/internal/storage"
)

// Content bundles the content pipeline built from configuration
type Content struct {
	Vocabulary  *models.Vocabulary
	Store       storage.Store
	NowStore    storage.Store
	RenderCache cache.Client
	Resolver    *content.Resolver
	Updates     *content.Service
	Now         *content.NowService
}

// Build wires stores, caches and services for cfg
func Build(ctx context.Context, cfg *config.Config) (*Content, error) {
	log := logger.Get()

	vocab := models.DefaultVocabulary()
	if cfg.TagsFile != "" {
		loaded, err := models.LoadVocabulary(cfg.TagsFile)
		if err != nil {
			return nil, err
		}
		vocab = loaded
	}
	log.Info().
		Str("version", vocab.Version).
		Str("tags", vocab.String()).
		Msg("Tag vocabulary loaded")

	store, nowStore, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var renderCache cache.Client
	if cfg.RedisURL != "" {
		renderCache, err = cache.NewRedisClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
		}
		log.Info().Msg("Using Redis render cache")
	} else {
		renderCache = cache.NewMemoryClient()
		log.Info().Msg("Using in-memory render cache")
	}

	policy, err := content.ParsePolicy(cfg.ContentPolicy)
	if err != nil {
		_ = renderCache.Close()
		return nil, err
	}

	renderer := content.NewRenderer(content.WithRenderCache(renderCache, cfg.RenderCacheTTL))
	resolver := content.NewResolver(store, content.NewValidator(vocab), renderer)

	return &Content{
		Vocabulary:  vocab,
		Store:       store,
		NowStore:    nowStore,
		RenderCache: renderCache,
		Resolver:    resolver,
		Updates: content.NewService(store, resolver, content.ServiceConfig{
			CacheTTL:       cfg.CacheTTL,
			Policy:         policy,
			MaxConcurrency: cfg.MaxConcurrency,
		}),
		Now: content.NewNowService(nowStore, filepath.Base(cfg.NowFile), cfg.CacheTTL),
	}, nil
}

// Close releases the render cache connection
func (c *Content) Close() error {
	return c.RenderCache.Close()
}

// WatchDirs returns the local directories behind the update and now stores.
// It is empty when content is not served from the filesystem.
func (c *Content) WatchDirs() []string {
	var dirs []string
	for _, store := range []storage.Store{c.Store, c.NowStore} {
		fs, ok := store.(*storage.Storage)
		if !ok {
			continue
		}
		dir := filepath.Clean(fs.Path())
		if len(dirs) == 0 || dirs[0] != dir {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func openStores(ctx context.Context, cfg *config.Config) (storage.Store, storage.Store, error) {
	switch cfg.ContentSource {
	case config.ContentSourceR2:
		r2, err := storage.NewR2Storage(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		// now.md lives at the bucket root
		return r2, r2.WithPrefix(""), nil

	default:
		fs, err := storage.NewStorage(cfg.ContentDir)
		if err != nil {
			return nil, nil, err
		}
		nowFS, err := storage.NewStorage(filepath.Dir(cfg.NowFile))
		if err != nil {
			return nil, nil, err
		}
		return fs, nowFS, nil
	}
}
