package config

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/arc-go/engine/cache"
)

// preloader implements the Preloader interface.
type preloader struct {
	cache      cache.Cache
	logger     *zap.Logger
	workers    int
	pool       worker.DynamicWorkerPool
	onProgress func(done, total int, url string)
}

// Preloader warms the asset cache with a document's referenced URLs before the
// experience starts, so scene switches hit local storage instead of the
// network.
type Preloader interface {
	// Preload resolves every URL through the cache concurrently and returns
	// once all have loaded or failed. Failures are logged and skipped; the
	// remaining URLs still warm.
	//
	// Parameters:
	//   - ctx: cancellation/timeout control for fetching
	//   - urls: the asset URLs to warm
	//
	// Returns:
	//   - int: how many URLs resolved successfully
	Preload(ctx context.Context, urls []string) int

	// PreloadDocument scans the document for asset URLs and preloads them.
	//
	// Parameters:
	//   - ctx: cancellation/timeout control for fetching
	//   - doc: the document to warm assets for
	//
	// Returns:
	//   - int: how many URLs resolved successfully
	PreloadDocument(ctx context.Context, doc *Document) int
}

var _ Preloader = &preloader{}

// NewPreloader creates a Preloader with the provided options applied.
//
// Parameters:
//   - options: functional options for preloader configuration (cache, logger, workers, progress)
//
// Returns:
//   - Preloader: the newly created preloader
func NewPreloader(options ...PreloaderOption) Preloader {
	p := &preloader{
		logger:  zap.NewNop(),
		workers: max(2, runtime.NumCPU()),
	}
	for _, option := range options {
		option(p)
	}

	// Queue size of 256 accommodates typical document asset counts with headroom.
	p.pool = worker.NewDynamicWorkerPool(p.workers, 256, 1*time.Second)
	return p
}

func (p *preloader) Preload(ctx context.Context, urls []string) int {
	if p.cache == nil || len(urls) == 0 {
		return 0
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		loaded int
		done   int
	)
	for i, url := range urls {
		wg.Add(1)
		urlCap := url
		p.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()

				_, err := p.cache.Resolve(ctx, urlCap)
				mu.Lock()
				done++
				if err == nil {
					loaded++
				}
				progress, total := done, len(urls)
				mu.Unlock()

				if err != nil {
					p.logger.Warn("asset preload failed, skipping",
						zap.String("url", urlCap),
						zap.Error(err),
					)
				}
				if p.onProgress != nil {
					p.onProgress(progress, total, urlCap)
				}
				return nil, err
			},
		})
	}
	wg.Wait()

	p.logger.Info("asset preload complete",
		zap.Int("loaded", loaded),
		zap.Int("total", len(urls)),
	)
	return loaded
}

func (p *preloader) PreloadDocument(ctx context.Context, doc *Document) int {
	return p.Preload(ctx, doc.AssetURLs())
}
