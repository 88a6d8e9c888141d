package texture

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/reactor/log"
)

// Loader resolves a texture file at a given intensity scale.
type Loader interface {
	// LoadScaled returns the texture at path with every channel multiplied by scale/255.
	//
	// Parameters:
	//   - path: the image file path
	//   - scale: the intensity multiplier
	//
	// Returns:
	//   - Texture: the decoded texture
	//   - error: an error if the file cannot be decoded
	LoadScaled(path string, scale float32) (Texture, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(path string, scale float32) (Texture, error)

// LoadScaled calls f.
func (f LoaderFunc) LoadScaled(path string, scale float32) (Texture, error) {
	return f(path, scale)
}

// FileLoader loads straight from disk with no caching.
var FileLoader Loader = LoaderFunc(LoadScaled)

// Request names one texture to preload.
type Request struct {
	Path  string  `toml:"path" yaml:"path"`
	Scale float32 `toml:"scale" yaml:"scale"`
}

// CachedLoader is a Loader that memoizes decoded textures by (path, scale) and can decode many files in parallel.
type CachedLoader interface {
	Loader

	// Preload decodes every request concurrently on the loader's worker pool and caches the results.
	// Requests already cached are skipped.
	//
	// Parameters:
	//   - requests: the textures to decode
	//
	// Returns:
	//   - map[Request]error: the failed requests with their errors, empty when all succeeded
	Preload(requests []Request) map[Request]error

	// Cached reports whether the request is in the cache.
	Cached(req Request) bool

	// Len returns the number of cached textures.
	Len() int

	// Purge drops every cached texture.
	Purge()
}

type cachedLoader struct {
	mu      sync.RWMutex
	cache   map[Request]Texture
	source  Loader
	workers int
	queue   int
	pool    worker.DynamicWorkerPool
	logger  log.Logger
}

var _ CachedLoader = &cachedLoader{}

// NewCachedLoader creates a CachedLoader. By default it decodes from disk on runtime.NumCPU()-1 workers.
//
// Parameters:
//   - options: functional options for configuring the loader
//
// Returns:
//   - CachedLoader: the new loader
func NewCachedLoader(options ...LoaderBuilderOption) CachedLoader {
	l := &cachedLoader{
		cache:   make(map[Request]Texture),
		source:  FileLoader,
		workers: max(runtime.NumCPU()-1, 1),
		queue:   256,
		logger:  log.New("texture"),
	}

	for _, option := range options {
		option(l)
	}

	l.pool = worker.NewDynamicWorkerPool(l.workers, l.queue, 1*time.Second)
	return l
}

func (l *cachedLoader) LoadScaled(path string, scale float32) (Texture, error) {
	req := Request{Path: path, Scale: scale}

	l.mu.RLock()
	tex, ok := l.cache[req]
	l.mu.RUnlock()
	if ok {
		return tex, nil
	}

	tex, err := l.source.LoadScaled(path, scale)
	if err != nil {
		return Texture{}, err
	}

	l.mu.Lock()
	l.cache[req] = tex
	l.mu.Unlock()
	return tex, nil
}

func (l *cachedLoader) Preload(requests []Request) map[Request]error {
	var (
		wg      sync.WaitGroup
		errMu   sync.Mutex
		failed  = make(map[Request]error)
		pending = make(map[Request]bool, len(requests))
	)

	for _, req := range requests {
		if pending[req] || l.Cached(req) {
			continue
		}
		pending[req] = true
	}

	taskID := 0
	for req := range pending {
		wg.Add(1)
		r := req
		id := taskID
		taskID++
		l.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				if _, err := l.LoadScaled(r.Path, r.Scale); err != nil {
					errMu.Lock()
					failed[r] = err
					errMu.Unlock()
					return nil, err
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	if len(failed) > 0 {
		l.logger.Warningf("preload: %d of %d textures failed", len(failed), len(pending))
	} else if len(pending) > 0 {
		l.logger.Debugf("preload: decoded %d textures", len(pending))
	}
	return failed
}

func (l *cachedLoader) Cached(req Request) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.cache[req]
	return ok
}

func (l *cachedLoader) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.cache)
}

func (l *cachedLoader) Purge() {
	l.mu.Lock()
	l.cache = make(map[Request]Texture)
	l.mu.Unlock()
}
