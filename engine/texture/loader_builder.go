package texture

import "github.com/Carmen-Shannon/reactor/log"

// LoaderBuilderOption is a functional option used to configure a CachedLoader during construction.
type LoaderBuilderOption func(*cachedLoader)

// WithWorkers sets the maximum number of concurrent decode workers used by Preload.
//
// Parameters:
//   - n: the worker count, values below 1 are raised to 1
//
// Returns:
//   - LoaderBuilderOption: a function that sets the worker count
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *cachedLoader) {
		l.workers = max(n, 1)
	}
}

// WithQueueSize sets the task queue capacity of the decode pool.
//
// Parameters:
//   - n: the queue capacity
//
// Returns:
//   - LoaderBuilderOption: a function that sets the queue capacity
func WithQueueSize(n int) LoaderBuilderOption {
	return func(l *cachedLoader) {
		l.queue = max(n, 1)
	}
}

// WithSource sets the Loader that cache misses are delegated to.
//
// Parameters:
//   - source: the underlying loader
//
// Returns:
//   - LoaderBuilderOption: a function that sets the underlying loader
func WithSource(source Loader) LoaderBuilderOption {
	return func(l *cachedLoader) {
		if source != nil {
			l.source = source
		}
	}
}

// WithLogger sets the logger used for preload reports.
func WithLogger(logger log.Logger) LoaderBuilderOption {
	return func(l *cachedLoader) {
		l.logger = logger
	}
}
