package graph

import (
	"github.com/Carmen-Shannon/reactor/engine/texture"
	"github.com/Carmen-Shannon/reactor/log"
)

// GraphBuilderOption is a functional option applied to a Graph during construction via NewGraph.
type GraphBuilderOption func(*Graph)

// WithTextureLoader sets the loader the scene compiler resolves texture nodes with.
//
// Parameters:
//   - loader: the texture loader
//
// Returns:
//   - GraphBuilderOption: a function that applies the loader to a graph
func WithTextureLoader(loader texture.Loader) GraphBuilderOption {
	return func(g *Graph) {
		if loader != nil {
			g.loader = loader
		}
	}
}

// WithLogger replaces the graph's logger.
func WithLogger(logger log.Logger) GraphBuilderOption {
	return func(g *Graph) {
		g.logger = logger
	}
}
