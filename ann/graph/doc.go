// Package graph provides the default builder: a layered navigable
// small-world graph (HNSW-style). Build links every element pushed since the
// previous build; Search descends greedily through the upper layers and runs
// a beam search of the requested width on the base layer.
//
// Node levels are derived from a hash of the element id and the configured
// seed, so building the same vectors always produces the same graph, and a
// graph restored from its index stream keeps growing exactly as the original
// would have.
package graph
