// Package cover provides a builder backed by a cover tree
// (internal/cover/tree). Build inserts the elements pushed since the previous
// build; search is best-first and bounded by the search width. The index
// stream records only the tree parameters and the built count, since
// insertion is deterministic and the tree is rebuilt from the elements on load.
package cover
