// Package vector defines the value types shared by the registry and the ANN
// builders:
//   - Vector: an immutable float32 point
//   - Elements: the ordered, append-only collection a builder accumulates,
//     with its binary stream codec
//   - Metric: distance functions backed by github.com/viant/vec
//   - Embedding BLOB encoding used by the SQL surface and catalog store
package vector
