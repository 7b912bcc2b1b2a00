// Package ann defines the narrow capability the registry requires from an
// approximate-nearest-neighbor library: accumulate vectors, compile them into
// a searchable structure, search it, and persist it as two streams (index
// structure and elements). Implementations in this module are the layered
// graph (ann/graph), the cover tree (ann/cover) and an exact scan
// (ann/bruteforce).
package ann
