// Package bruteforce provides an exact builder that answers kNN queries by
// scanning every built vector. It is the reference the approximate builders
// are tested against.
package bruteforce
