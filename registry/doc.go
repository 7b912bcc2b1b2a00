// Package registry keeps named ANN builders for the lifetime of a process.
//
// Every operation addresses an index by name. Create and Load replace any
// existing index under the name atomically; the other operations report
// NotFound when the name is unknown. Failures are returned as *Error with a
// Kind, and panics raised by builders are recovered and reported as
// InternalFault so the registry stays usable.
package registry
