// Package intent defines the structured form of a content request.
//
// The Intent type is produced by the interpretation capability from
// free text and treated as immutable from then on: planning, fan-out,
// evaluation, and ranking all read it, none of them write it. The
// Fingerprint method supplies the cache key for memoized
// interpretation results.
package intent
