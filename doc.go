// Package wikicorpus turns wikipedia xml dumps into a cleaned text corpus.
//
// The dumps are available from the wikimedia group here:
//    http://dumps.wikimedia.org/
//
// An Extractor streams main-namespace, non-redirect pages out of a dump,
// a wikitext parser builds a structural tree per page, and a cleaner
// strips references, tables, navigation templates and file links before
// flattening each page to plain prose.  The Pipeline wires those stages
// across a worker pool and keeps per-outcome counters.
//
// See the example programs under tools/ for how the output is consumed.
package wikicorpus
