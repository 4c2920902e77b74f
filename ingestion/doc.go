// Package ingestion turns a corpus file into an embedded index.
//
// Pipeline splits a loaded document into passages and embeds them in
// batches on a worker pool, producing a validated core.Index. Cache sits in
// front of a Pipeline and builds each (corpus path, model) index once, on
// first use, handing out reference-counted Handles to every caller.
package ingestion
