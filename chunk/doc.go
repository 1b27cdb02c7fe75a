// Package chunk implements the deterministic sliding-window splitter
// that turns page-structured document text into the overlapping windows
// used as the unit of embedding and retrieval.
package chunk
