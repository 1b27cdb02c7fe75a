// Package query answers questions over the indexed corpus. A Handler
// embeds the incoming question, retrieves the top-k nearest records from
// the vector index, and asks the completion model to answer grounded on
// the retrieved text. Retrieval misses degrade gracefully: an empty
// context block is sent rather than an error returned.
package query
