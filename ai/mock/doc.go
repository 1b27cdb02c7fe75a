// Package mock provides test doubles for the ai capability interfaces.
// The embedder produces deterministic hash-derived vectors so retrieval
// tests are reproducible without a network; the completer returns
// scripted responses and captures the prompts it was given.
package mock
