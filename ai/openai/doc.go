// Package openai implements the ai capability interfaces against any
// OpenAI-compatible HTTP API (OpenAI, Ollama, LocalAI, vLLM) via
// langchaingo. One Provider carries one embedding model and one
// completion model; construct it once per process and inject it into
// the worker pool and the query handler.
package openai
