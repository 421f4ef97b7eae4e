// Package llm provides inference backend adapters.
//
// The factory selects a concrete client by provider name:
//   - ollama: local Ollama server over its REST API
//   - anthropic: Anthropic Messages API via the official SDK
package llm
