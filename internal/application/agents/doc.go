// Package agents implements the specialized step executors.
//
// Each executor implements the uniform contract in ports.StepExecutor:
//   - document: extracts and analyzes text and images from the request context
//   - lookup: researches the query against the inference backend
//   - retrieval: augments the query with vector search over knowledge collections
//
// Executors report activity to the requesting client through a progress
// reporter and memoize expensive calls in the cache where it is safe to.
package agents
