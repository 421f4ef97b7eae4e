// Package orchestrator coordinates the full request lifecycle: analysis,
// planning, validation, scheduled execution, synthesis, and history
// persistence. The Manager is the single entry point used by the HTTP
// handlers and the worker pool.
package orchestrator
