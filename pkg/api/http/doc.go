// Package http provides the HTTP REST API implementation.
//
// The HTTP server exposes endpoints for:
//   - Synchronous and asynchronous request execution
//   - Execution history
//   - WebSocket progress streaming
//   - Health checks
//   - Prometheus metrics
package http
