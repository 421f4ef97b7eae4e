// Package workers implements the worker pool for asynchronous executions.
//
// The worker pool manages a fixed number of goroutines that:
//   - Pull submitted tasks from a bounded queue
//   - Run each task through the orchestration manager
//   - Publish the terminal result event on the client's results channel
//
// The health monitor tracks worker status and logs metrics.
package workers
