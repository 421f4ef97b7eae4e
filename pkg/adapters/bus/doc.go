// Package bus provides progress bus implementations.
//
// Implementations:
//   - redis: Redis Pub/Sub keyed by client channel (production)
//   - memory: In-memory for testing
package bus
