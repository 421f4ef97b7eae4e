// Package storage provides cache and history persistence implementations.
//
// Implementations:
//   - redis: Redis with JSON serialization and TTL
//   - memory: In-memory for testing
package storage
