package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ValidationKey generates a cache key for a claim-level validation result.
// Keyed by normalized claim text so re-validating the same wording hits the
// cache regardless of which claim record asked.
func ValidationKey(claimText string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(claimText)), " ")
	hash := sha256.Sum256([]byte(normalized))
	return "citewell:validation:v1:" + hex.EncodeToString(hash[:])
}

// EmbeddingKey generates a cache key for a text embedding.
func EmbeddingKey(model, text string) string {
	hash := sha256.Sum256([]byte(model + "\x00" + text))
	return "citewell:embedding:v1:" + hex.EncodeToString(hash[:])
}
