package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed fingerprints.
// The version suffix leaves room for future algorithm migration.
const (
	DomainCacheKey = "sqlcore/cache-key/v1"
	DomainModel    = "sqlcore/model/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CacheKey fingerprints a caller-supplied structural key. Two objects with
// the same content produce the same key regardless of map iteration order.
func CacheKey(key IRObject) (string, error) {
	canonical, err := MarshalCanonical(key)
	if err != nil {
		return "", fmt.Errorf("CacheKey: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCacheKey, canonical), nil
}

// MustCacheKey is like CacheKey but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustCacheKey(key IRObject) string {
	k, err := CacheKey(key)
	if err != nil {
		panic(err)
	}
	return k
}

// ModelHash fingerprints the persistent shape of a set of types. Compiled
// statements depend only on this shape, so the hash identifies when cached
// requests must be discarded.
func ModelHash(types []*TypeInfo) (string, error) {
	arr := make(IRArray, 0, len(types))
	for _, t := range types {
		arr = append(arr, t.describe())
	}
	canonical, err := MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("ModelHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainModel, canonical), nil
}
