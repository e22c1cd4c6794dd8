// Package cache holds the byte-level response cache behind the market
// query endpoints. Entries are marshaled JSON bodies keyed by the query
// window, so a hit skips both the store read and the encode.
package cache

import "time"

// BytesCache stores raw response bodies with a TTL.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
