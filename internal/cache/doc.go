// Package cache provides a byte-bounded LRU cache for immutable blobs.
package cache
