package cache

import (
	"golang.org/x/sync/singleflight"
)

// Flight serializes concurrent work on the same fingerprint. When several
// callers claim the same hash at once, only the first runs fn and every
// caller receives its result. shared is true for all of them, including the
// one that ran fn.
type Flight struct {
	group singleflight.Group
}

// Do runs fn once per concurrently claimed hash.
func (f *Flight) Do(hash string, fn func() (any, error)) (result any, shared bool, err error) {
	v, err, shared := f.group.Do(hash, fn)
	return v, shared, err
}
