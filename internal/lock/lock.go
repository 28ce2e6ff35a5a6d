// Package lock serializes mutations per ticket id. Two concurrent follow-ups
// against the same ticket must never interleave a note append with a status
// transition.
package lock

import "context"

// KeyedLocker grants exclusive scopes per key. The returned release function
// must always be called, and must succeed even when ctx is already cancelled.
type KeyedLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}
