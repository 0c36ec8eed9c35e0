// Package chflow holds channel helpers that give up when a context ends,
// so a stopped indexer never blocks on a channel nobody drains.
package chflow

import "context"

// Receive returns the next value of ch. ok is false when ctx ended first or
// ch was closed.
func Receive[T any](ctx context.Context, ch <-chan T) (v T, ok bool) {
	select {
	case <-ctx.Done():
		return v, false
	case v, ok = <-ch:
		return v, ok
	}
}

// Send delivers v on ch unless ctx ends first.
func Send[T any](ctx context.Context, ch chan<- T, v T) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- v:
		return true
	}
}

// TrySend delivers v only if ch can take it right away. On a channel with a
// buffer of one it coalesces signals: a pending one absorbs the next.
func TrySend[T any](ch chan<- T, v T) bool {
	select {
	case ch <- v:
		return true
	default:
		return false
	}
}
