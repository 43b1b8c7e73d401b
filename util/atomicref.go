package util

import (
	"sync/atomic"
)

// AtomicRef is a generic holder of an object reference, to be read lock-free and replaced copy-on-write
type AtomicRef[T any] struct {
	pointer atomic.Pointer[T]
}

// Get retrieves the reference atomically. It may return nil.
func (ref *AtomicRef[T]) Get() *T {
	return ref.pointer.Load()
}

// Set stores the given reference atomically. The reference may be nil.
func (ref *AtomicRef[T]) Set(reference *T) {
	ref.pointer.Store(reference)
}

// Update replaces the reference with the result of "update", retrying if another update happened in between
//
// "update" must not modify the current object in-place and may be called more than once. Returns the new reference.
func (ref *AtomicRef[T]) Update(update func(current *T) *T) *T {
	for {
		current := ref.pointer.Load()
		next := update(current)
		if ref.pointer.CompareAndSwap(current, next) {
			return next
		}
	}
}
