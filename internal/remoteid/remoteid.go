// Package remoteid hands out identifiers for remotely controlled entities.
package remoteid

// Allocator is a monotonically increasing counter shared by every trial of a run.
// It is not safe for concurrent use.
type Allocator struct {
	next int
}

// New returns an allocator whose first Next call yields start.
func New(start int) *Allocator {
	return &Allocator{next: start}
}

// Next returns the current identifier and advances the counter.
func (a *Allocator) Next() int {
	id := a.next
	a.next++
	return id
}

// Peek returns the identifier the next call to Next will yield.
func (a *Allocator) Peek() int {
	return a.next
}
