package concurrency

const (
	// DefaultMax default max in-flight goroutines
	DefaultMax = 64
)

// GoLimit bounded goroutine admission
type GoLimit struct {
	ch chan struct{}
}

// NewGoLimit new go limit
func NewGoLimit(max int) *GoLimit {
	if max <= 0 {
		max = DefaultMax
	}
	return &GoLimit{
		ch: make(chan struct{}, max),
	}
}

// Add acquire a slot, blocking while max are in flight
func (g *GoLimit) Add() {
	g.ch <- struct{}{}
}

// Done release a slot
func (g *GoLimit) Done() {
	<-g.ch
}
