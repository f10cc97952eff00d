package animation

import (
	"context"
	"image"
	"sync"
)

// A Sink receives rendered frames in order.
type Sink interface {
	WriteFrame(ctx context.Context, index int, img image.Image) error
	Close() error
}

// SinkFunc adapts a function to a Sink with a no-op Close.
type SinkFunc func(ctx context.Context, index int, img image.Image) error

// WriteFrame calls f.
func (f SinkFunc) WriteFrame(ctx context.Context, index int, img image.Image) error {
	return f(ctx, index, img)
}

// Close does nothing.
func (f SinkFunc) Close() error {
	return nil
}

// Collect keeps every frame in memory.
type Collect struct {
	mu      sync.Mutex
	frames  []image.Image
	indices []int
	closed  bool
}

// WriteFrame stores img.
func (c *Collect) WriteFrame(ctx context.Context, index int, img image.Image) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, img)
	c.indices = append(c.indices, index)
	return nil
}

// Close marks the collection closed.
func (c *Collect) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Frames returns the collected frames.
func (c *Collect) Frames() []image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]image.Image(nil), c.frames...)
}

// Indices returns the frame index of every collected frame.
func (c *Collect) Indices() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.indices...)
}

// Closed reports whether Close was called.
func (c *Collect) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
