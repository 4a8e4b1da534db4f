package sdftext

import "context"

// TextBlock binds an engine to one logical text entity and serializes
// its layout requests: a Process call arriving while another is in
// flight waits for it to finish, so the entity's consumers always
// observe results in request order. Distinct blocks run independently.
type TextBlock struct {
	engine *Engine
	sem    chan struct{}
}

// NewTextBlock creates a block backed by the given engine.
func NewTextBlock(engine *Engine) *TextBlock {
	return &TextBlock{
		engine: engine,
		sem:    make(chan struct{}, 1),
	}
}

// Process lays out text for this block. Overlapping calls on the same
// block execute one at a time, in arrival order; the context cancels
// both the wait and the layout itself.
func (b *TextBlock) Process(ctx context.Context, p Params) (*Result, error) {
	select {
	case b.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-b.sem }()

	return b.engine.Process(ctx, p)
}

// Measure computes metrics only, with the same serialization as Process.
func (b *TextBlock) Measure(ctx context.Context, p Params) (*Result, error) {
	select {
	case b.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-b.sem }()

	return b.engine.Measure(ctx, p)
}
