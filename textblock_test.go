package sdftext

import (
	"context"
	"testing"
	"time"
)

func TestTextBlockCanceledWhileWaiting(t *testing.T) {
	b := NewTextBlock(NewEngine(DefaultConfig()))

	// Occupy the block as an in-flight request would.
	b.sem <- struct{}{}
	defer func() { <-b.sem }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := b.Process(ctx, Params{Text: "hello"})
	if err != context.DeadlineExceeded {
		t.Errorf("Process() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestTextBlockReleasesAfterError(t *testing.T) {
	b := NewTextBlock(NewEngine(DefaultConfig()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The canceled context fails fast inside the engine; the block must
	// be reusable afterwards.
	if _, err := b.Process(ctx, Params{Text: "x"}); err == nil {
		t.Fatal("Process() with canceled context succeeded, want error")
	}

	select {
	case b.sem <- struct{}{}:
		<-b.sem
	default:
		t.Error("block still held after failed request")
	}
}
