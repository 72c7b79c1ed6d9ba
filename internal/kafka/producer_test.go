package kafka

import (
	"context"
	"testing"
	"time"
)

// Cancelling the start context is the only shutdown path; WaitClosed
// must come back once the loop has drained and closed the writer.
func TestProducerShutdown(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	p := NewProducer([]string{"localhost:0"}, "test.topic", 8)
	p.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		p.WaitClosed()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("producer did not shut down after context cancel")
	}
}
