package stratum

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codechain-miner/goworker/internal/submit"
)

func TestOutboundQueueFIFO(t *testing.T) {
	q := newOutboundQueue()
	q.push(submit.StratumRequest{ID: 1})
	q.push(submit.StratumRequest{ID: 2})

	first, ok := q.pop()
	require.True(t, ok)
	require.Equal(t, uint64(1), first.ID)

	second, ok := q.pop()
	require.True(t, ok)
	require.Equal(t, uint64(2), second.ID)

	_, ok = q.pop()
	require.False(t, ok)
}

func TestOutboundQueueWaitWakesOnPush(t *testing.T) {
	q := newOutboundQueue()
	ctx := context.Background()

	done := make(chan bool, 1)
	go func() {
		done <- q.wait(ctx)
	}()

	time.Sleep(10 * time.Millisecond)
	q.push(submit.StratumRequest{ID: 9})

	select {
	case woke := <-done:
		require.True(t, woke)
	case <-time.After(time.Second):
		t.Fatal("expected wait to return after push")
	}
}

func TestOutboundQueueWaitRespectsCancellation(t *testing.T) {
	q := newOutboundQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.False(t, q.wait(ctx))
}
