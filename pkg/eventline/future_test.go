package eventline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFutureResolveOnce(t *testing.T) {
	f := newFuture()
	first := errors.New("first")

	f.resolve(first)
	f.resolve(errors.New("second"))

	<-f.Done()
	assert.Same(t, first, f.Err())
}

func TestFutureErrBeforeResolve(t *testing.T) {
	f := newFuture()
	assert.NoError(t, f.Err(), "unresolved future reads as no error")

	select {
	case <-f.Done():
		t.Fatal("future resolved without a call to resolve")
	default:
	}
}

func TestFutureWait(t *testing.T) {
	f := newFuture()
	boom := errors.New("boom")

	go func() {
		time.Sleep(10 * time.Millisecond)
		f.resolve(boom)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.Same(t, boom, f.Wait(ctx))
}

func TestFutureWaitHonorsContext(t *testing.T) {
	f := newFuture()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, f.Wait(ctx), context.DeadlineExceeded)
}

func TestCompletedFuture(t *testing.T) {
	boom := errors.New("boom")

	f := Completed(boom)
	<-f.Done()
	assert.Same(t, boom, f.Err())

	ok := Completed(nil)
	<-ok.Done()
	assert.NoError(t, ok.Err())
}
