package chflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReceive(t *testing.T) {
	t.Run("buffered value", func(t *testing.T) {
		ch := make(chan string, 1)
		ch <- "ethereum"

		v, ok := Receive(t.Context(), ch)
		assert.True(t, ok)
		assert.Equal(t, "ethereum", v)
	})

	t.Run("closed channel", func(t *testing.T) {
		ch := make(chan int)
		close(ch)

		v, ok := Receive(t.Context(), ch)
		assert.False(t, ok)
		assert.Zero(t, v)
	})

	t.Run("context ends first", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
		defer cancel()

		_, ok := Receive(ctx, make(chan int))
		assert.False(t, ok)
	})

	t.Run("value sent later", func(t *testing.T) {
		ch := make(chan int)
		go func() { ch <- 7 }()

		v, ok := Receive(t.Context(), ch)
		assert.True(t, ok)
		assert.Equal(t, 7, v)
	})
}

func TestSend(t *testing.T) {
	t.Run("delivers", func(t *testing.T) {
		ch := make(chan int, 1)

		assert.True(t, Send(t.Context(), ch, 42))
		assert.Equal(t, 42, <-ch)
	})

	t.Run("context ends while blocked", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		assert.False(t, Send(ctx, make(chan int), 1))
	})
}

func TestTrySend(t *testing.T) {
	ch := make(chan struct{}, 1)

	assert.True(t, TrySend(ch, struct{}{}))
	assert.False(t, TrySend(ch, struct{}{}), "a pending signal absorbs the next one")

	<-ch
	assert.True(t, TrySend(ch, struct{}{}))
}
