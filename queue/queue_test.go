package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := New[string]()
	_, ok := q.Dequeue()
	assert.False(t, ok)

	q.Enqueue("a")
	q.Enqueue("b")
	assert.Equal(t, 2, q.Len())

	v, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "a", v)
	v, ok = q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "b", v)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_ReadySignalsAfterEnqueue(t *testing.T) {
	q := New[int]()
	select {
	case <-q.Ready():
		t.Fatal("ready before enqueue")
	default:
	}

	q.Enqueue(1)
	q.Enqueue(2)
	select {
	case <-q.Ready():
	case <-time.After(time.Second):
		t.Fatal("no ready signal")
	}
	assert.Equal(t, []int{1, 2}, q.Drain())
	assert.Equal(t, 0, q.Len())
}

func TestQueue_ConcurrentProducers(t *testing.T) {
	q := New[int]()
	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.Enqueue(i)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 400, q.Len())
}
