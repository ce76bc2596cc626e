package launcher

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcasterFanOut(t *testing.T) {
	b := NewBroadcaster[int](8)

	a, err := b.Subscribe()
	require.NoError(t, err)
	c, err := b.Subscribe()
	require.NoError(t, err)
	assert.Equal(t, 2, b.SubscriberCount())

	for i := 1; i <= 3; i++ {
		assert.True(t, b.Publish(i))
	}

	for _, ch := range []<-chan int{a, c} {
		assert.Equal(t, 1, <-ch)
		assert.Equal(t, 2, <-ch)
		assert.Equal(t, 3, <-ch)
	}
}

func TestBroadcasterDropsOldest(t *testing.T) {
	b := NewBroadcaster[int](2)
	ch, err := b.Subscribe()
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		b.Publish(i)
	}

	assert.Equal(t, 4, <-ch)
	assert.Equal(t, 5, <-ch)
	assert.Len(t, ch, 0)
}

func TestBroadcasterSlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroadcaster[int](1)
	_, err := b.Subscribe()
	require.NoError(t, err)
	fast, err := b.Subscribe()
	require.NoError(t, err)

	var got []int
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for v := range fast {
			got = append(got, v)
		}
	}()

	for i := 0; i < 1000; i++ {
		b.Publish(i)
	}
	b.Close()
	wg.Wait()

	require.NotEmpty(t, got)
	assert.Equal(t, 999, got[len(got)-1])
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1], got[i])
	}
}

func TestBroadcasterUnsubscribe(t *testing.T) {
	b := NewBroadcaster[string](4)
	ch, err := b.Subscribe()
	require.NoError(t, err)

	b.Unsubscribe(ch)
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, b.SubscriberCount())

	// unknown and repeated unsubscribes are ignored
	b.Unsubscribe(ch)
	b.Unsubscribe(make(chan string))
}

func TestBroadcasterClose(t *testing.T) {
	b := NewBroadcaster[string](4)
	ch, err := b.Subscribe()
	require.NoError(t, err)

	b.Close()
	b.Close()

	assert.True(t, b.Closed())
	_, open := <-ch
	assert.False(t, open)
	assert.False(t, b.Publish("late"))

	_, err = b.Subscribe()
	assert.ErrorIs(t, err, ErrBroadcasterClosed)
}

func TestBroadcasterOnPublish(t *testing.T) {
	b := NewBroadcaster[int](0)
	var seen []int
	b.onPublish = func(v int) { seen = append(seen, v) }

	b.Publish(7)
	b.Publish(8)
	assert.Equal(t, []int{7, 8}, seen)
	assert.Equal(t, DefaultSubscriberBuffer, b.buffer)
}
