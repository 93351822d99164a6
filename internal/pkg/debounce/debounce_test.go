package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDoCoalescesBurst(t *testing.T) {
	d := New(100 * time.Millisecond)
	defer d.Stop()

	var calls int32
	for i := 0; i < 3; i++ {
		d.Do(func() { atomic.AddInt32(&calls, 1) })
		time.Sleep(30 * time.Millisecond)
	}

	// The burst is still inside the window, nothing fired yet.
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoRunsLastFunction(t *testing.T) {
	d := New(50 * time.Millisecond)
	defer d.Stop()

	var got atomic.Value
	d.Do(func() { got.Store("first") })
	d.Do(func() { got.Store("second") })

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, "second", got.Load())
}

func TestFlushRunsImmediately(t *testing.T) {
	d := New(time.Hour)
	defer d.Stop()

	var calls int32
	d.Do(func() { atomic.AddInt32(&calls, 1) })
	d.Flush()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// Nothing left pending after a flush.
	d.Flush()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestStopCancelsPending(t *testing.T) {
	d := New(50 * time.Millisecond)

	var calls int32
	d.Do(func() { atomic.AddInt32(&calls, 1) })
	d.Stop()

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestRescheduleGetsItsOwnWindow(t *testing.T) {
	d := New(40 * time.Millisecond)
	defer d.Stop()

	var first, second int32
	d.Do(func() { atomic.AddInt32(&first, 1) })
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&first))

	// A call scheduled right after the previous timer fired must wait
	// out a full delay of its own, not ride the expired timer.
	d.Do(func() { atomic.AddInt32(&second, 1) })
	assert.Equal(t, int32(0), atomic.LoadInt32(&second))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&second))
}
