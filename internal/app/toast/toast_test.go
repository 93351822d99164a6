package toast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowStacksInOrder(t *testing.T) {
	q := NewQueue(nil)
	defer q.Stop()

	q.ShowSuccess("saved")
	q.ShowError("failed")
	q.ShowInfo("note")

	active := q.Active()
	require.Len(t, active, 3)
	assert.Equal(t, Success, active[0].Kind)
	assert.Equal(t, Error, active[1].Kind)
	assert.Equal(t, Info, active[2].Kind)
	assert.Equal(t, "saved", active[0].Message)
	for _, item := range active {
		assert.NotEmpty(t, item.ID)
		assert.Equal(t, DefaultDuration, item.Duration)
	}
}

func TestAutoDismiss(t *testing.T) {
	q := NewQueue(nil)
	defer q.Stop()

	q.Show(Info, "short lived", 30*time.Millisecond)
	require.Len(t, q.Active(), 1)

	assert.Eventually(t, func() bool {
		return len(q.Active()) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestRemove(t *testing.T) {
	q := NewQueue(nil)
	defer q.Stop()

	id := q.ShowWarning("pending")
	q.Remove(id)
	assert.Empty(t, q.Active())

	// Removing again is a no-op.
	q.Remove(id)
	q.Remove("unknown")
}

func TestOnChangeReceivesSnapshots(t *testing.T) {
	var last []Toast
	q := NewQueue(func(active []Toast) { last = active })
	defer q.Stop()

	id := q.ShowSuccess("one")
	require.Len(t, last, 1)

	q.Remove(id)
	assert.Empty(t, last)
}

func TestStopRejectsFurtherToasts(t *testing.T) {
	q := NewQueue(nil)
	q.ShowInfo("about to stop")
	q.Stop()

	assert.Empty(t, q.Active())
	assert.Equal(t, "", q.ShowInfo("after stop"))
	assert.Empty(t, q.Active())
}
