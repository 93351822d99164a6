package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pearldata/pearlctl/internal/app/models"
)

func TestCanMarkAttendance(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		event models.Event
		want  bool
	}{
		{
			name: "before start",
			event: models.Event{
				Status:    models.EventScheduled,
				StartTime: now.Add(10 * time.Minute),
				EndTime:   now.Add(70 * time.Minute),
			},
			want: false,
		},
		{
			name: "exactly at start",
			event: models.Event{
				Status:    models.EventScheduled,
				StartTime: now,
				EndTime:   now.Add(time.Hour),
			},
			want: true,
		},
		{
			name: "mid event",
			event: models.Event{
				Status:    models.EventOngoing,
				StartTime: now.Add(-30 * time.Minute),
				EndTime:   now.Add(30 * time.Minute),
			},
			want: true,
		},
		{
			name: "exactly at end",
			event: models.Event{
				Status:    models.EventOngoing,
				StartTime: now.Add(-time.Hour),
				EndTime:   now,
			},
			want: true,
		},
		{
			name: "after end",
			event: models.Event{
				Status:    models.EventOngoing,
				StartTime: now.Add(-2 * time.Hour),
				EndTime:   now.Add(-time.Hour),
			},
			want: false,
		},
		{
			name: "completed status wins over times",
			event: models.Event{
				Status:    models.EventCompleted,
				StartTime: now.Add(-30 * time.Minute),
				EndTime:   now.Add(30 * time.Minute),
			},
			want: false,
		},
		{
			name: "cancelled status wins over times",
			event: models.Event{
				Status:    models.EventCancelled,
				StartTime: now.Add(-30 * time.Minute),
				EndTime:   now.Add(30 * time.Minute),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanMarkAttendance(tt.event, now))
		})
	}
}

func TestIsCompleted(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	running := models.Event{
		Status:    models.EventOngoing,
		StartTime: now.Add(-time.Hour),
		EndTime:   now.Add(time.Hour),
	}
	assert.False(t, IsCompleted(running, now))
	assert.True(t, IsCompleted(running, now.Add(2*time.Hour)))

	cancelled := running
	cancelled.Status = models.EventCancelled
	assert.True(t, IsCompleted(cancelled, now))
}

func TestStartsInMessage(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	event := func(startIn time.Duration) models.Event {
		return models.Event{
			Status:    models.EventScheduled,
			StartTime: now.Add(startIn),
			EndTime:   now.Add(startIn + time.Hour),
		}
	}

	assert.Equal(t, "", StartsInMessage(event(-time.Minute), now))
	assert.Equal(t, "starts in 1 minute", StartsInMessage(event(time.Minute), now))
	assert.Equal(t, "starts in 1 minute", StartsInMessage(event(30*time.Second), now))
	assert.Equal(t, "starts in 2 minutes", StartsInMessage(event(90*time.Second), now))
	assert.Equal(t, "starts in 45 minutes", StartsInMessage(event(45*time.Minute), now))
}
