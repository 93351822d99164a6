package stores

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pearldata/pearlctl/internal/app/models"
	"github.com/pearldata/pearlctl/internal/pkg/apperrors"
)

func newFacultyStore(t *testing.T) *FacultyStore {
	f := newFixture(t, facultyEmail, facultyPass)
	return NewFacultyStore(f.client, f.session, zerolog.Nop())
}

func eventByTitle(t *testing.T, s *FacultyStore, title string) models.Event {
	t.Helper()
	for _, e := range s.Events() {
		if e.Title == title {
			return e
		}
	}
	t.Fatalf("event %q not in cache", title)
	return models.Event{}
}

func TestFetchFacultyEvents(t *testing.T) {
	s := newFacultyStore(t)

	s.FetchEvents(context.Background())
	assert.Empty(t, s.Err())
	assert.Len(t, s.Events(), 3)
}

func TestCreateEvent(t *testing.T) {
	s := newFacultyStore(t)
	s.FetchEvents(context.Background())

	start := time.Now().Add(48 * time.Hour)
	err := s.CreateEvent(context.Background(), models.Event{
		Title:     "Guest Lecture",
		EventType: models.EventLecture,
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Location:  "Hall B",
	})
	require.NoError(t, err)

	events := s.Events()
	require.Len(t, events, 4)
	assert.Equal(t, "Guest Lecture", events[0].Title)
	assert.Equal(t, models.EventScheduled, events[0].Status)
	assert.NotZero(t, events[0].ID)
}

func TestCreateEventValidation(t *testing.T) {
	s := newFacultyStore(t)
	start := time.Now().Add(time.Hour)

	tests := []struct {
		name  string
		event models.Event
	}{
		{"title too short", models.Event{Title: "ab", Location: "Hall", StartTime: start, EndTime: start.Add(time.Hour)}},
		{"missing location", models.Event{Title: "Valid Title", StartTime: start, EndTime: start.Add(time.Hour)}},
		{"end before start", models.Event{Title: "Valid Title", Location: "Hall", StartTime: start, EndTime: start.Add(-time.Minute)}},
		{"end equals start", models.Event{Title: "Valid Title", Location: "Hall", StartTime: start, EndTime: start}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.CreateEvent(context.Background(), tt.event)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
		})
	}
	assert.Empty(t, s.Events())
}

func TestUpdateAndDeleteEvent(t *testing.T) {
	s := newFacultyStore(t)
	s.FetchEvents(context.Background())
	target := eventByTitle(t, s, "Networks Seminar")

	updated := target
	updated.Title = "Advanced Networks Seminar"
	require.NoError(t, s.UpdateEvent(context.Background(), target.ID, updated))
	assert.Equal(t, "Advanced Networks Seminar", eventByTitle(t, s, "Advanced Networks Seminar").Title)
	assert.Len(t, s.Events(), 3)

	require.NoError(t, s.DeleteEvent(context.Background(), target.ID))
	assert.Len(t, s.Events(), 2)
}

func TestFetchStudents(t *testing.T) {
	s := newFacultyStore(t)

	s.FetchStudents(context.Background())
	students := s.Students()
	require.Len(t, students, 1)
	assert.Equal(t, "Rahul Verma", students[0].Name)
	assert.Equal(t, "STU2024001", students[0].StudentID)
}

func TestMarkAttendanceOngoingEvent(t *testing.T) {
	s := newFacultyStore(t)
	s.FetchEvents(context.Background())
	s.FetchStudents(context.Background())
	event := eventByTitle(t, s, "Data Structures Lecture")
	student := s.Students()[0]

	result, err := s.MarkAttendance(context.Background(), event.ID, []models.Attendance{
		{StudentID: student.ID, Status: models.AttendancePresent},
	}, false)
	require.NoError(t, err)

	assert.Equal(t, "Attendance saved for 1 students", result.Message)
	assert.Empty(t, result.StatusTransition)
	require.Len(t, result.Records, 1)
	assert.Equal(t, models.AttendancePresent, result.Records[0].Status)
	assert.NotZero(t, result.Records[0].ID)

	// Saved records land in the attendance cache.
	assert.Len(t, s.Attendance(), 1)
}

func TestMarkAttendanceCompletesEvent(t *testing.T) {
	s := newFacultyStore(t)
	s.FetchEvents(context.Background())
	s.FetchStudents(context.Background())
	event := eventByTitle(t, s, "Data Structures Lecture")
	student := s.Students()[0]

	result, err := s.MarkAttendance(context.Background(), event.ID, []models.Attendance{
		{StudentID: student.ID, Status: models.AttendanceLate},
	}, true)
	require.NoError(t, err)

	assert.Equal(t, models.EventCompleted, result.EventStatus)
	assert.Contains(t, result.StatusTransition, "COMPLETED")

	// The server-reported status is mirrored into the event cache.
	assert.Equal(t, models.EventCompleted, eventByTitle(t, s, "Data Structures Lecture").Status)
}

func TestMarkAttendanceRejectedBeforeStart(t *testing.T) {
	s := newFacultyStore(t)
	s.FetchEvents(context.Background())
	event := eventByTitle(t, s, "Networks Seminar") // starts tomorrow

	result, err := s.MarkAttendance(context.Background(), event.ID, []models.Attendance{
		{StudentID: 3, Status: models.AttendancePresent},
	}, false)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, apperrors.ErrEventNotStarted))
	assert.Contains(t, err.Error(), "starts in")
}

func TestMarkAttendanceRejectedWhenCompleted(t *testing.T) {
	s := newFacultyStore(t)
	s.FetchEvents(context.Background())
	event := eventByTitle(t, s, "Midterm Exam")

	result, err := s.MarkAttendance(context.Background(), event.ID, []models.Attendance{
		{StudentID: 3, Status: models.AttendancePresent},
	}, false)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, apperrors.ErrEventCompleted))
	assert.Equal(t, "Attendance cannot be marked for a completed event", err.Error())
}

func TestMarkAttendanceBoundaryAtStart(t *testing.T) {
	s := newFacultyStore(t)
	s.FetchEvents(context.Background())
	event := eventByTitle(t, s, "Data Structures Lecture")

	// Freeze the clock exactly on the start instant; marking is allowed.
	s.now = func() time.Time { return event.StartTime }

	_, err := s.MarkAttendance(context.Background(), event.ID, []models.Attendance{
		{StudentID: 3, Status: models.AttendancePresent},
	}, false)
	require.NoError(t, err)
}

func TestFetchAttendanceByEvent(t *testing.T) {
	s := newFacultyStore(t)
	s.FetchEvents(context.Background())
	exam := eventByTitle(t, s, "Midterm Exam")

	s.FetchAttendanceByEvent(context.Background(), exam.ID)
	records := s.Attendance()
	require.Len(t, records, 1)
	assert.Equal(t, exam.ID, records[0].EventID)
	assert.Equal(t, models.AttendancePresent, records[0].Status)
}

func TestFetchFacultyStats(t *testing.T) {
	s := newFacultyStore(t)

	stats := s.FetchStats(context.Background())
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.TotalStudents)
	assert.Equal(t, 3, stats.TotalEvents)
	assert.Equal(t, 1, stats.UpcomingEvents)
	assert.NotEmpty(t, stats.AttendanceRate)
}

func TestFetchAnalyticsSummary(t *testing.T) {
	s := newFacultyStore(t)

	summary := s.FetchAnalyticsSummary(context.Background())
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.TotalStudents)
	assert.Equal(t, 1, summary.StudentsWithAttendance)
	assert.Equal(t, 1, summary.AttendanceStatusDistribution["PRESENT"])
}

func TestFetchStudentAnalytics(t *testing.T) {
	s := newFacultyStore(t)

	rows := s.FetchStudentAnalytics(context.Background(), AnalyticsQuery{})
	require.Len(t, rows, 1)
	assert.Equal(t, "Rahul Verma", rows[0].StudentName)
	assert.Equal(t, 1, rows[0].PresentCount)
	assert.InDelta(t, 100.0, rows[0].AttendancePercentage, 0.01)

	// Search narrows the result set without touching the roster cache.
	assert.Empty(t, s.FetchStudentAnalytics(context.Background(), AnalyticsQuery{SearchTerm: "nobody"}))
}

func TestFetchStudentAnalyticsTogglesLoading(t *testing.T) {
	s := newFacultyStore(t)
	s.setErr("stale error")

	rows := s.FetchStudentAnalytics(context.Background(), AnalyticsQuery{})
	require.Len(t, rows, 1)
	assert.False(t, s.Loading())
	assert.Empty(t, s.Err())
}

func TestFetchStudentAttendanceDetails(t *testing.T) {
	s := newFacultyStore(t)

	details := s.FetchStudentAttendanceDetails(context.Background(), 3, AnalyticsQuery{})
	require.Len(t, details, 1)
	assert.Equal(t, "Midterm Exam", details[0].EventTitle)
	assert.Equal(t, "PRESENT", details[0].AttendanceStatus)
	assert.Equal(t, "PASSING", details[0].PerformanceStatus)
}
