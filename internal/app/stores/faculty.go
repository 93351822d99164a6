package stores

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pearldata/pearlctl/internal/api"
	"github.com/pearldata/pearlctl/internal/app/models"
	"github.com/pearldata/pearlctl/internal/pkg/apperrors"
	"github.com/pearldata/pearlctl/internal/pkg/timewindow"
	"github.com/pearldata/pearlctl/internal/pkg/validation"
)

// FacultyStore owns the faculty slice: events, the student roster,
// per-event attendance and the analytics views.
type FacultyStore struct {
	mu            sync.Mutex
	client        *api.Client
	auth          Authenticator
	logger        zerolog.Logger
	events        collection[models.Event]
	students      []models.Student
	attendance    collection[models.Attendance]
	stats         *models.FacultyStats
	summary       *models.AnalyticsSummary
	eventsSeq     fetchToken
	studentsSeq   fetchToken
	attendanceSeq fetchToken
	loading       bool
	errMsg        string
	now           func() time.Time
}

// NewFacultyStore creates the store with its dependencies injected.
func NewFacultyStore(client *api.Client, auth Authenticator, logger zerolog.Logger) *FacultyStore {
	return &FacultyStore{
		client:     client,
		auth:       auth,
		logger:     logger,
		events:     newCollection(eventID),
		attendance: newCollection(attendanceID),
		now:        time.Now,
	}
}

// Events returns a copy of the cached event list.
func (s *FacultyStore) Events() []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events.snapshot()
}

// Students returns a copy of the cached roster.
func (s *FacultyStore) Students() []models.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Student, len(s.students))
	copy(out, s.students)
	return out
}

// Attendance returns a copy of the cached attendance records.
func (s *FacultyStore) Attendance() []models.Attendance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attendance.snapshot()
}

// Stats returns the cached dashboard stats, if fetched.
func (s *FacultyStore) Stats() *models.FacultyStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats == nil {
		return nil
	}
	stats := *s.stats
	return &stats
}

// Summary returns the cached analytics summary, if fetched.
func (s *FacultyStore) Summary() *models.AnalyticsSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary == nil {
		return nil
	}
	summary := *s.summary
	return &summary
}

// Loading reports whether a call is in flight.
func (s *FacultyStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the current error message, if any.
func (s *FacultyStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// ClearError resets the error message.
func (s *FacultyStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

func (s *FacultyStore) beginFetch(t *fetchToken) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.auth.IsAuthenticated() {
		s.errMsg = errNotAuthenticated
		return 0, false
	}
	s.loading = true
	s.errMsg = ""
	return t.next(), true
}

func (s *FacultyStore) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.auth.IsAuthenticated() {
		s.errMsg = errNotAuthenticated
		return apperrors.NewCustomError(apperrors.ErrNotAuthenticated, errNotAuthenticated)
	}
	s.loading = true
	s.errMsg = ""
	return nil
}

func (s *FacultyStore) fail(err error, fallback string) error {
	msg := api.ErrorMessage(err, fallback)
	s.mu.Lock()
	s.loading = false
	s.errMsg = msg
	s.mu.Unlock()
	return apperrors.NewCustomError(err, msg)
}

func (s *FacultyStore) setErr(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = msg
}

// FetchEvents replaces the event cache. Errors are recorded, not returned.
func (s *FacultyStore) FetchEvents(ctx context.Context) {
	seq, ok := s.beginFetch(&s.eventsSeq)
	if !ok {
		return
	}

	env, err := s.client.Get(ctx, "/faculty/events", nil)
	var events []models.Event
	if err == nil {
		err = env.List(&events)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.eventsSeq.stale(seq) {
		return
	}
	s.loading = false
	if err != nil {
		s.errMsg = api.ErrorMessage(err, "Failed to fetch events")
		return
	}
	s.events.replace(events)
}

func validateEvent(e models.Event) error {
	if !validation.EventTitle(e.Title) {
		return apperrors.NewValidationError(fmt.Sprintf("Title must be %d-%d characters",
			validation.EventTitleMinLength, validation.EventTitleMaxLength))
	}
	if !validation.Location(e.Location) {
		return apperrors.NewValidationError(fmt.Sprintf("Location is required, at most %d characters",
			validation.LocationMaxLength))
	}
	if !e.EndTime.After(e.StartTime) {
		return apperrors.NewValidationError("End time must be after start time")
	}
	return nil
}

// CreateEvent posts a new event and prepends the server's returned
// representation to the cache.
func (s *FacultyStore) CreateEvent(ctx context.Context, event models.Event) error {
	if err := validateEvent(event); err != nil {
		return err
	}
	if err := s.begin(); err != nil {
		return err
	}

	env, err := s.client.Post(ctx, "/faculty/events", event)
	if err != nil {
		return s.fail(err, "Failed to create event")
	}
	var created models.Event
	if err := env.Object(&created); err != nil {
		return s.fail(err, "Failed to create event")
	}

	s.mu.Lock()
	s.events.prepend(created)
	s.loading = false
	s.mu.Unlock()
	return nil
}

// UpdateEvent replaces the cached event with the server's returned
// representation.
func (s *FacultyStore) UpdateEvent(ctx context.Context, id int64, event models.Event) error {
	if err := validateEvent(event); err != nil {
		return err
	}
	if err := s.begin(); err != nil {
		return err
	}

	env, err := s.client.Put(ctx, fmt.Sprintf("/faculty/events/%d", id), event)
	if err != nil {
		return s.fail(err, "Failed to update event")
	}
	var updated models.Event
	if err := env.Object(&updated); err != nil {
		return s.fail(err, "Failed to update event")
	}

	s.mu.Lock()
	s.events.update(updated)
	s.loading = false
	s.mu.Unlock()
	return nil
}

// DeleteEvent removes the event from the cache after the server confirms.
func (s *FacultyStore) DeleteEvent(ctx context.Context, id int64) error {
	if err := s.begin(); err != nil {
		return err
	}

	if _, err := s.client.Delete(ctx, fmt.Sprintf("/faculty/events/%d", id)); err != nil {
		return s.fail(err, "Failed to delete event")
	}

	s.mu.Lock()
	s.events.remove(id)
	s.loading = false
	s.mu.Unlock()
	return nil
}

// FetchStudents replaces the roster cache.
func (s *FacultyStore) FetchStudents(ctx context.Context) {
	seq, ok := s.beginFetch(&s.studentsSeq)
	if !ok {
		return
	}

	env, err := s.client.Get(ctx, "/faculty/students", nil)
	var students []models.Student
	if err == nil {
		err = env.List(&students)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.studentsSeq.stale(seq) {
		return
	}
	s.loading = false
	if err != nil {
		s.errMsg = api.ErrorMessage(err, "Failed to fetch students")
		return
	}
	s.students = students
}

// FetchAttendanceByEvent replaces the attendance cache with the records
// for one event.
func (s *FacultyStore) FetchAttendanceByEvent(ctx context.Context, eventID int64) {
	seq, ok := s.beginFetch(&s.attendanceSeq)
	if !ok {
		return
	}

	env, err := s.client.Get(ctx, fmt.Sprintf("/faculty/attendance/event/%d", eventID), nil)
	var records []models.Attendance
	if err == nil {
		err = env.List(&records)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attendanceSeq.stale(seq) {
		return
	}
	s.loading = false
	if err != nil {
		s.errMsg = api.ErrorMessage(err, "Failed to fetch attendance")
		return
	}
	s.attendance.replace(records)
}

// MarkAttendance submits all per-student records for an event as one
// batch. The time window is checked client-side first: a completed
// event is rejected outright, a not-yet-started one gets the countdown
// message. The server's reported status transition is surfaced in the
// result, never decided locally.
func (s *FacultyStore) MarkAttendance(ctx context.Context, eventID int64, records []models.Attendance, markCompleted bool) (*models.MarkAttendanceResult, error) {
	if event, ok := s.cachedEvent(eventID); ok {
		now := s.now()
		if timewindow.IsCompleted(event, now) {
			return nil, apperrors.NewCustomError(apperrors.ErrEventCompleted,
				"Attendance cannot be marked for a completed event")
		}
		if !timewindow.CanMarkAttendance(event, now) {
			return nil, apperrors.NewCustomError(apperrors.ErrEventNotStarted,
				"Event "+timewindow.StartsInMessage(event, now))
		}
	}

	if err := s.begin(); err != nil {
		return nil, err
	}

	env, err := s.client.Post(ctx, "/faculty/attendance/enhanced", models.MarkAttendanceRequest{
		EventID:              eventID,
		AttendanceRecords:    records,
		MarkEventAsCompleted: markCompleted,
	})
	if err != nil {
		return nil, s.fail(err, "Failed to mark attendance")
	}

	var saved []models.Attendance
	if err := env.List(&saved); err != nil {
		return nil, s.fail(err, "Failed to mark attendance")
	}

	result := &models.MarkAttendanceResult{
		Message:          env.Message,
		Records:          saved,
		EventStatus:      models.EventStatus(env.EventStatus),
		StatusTransition: env.StatusTransition,
	}

	s.mu.Lock()
	s.attendance.add(saved...)
	if result.EventStatus != "" {
		// Mirror the server-reported status into the event cache
		for _, e := range s.events.items {
			if e.ID == eventID {
				e.Status = result.EventStatus
				s.events.update(e)
				break
			}
		}
	}
	s.loading = false
	s.mu.Unlock()
	return result, nil
}

func (s *FacultyStore) cachedEvent(id int64) (models.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events.items {
		if e.ID == id {
			return e, true
		}
	}
	return models.Event{}, false
}

// FetchStats fetches and caches the faculty dashboard counters.
func (s *FacultyStore) FetchStats(ctx context.Context) *models.FacultyStats {
	if !s.auth.IsAuthenticated() {
		s.setErr(errNotAuthenticated)
		return nil
	}
	env, err := s.client.Get(ctx, "/faculty/dashboard-stats", nil)
	if err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to fetch stats"))
		return nil
	}
	var stats models.FacultyStats
	if err := env.Object(&stats); err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to fetch stats"))
		return nil
	}
	s.mu.Lock()
	s.stats = &stats
	s.mu.Unlock()
	out := stats
	return &out
}

// FetchAnalyticsSummary fetches and caches the analytics rollup.
func (s *FacultyStore) FetchAnalyticsSummary(ctx context.Context) *models.AnalyticsSummary {
	if !s.auth.IsAuthenticated() {
		s.setErr(errNotAuthenticated)
		return nil
	}
	env, err := s.client.Get(ctx, "/faculty/analytics/summary", nil)
	if err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to fetch analytics summary"))
		return nil
	}
	var summary models.AnalyticsSummary
	if err := env.Object(&summary); err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to fetch analytics summary"))
		return nil
	}
	s.mu.Lock()
	s.summary = &summary
	s.mu.Unlock()
	out := summary
	return &out
}

// AnalyticsQuery is the paging/sorting window for the per-student
// analytics table.
type AnalyticsQuery struct {
	Page       int
	Size       int
	SortBy     string
	SortDir    string
	SearchTerm string
}

func (q AnalyticsQuery) values() url.Values {
	if q.Size == 0 {
		q.Size = 10
	}
	if q.SortBy == "" {
		q.SortBy = "attendancePercentage"
	}
	if q.SortDir == "" {
		q.SortDir = "desc"
	}
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("size", strconv.Itoa(q.Size))
	v.Set("sortBy", q.SortBy)
	v.Set("sortDir", q.SortDir)
	if q.SearchTerm != "" {
		v.Set("searchTerm", q.SearchTerm)
	}
	return v
}

// FetchStudentAnalytics is read-through: it returns a fresh result list
// without touching any cache, so a filtered table view keeps the roster
// underneath. Returns an empty slice on failure.
func (s *FacultyStore) FetchStudentAnalytics(ctx context.Context, q AnalyticsQuery) []models.StudentAnalytics {
	if !s.auth.IsAuthenticated() {
		s.setErr(errNotAuthenticated)
		return nil
	}
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	env, err := s.client.Get(ctx, "/faculty/analytics/students", q.values())
	if err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to fetch student analytics"))
		return nil
	}
	var rows []models.StudentAnalytics
	if err := env.List(&rows); err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to fetch student analytics"))
		return nil
	}
	return rows
}

// FetchStudentAttendanceDetails is read-through like the analytics table.
func (s *FacultyStore) FetchStudentAttendanceDetails(ctx context.Context, studentID int64, q AnalyticsQuery) []models.StudentAttendanceDetail {
	if !s.auth.IsAuthenticated() {
		s.setErr(errNotAuthenticated)
		return nil
	}
	if q.SortBy == "" {
		q.SortBy = "markedAt"
	}
	env, err := s.client.Get(ctx, fmt.Sprintf("/faculty/analytics/students/%d/attendance", studentID), q.values())
	if err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to fetch attendance details"))
		return nil
	}
	var rows []models.StudentAttendanceDetail
	if err := env.List(&rows); err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to fetch attendance details"))
		return nil
	}
	return rows
}
