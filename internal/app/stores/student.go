package stores

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pearldata/pearlctl/internal/api"
	"github.com/pearldata/pearlctl/internal/app/models"
	"github.com/pearldata/pearlctl/internal/pkg/apperrors"
)

// StudentStore owns the student slice: profile, dashboard, attendance
// history, grouped events, progress, notifications, and the client-only
// library book list.
type StudentStore struct {
	mu               sync.Mutex
	client           *api.Client
	auth             Authenticator
	logger           zerolog.Logger
	profile          *models.StudentProfile
	stats            *models.StudentDashboardStats
	attendance       []models.AttendanceRecord
	events           collection[models.Event]
	grouped          *models.GroupedEvents
	summary          *models.EventsSummary
	progress         *models.ProgressReport
	notifications    collection[models.Notification]
	unreadCount      int
	books            []models.LibraryBook
	attendanceSeq    fetchToken
	eventsSeq        fetchToken
	notificationsSeq fetchToken
	loading          bool
	errMsg           string
}

// NewStudentStore creates the store. The library book collection is
// seeded client-side; there is no backing endpoint in this build.
func NewStudentStore(client *api.Client, auth Authenticator, logger zerolog.Logger) *StudentStore {
	return &StudentStore{
		client:        client,
		auth:          auth,
		logger:        logger,
		events:        newCollection(eventID),
		notifications: newCollection(notificationID),
		books:         seedLibraryBooks(),
	}
}

func seedLibraryBooks() []models.LibraryBook {
	return []models.LibraryBook{
		{
			ID:      "1",
			Title:   "Introduction to Algorithms",
			Author:  "Thomas H. Cormen",
			ISBN:    "978-0262033848",
			DueDate: "2025-10-15",
			Status:  models.BookOverdue,
			Fine:    50,
		},
		{
			ID:      "2",
			Title:   "Database System Concepts",
			Author:  "Abraham Silberschatz",
			ISBN:    "978-0073523323",
			DueDate: "2025-10-25",
			Status:  models.BookBorrowed,
		},
		{
			ID:      "3",
			Title:   "Computer Networks",
			Author:  "Andrew S. Tanenbaum",
			ISBN:    "978-0132126953",
			DueDate: "2025-10-12",
			Status:  models.BookReturned,
		},
	}
}

// Profile returns the cached profile, if fetched.
func (s *StudentStore) Profile() *models.StudentProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	profile := *s.profile
	return &profile
}

// Stats returns the cached dashboard stats, if fetched.
func (s *StudentStore) Stats() *models.StudentDashboardStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats == nil {
		return nil
	}
	stats := *s.stats
	return &stats
}

// Attendance returns a copy of the cached attendance history.
func (s *StudentStore) Attendance() []models.AttendanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AttendanceRecord, len(s.attendance))
	copy(out, s.attendance)
	return out
}

// Events returns the flattened event cache.
func (s *StudentStore) Events() []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events.snapshot()
}

// GroupedEvents returns the grouped event view, if fetched.
func (s *StudentStore) GroupedEvents() *models.GroupedEvents {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grouped == nil {
		return nil
	}
	grouped := *s.grouped
	return &grouped
}

// EventsSummary returns the grouped-events counters, if fetched.
func (s *StudentStore) EventsSummary() *models.EventsSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary == nil {
		return nil
	}
	summary := *s.summary
	return &summary
}

// Progress returns the cached progress report, if fetched.
func (s *StudentStore) Progress() *models.ProgressReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.progress == nil {
		return nil
	}
	progress := *s.progress
	return &progress
}

// Notifications returns a copy of the cached notifications.
func (s *StudentStore) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notifications.snapshot()
}

// UnreadCount returns the unread notification counter.
func (s *StudentStore) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unreadCount
}

// Books returns the client-only library book list.
func (s *StudentStore) Books() []models.LibraryBook {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.LibraryBook, len(s.books))
	copy(out, s.books)
	return out
}

// Loading reports whether a call is in flight.
func (s *StudentStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the current error message, if any.
func (s *StudentStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// ClearError resets the error message.
func (s *StudentStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

func (s *StudentStore) beginFetch(t *fetchToken) (uint64, bool) {
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

func (s *StudentStore) begin() error {
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

func (s *StudentStore) fail(err error, fallback string) error {
	msg := api.ErrorMessage(err, fallback)
	s.mu.Lock()
	s.loading = false
	s.errMsg = msg
	s.mu.Unlock()
	return apperrors.NewCustomError(err, msg)
}

// fetchObject is the shared read path for the singleton views: it
// records errors in store state and reports success.
func (s *StudentStore) fetchObject(ctx context.Context, path string, fallback string, out interface{}) bool {
	if err := s.begin(); err != nil {
		return false
	}
	env, err := s.client.Get(ctx, path, nil)
	if err == nil {
		err = env.Object(out)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.errMsg = api.ErrorMessage(err, fallback)
		return false
	}
	return true
}

// FetchProfile loads the student's own profile.
func (s *StudentStore) FetchProfile(ctx context.Context) {
	var profile models.StudentProfile
	if s.fetchObject(ctx, "/student/profile", "Failed to fetch profile", &profile) {
		s.mu.Lock()
		s.profile = &profile
		s.mu.Unlock()
	}
}

// UpdateProfile saves profile changes and mirrors the server's returned
// representation.
func (s *StudentStore) UpdateProfile(ctx context.Context, profile models.StudentProfile) error {
	if err := s.begin(); err != nil {
		return err
	}

	env, err := s.client.Put(ctx, "/student/profile", profile)
	if err != nil {
		return s.fail(err, "Failed to update profile")
	}
	var updated models.StudentProfile
	if err := env.Object(&updated); err != nil {
		return s.fail(err, "Failed to update profile")
	}

	s.mu.Lock()
	s.profile = &updated
	s.loading = false
	s.mu.Unlock()
	return nil
}

// FetchDashboardStats loads the dashboard counters.
func (s *StudentStore) FetchDashboardStats(ctx context.Context) {
	var stats models.StudentDashboardStats
	if s.fetchObject(ctx, "/student/dashboard-stats", "Failed to fetch dashboard stats", &stats) {
		s.mu.Lock()
		s.stats = &stats
		s.mu.Unlock()
	}
}

// FetchAttendance replaces the attendance history page.
func (s *StudentStore) FetchAttendance(ctx context.Context, page, size int) {
	seq, ok := s.beginFetch(&s.attendanceSeq)
	if !ok {
		return
	}
	if size == 0 {
		size = 10
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	env, err := s.client.Get(ctx, "/student/attendance", q)
	var records []models.AttendanceRecord
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
	s.attendance = records
}

// FetchEvents loads the grouped events view and flattens it into the
// event cache, ongoing first, then scheduled, then completed.
func (s *StudentStore) FetchEvents(ctx context.Context) {
	seq, ok := s.beginFetch(&s.eventsSeq)
	if !ok {
		return
	}

	env, err := s.client.Get(ctx, "/student/events", nil)
	var grouped models.GroupedEvents
	var summary models.EventsSummary
	if err == nil {
		err = env.Object(&grouped)
	}
	if err == nil {
		err = env.DecodeSummary(&summary)
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
	s.grouped = &grouped
	s.summary = &summary
	all := make([]models.Event, 0, len(grouped.Ongoing)+len(grouped.Scheduled)+len(grouped.Completed))
	all = append(all, grouped.Ongoing...)
	all = append(all, grouped.Scheduled...)
	all = append(all, grouped.Completed...)
	s.events.replace(all)
}

// FetchProgress loads the progress report.
func (s *StudentStore) FetchProgress(ctx context.Context) {
	var progress models.ProgressReport
	if s.fetchObject(ctx, "/student/progress", "Failed to fetch progress", &progress) {
		s.mu.Lock()
		s.progress = &progress
		s.mu.Unlock()
	}
}

// FetchNotifications replaces the notification cache and the unread
// counter.
func (s *StudentStore) FetchNotifications(ctx context.Context) {
	seq, ok := s.beginFetch(&s.notificationsSeq)
	if !ok {
		return
	}

	env, err := s.client.Get(ctx, "/student/notifications", nil)
	var items []models.Notification
	if err == nil {
		err = env.List(&items)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notificationsSeq.stale(seq) {
		return
	}
	s.loading = false
	if err != nil {
		s.errMsg = api.ErrorMessage(err, "Failed to fetch notifications")
		return
	}
	s.notifications.replace(items)
	s.unreadCount = env.UnreadCount
}

// FetchRecentNotifications refreshes the unread counter for a dashboard
// badge without disrupting whatever is displayed: failures are logged,
// never stored, and an already-populated cache is left alone.
func (s *StudentStore) FetchRecentNotifications(ctx context.Context) {
	if !s.auth.IsAuthenticated() {
		return
	}
	env, err := s.client.Get(ctx, "/student/notifications/recent", nil)
	if err != nil {
		s.logger.Debug().Err(err).Msg("recent notifications fetch failed")
		return
	}
	var items []models.Notification
	if err := env.List(&items); err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.notifications.items) == 0 {
		s.notifications.replace(items)
	}
	s.unreadCount = env.UnreadCount
}

// MarkNotificationRead flips isRead after the server confirms.
func (s *StudentStore) MarkNotificationRead(ctx context.Context, id int64) error {
	if err := s.begin(); err != nil {
		return err
	}

	if _, err := s.client.Put(ctx, fmt.Sprintf("/student/notifications/%d/read", id), struct{}{}); err != nil {
		return s.fail(err, "Failed to mark notification as read")
	}

	s.mu.Lock()
	for _, n := range s.notifications.items {
		if n.ID == id {
			if !n.IsRead {
				n.IsRead = true
				s.notifications.update(n)
				if s.unreadCount > 0 {
					s.unreadCount--
				}
			}
			break
		}
	}
	s.loading = false
	s.mu.Unlock()
	return nil
}

// DeleteNotification removes the record after the server confirms.
func (s *StudentStore) DeleteNotification(ctx context.Context, id int64) error {
	if err := s.begin(); err != nil {
		return err
	}

	if _, err := s.client.Delete(ctx, fmt.Sprintf("/student/notifications/%d", id)); err != nil {
		return s.fail(err, "Failed to delete notification")
	}

	s.mu.Lock()
	for _, n := range s.notifications.items {
		if n.ID == id {
			if !n.IsRead && s.unreadCount > 0 {
				s.unreadCount--
			}
			break
		}
	}
	s.notifications.remove(id)
	s.loading = false
	s.mu.Unlock()
	return nil
}
