package stub

import (
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pearldata/pearlctl/internal/app/models"
)

// account pairs a user record with its credential hash. The hash never
// leaves the store.
type account struct {
	user         models.User
	passwordHash []byte
	studentID    string
}

// memory is the stub's whole dataset behind a single mutex. It is a
// development stand-in, not a database.
type memory struct {
	mu            sync.Mutex
	nextID        int64
	accounts      map[int64]*account
	events        map[int64]*models.Event
	attendance    map[int64]*models.Attendance
	notifications map[int64]*models.Notification
}

func newMemory() *memory {
	return &memory{
		nextID:        1,
		accounts:      make(map[int64]*account),
		events:        make(map[int64]*models.Event),
		attendance:    make(map[int64]*models.Attendance),
		notifications: make(map[int64]*models.Notification),
	}
}

func (m *memory) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func hashPassword(plain string) []byte {
	// Cost 4 keeps seeded logins fast; the stub guards nothing real.
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return hash
}

// Seed loads a deterministic dataset: one user per role, a handful of
// events around the current time, and a few notifications. Tests and
// local development rely on these fixtures.
func (m *memory) Seed(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := now.Add(-30 * 24 * time.Hour)

	admin := &account{
		user: models.User{
			ID:          m.id(),
			Name:        "Site Admin",
			Email:       "admin@pearldata.edu",
			Role:        models.RoleAdmin,
			PhoneNumber: "+919876543210",
			IsActive:    true,
			CreatedAt:   &created,
		},
		passwordHash: hashPassword("admin123"),
	}
	faculty := &account{
		user: models.User{
			ID:          m.id(),
			Name:        "Priya Sharma",
			Email:       "faculty@pearldata.edu",
			Role:        models.RoleFaculty,
			PhoneNumber: "+919876543211",
			IsActive:    true,
			CreatedAt:   &created,
		},
		passwordHash: hashPassword("faculty123"),
	}
	student := &account{
		user: models.User{
			ID:          m.id(),
			Name:        "Rahul Verma",
			Email:       "student@pearldata.edu",
			Role:        models.RoleStudent,
			PhoneNumber: "+919876543212",
			IsActive:    true,
			CreatedAt:   &created,
		},
		passwordHash: hashPassword("student123"),
		studentID:    "STU2024001",
	}
	for _, a := range []*account{admin, faculty, student} {
		m.accounts[a.user.ID] = a
	}

	ongoing := &models.Event{
		ID:        m.id(),
		Title:     "Data Structures Lecture",
		EventType: models.EventLecture,
		StartTime: now.Add(-30 * time.Minute),
		EndTime:   now.Add(60 * time.Minute),
		Location:  "Room 204",
		Status:    models.EventOngoing,
		FacultyID: faculty.user.ID,
	}
	upcoming := &models.Event{
		ID:        m.id(),
		Title:     "Networks Seminar",
		EventType: models.EventSeminar,
		StartTime: now.Add(24 * time.Hour),
		EndTime:   now.Add(26 * time.Hour),
		Location:  "Auditorium",
		Status:    models.EventScheduled,
		FacultyID: faculty.user.ID,
	}
	finished := &models.Event{
		ID:        m.id(),
		Title:     "Midterm Exam",
		EventType: models.EventExam,
		StartTime: now.Add(-48 * time.Hour),
		EndTime:   now.Add(-46 * time.Hour),
		Location:  "Hall A",
		Status:    models.EventCompleted,
		FacultyID: faculty.user.ID,
	}
	for _, e := range []*models.Event{ongoing, upcoming, finished} {
		m.events[e.ID] = e
	}

	markedAt := finished.EndTime
	marks := 42.0
	maxMarks := 50.0
	m.attendance[m.id()] = &models.Attendance{
		ID:                m.nextID - 1,
		StudentID:         student.user.ID,
		EventID:           finished.ID,
		Status:            models.AttendancePresent,
		MarksObtained:     &marks,
		MaxMarks:          &maxMarks,
		MarkedByFacultyID: faculty.user.ID,
		MarkedAt:          &markedAt,
	}

	m.notifications[m.id()] = &models.Notification{
		ID:           m.nextID - 1,
		StudentID:    student.user.ID,
		FromUserID:   faculty.user.ID,
		FromUserName: faculty.user.Name,
		FromUserRole: models.RoleFaculty,
		Title:        "Exam results published",
		Message:      "Midterm results are now available.",
		Type:         "academic",
		CreatedAt:    now.Add(-2 * time.Hour),
	}
	m.notifications[m.id()] = &models.Notification{
		ID:           m.nextID - 1,
		StudentID:    student.user.ID,
		FromUserID:   admin.user.ID,
		FromUserName: admin.user.Name,
		FromUserRole: models.RoleAdmin,
		Title:        "Campus maintenance",
		Message:      "The library wing is closed this weekend.",
		Type:         "general",
		IsRead:       true,
		CreatedAt:    now.Add(-26 * time.Hour),
	}
}

// findByEmailOrPhone matches a login identifier against email first,
// then phone number.
func (m *memory) findByEmailOrPhone(identifier string) *account {
	for _, a := range m.accounts {
		if strings.EqualFold(a.user.Email, identifier) || a.user.PhoneNumber == identifier {
			return a
		}
	}
	return nil
}

// usersSorted returns all users ordered by id for stable pagination.
func (m *memory) usersSorted() []models.User {
	out := make([]models.User, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a.user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memory) eventsSorted() []models.Event {
	out := make([]models.Event, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func (m *memory) notificationsFor(studentID int64) []models.Notification {
	out := make([]models.Notification, 0)
	for _, n := range m.notifications {
		if n.StudentID == studentID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memory) unreadCountFor(studentID int64) int {
	count := 0
	for _, n := range m.notifications {
		if n.StudentID == studentID && !n.IsRead {
			count++
		}
	}
	return count
}
