package models

// Role defines the user role type
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleFaculty Role = "FACULTY"
	RoleStudent Role = "STUDENT"
)

// Valid reports whether the role is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleFaculty, RoleStudent:
		return true
	}
	return false
}

// EventType classifies a scheduled event
type EventType string

const (
	EventLecture      EventType = "LECTURE"
	EventLab          EventType = "LAB"
	EventSeminar      EventType = "SEMINAR"
	EventExam         EventType = "EXAM"
	EventWorkshop     EventType = "WORKSHOP"
	EventAssignment   EventType = "ASSIGNMENT"
	EventMeeting      EventType = "MEETING"
	EventPresentation EventType = "PRESENTATION"
)

// EventStatus is the lifecycle state of an event. Transitions are
// server-driven; the client only displays what the server reports.
type EventStatus string

const (
	EventScheduled EventStatus = "SCHEDULED"
	EventOngoing   EventStatus = "ONGOING"
	EventCompleted EventStatus = "COMPLETED"
	EventCancelled EventStatus = "CANCELLED"
)

// AttendanceStatus is the per-student attendance outcome for an event
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLate    AttendanceStatus = "LATE"
	AttendanceExcused AttendanceStatus = "EXCUSED"
	AttendancePartial AttendanceStatus = "PARTIAL"
)

// BookStatus is the lending state of a library book
type BookStatus string

const (
	BookBorrowed BookStatus = "borrowed"
	BookOverdue  BookStatus = "overdue"
	BookReturned BookStatus = "returned"
)
