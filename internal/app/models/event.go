package models

import "time"

// Event is a scheduled campus event. The edit boundary enforces
// EndTime > StartTime; everything else about the lifecycle belongs to
// the server.
type Event struct {
	ID          int64       `json:"id,omitempty"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	EventType   EventType   `json:"eventType"`
	StartTime   time.Time   `json:"startTime"`
	EndTime     time.Time   `json:"endTime"`
	Location    string      `json:"location"`
	Status      EventStatus `json:"status"`
	FacultyID   int64       `json:"facultyId,omitempty"`
	CreatedAt   *time.Time  `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time  `json:"updatedAt,omitempty"`
}

// Attendance is one record per (studentId, eventId) pair. Uniqueness is
// assumed server-side, not enforced locally.
type Attendance struct {
	ID                int64            `json:"id,omitempty"`
	StudentID         int64            `json:"studentId"`
	EventID           int64            `json:"eventId"`
	Status            AttendanceStatus `json:"status"`
	MarksObtained     *float64         `json:"marksObtained,omitempty"`
	MaxMarks          *float64         `json:"maxMarks,omitempty"`
	Remarks           string           `json:"remarks,omitempty"`
	MarkedByFacultyID int64            `json:"markedByFacultyId,omitempty"`
	MarkedAt          *time.Time       `json:"markedAt,omitempty"`
}

// MarkAttendanceRequest is the batch payload for
// POST /faculty/attendance/enhanced.
type MarkAttendanceRequest struct {
	EventID              int64        `json:"eventId"`
	AttendanceRecords    []Attendance `json:"attendanceRecords"`
	MarkEventAsCompleted bool         `json:"markEventAsCompleted"`
}

// MarkAttendanceResult is what the client surfaces after a batch save.
// StatusTransition is reported by the server; the client never decides
// the authoritative new status itself.
type MarkAttendanceResult struct {
	Message          string
	Records          []Attendance
	EventStatus      EventStatus
	StatusTransition string
}

// GroupedEvents is the student events view returned by GET /student/events.
type GroupedEvents struct {
	Ongoing   []Event `json:"ongoing"`
	Scheduled []Event `json:"scheduled"`
	Completed []Event `json:"completed"`
}

// EventsSummary accompanies GroupedEvents.
type EventsSummary struct {
	OngoingCount   int `json:"ongoingCount"`
	ScheduledCount int `json:"scheduledCount"`
	CompletedCount int `json:"completedCount"`
}
