package models

// AdminStats is the admin dashboard counter set.
type AdminStats struct {
	TotalUsers    int `json:"totalUsers"`
	TotalStudents int `json:"totalStudents"`
	TotalFaculty  int `json:"totalFaculty"`
	TotalAdmins   int `json:"totalAdmins"`
}

// FacultyStats is the faculty dashboard counter set.
type FacultyStats struct {
	TotalStudents  int    `json:"totalStudents"`
	TotalEvents    int    `json:"totalEvents"`
	UpcomingEvents int    `json:"upcomingEvents"`
	AttendanceRate string `json:"attendanceRate"`
}

// StudentDashboardStats is the student dashboard counter set.
type StudentDashboardStats struct {
	TotalEvents          int     `json:"totalEvents"`
	PresentCount         int     `json:"presentCount"`
	AbsentCount          int     `json:"absentCount"`
	LateCount            int     `json:"lateCount"`
	AttendancePercentage float64 `json:"attendancePercentage"`
	UpcomingEvents       int     `json:"upcomingEvents"`
	AverageMarks         float64 `json:"averageMarks"`
}

// AttendanceRecord is the student's own attendance history entry,
// joined with event details server-side.
type AttendanceRecord struct {
	ID              int64    `json:"id"`
	EventID         int64    `json:"eventId"`
	EventTitle      string   `json:"eventTitle"`
	EventType       string   `json:"eventType"`
	EventDate       string   `json:"eventDate"`
	EventLocation   string   `json:"eventLocation"`
	Status          string   `json:"status"`
	MarksObtained   *float64 `json:"marksObtained,omitempty"`
	MaxMarks        *float64 `json:"maxMarks,omitempty"`
	Remarks         string   `json:"remarks,omitempty"`
	MarkedAt        string   `json:"markedAt"`
	MarkedByFaculty string   `json:"markedByFaculty"`
}

// AnalyticsSummary is the faculty-wide attendance analytics rollup.
type AnalyticsSummary struct {
	TotalStudents                int            `json:"totalStudents"`
	StudentsWithAttendance       int            `json:"studentsWithAttendance"`
	OverallAttendanceRate        string         `json:"overallAttendanceRate"`
	OverallAverageMarks          string         `json:"overallAverageMarks"`
	AttendanceStatusDistribution map[string]int `json:"attendanceStatusDistribution"`
}

// StudentAnalytics is one per-student row in the faculty analytics table.
type StudentAnalytics struct {
	StudentID            int64   `json:"studentId"`
	StudentName          string  `json:"studentName"`
	StudentEmail         string  `json:"studentEmail"`
	StudentIDNumber      string  `json:"studentIdNumber"`
	Department           string  `json:"department"`
	Course               string  `json:"course"`
	TotalEvents          int     `json:"totalEvents"`
	PresentCount         int     `json:"presentCount"`
	AbsentCount          int     `json:"absentCount"`
	LateCount            int     `json:"lateCount"`
	ExcusedCount         int     `json:"excusedCount"`
	AttendancePercentage float64 `json:"attendancePercentage"`
	AverageMarks         float64 `json:"averageMarks"`
	PerformanceGrade     string  `json:"performanceGrade"`
	AttendanceStatus     string  `json:"attendanceStatus"`
}

// StudentAttendanceDetail is one row of a student's per-event history in
// the faculty analytics drill-down.
type StudentAttendanceDetail struct {
	AttendanceID      int64    `json:"attendanceId"`
	EventID           int64    `json:"eventId"`
	EventTitle        string   `json:"eventTitle"`
	EventType         string   `json:"eventType"`
	EventDate         string   `json:"eventDate"`
	EventLocation     string   `json:"eventLocation"`
	AttendanceStatus  string   `json:"attendanceStatus"`
	MarksObtained     *float64 `json:"marksObtained,omitempty"`
	MaxMarks          *float64 `json:"maxMarks,omitempty"`
	Remarks           string   `json:"remarks,omitempty"`
	MarkedAt          string   `json:"markedAt"`
	MarkedByFaculty   string   `json:"markedByFaculty"`
	PerformanceStatus string   `json:"performanceStatus"`
}

// SubjectProgress is the per-subject slice of a progress report.
type SubjectProgress struct {
	TotalEvents    int     `json:"totalEvents"`
	Attended       int     `json:"attended"`
	AttendanceRate float64 `json:"attendanceRate"`
	AverageMarks   float64 `json:"averageMarks,omitempty"`
}

// ProgressReport is the student progress view.
type ProgressReport struct {
	OverallAttendance  float64                    `json:"overallAttendance"`
	TotalEvents        int                        `json:"totalEvents"`
	PresentCount       int                        `json:"presentCount"`
	LateCount          int                        `json:"lateCount"`
	Grade              string                     `json:"grade"`
	SubjectPerformance map[string]SubjectProgress `json:"subjectPerformance"`
}
