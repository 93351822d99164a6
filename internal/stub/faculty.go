package stub

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pearldata/pearlctl/internal/app/models"
	"github.com/pearldata/pearlctl/internal/pkg/validation"
)

func (s *Server) handleFacultyEvents(c *gin.Context) {
	s.mem.mu.Lock()
	events := s.mem.eventsSorted()
	s.mem.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "data": events})
}

func (s *Server) handleCreateEvent(c *gin.Context) {
	var event models.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if !validation.EventTitle(event.Title) || !validation.Location(event.Location) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event details"})
		return
	}
	if !event.EndTime.After(event.StartTime) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "End time must be after start time"})
		return
	}

	cl := currentClaims(c)
	now := time.Now()

	s.mem.mu.Lock()
	event.ID = s.mem.id()
	event.Status = models.EventScheduled
	event.FacultyID = cl.UserID
	event.CreatedAt = &now
	stored := event
	s.mem.events[event.ID] = &stored
	s.mem.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": event})
}

func (s *Server) handleUpdateEvent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event id"})
		return
	}
	var patch models.Event
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	event, ok := s.mem.events[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
		return
	}
	if patch.Title != "" {
		event.Title = patch.Title
	}
	if patch.Description != "" {
		event.Description = patch.Description
	}
	if patch.Location != "" {
		event.Location = patch.Location
	}
	if patch.EventType != "" {
		event.EventType = patch.EventType
	}
	if !patch.StartTime.IsZero() {
		event.StartTime = patch.StartTime
	}
	if !patch.EndTime.IsZero() {
		event.EndTime = patch.EndTime
	}
	if !event.EndTime.After(event.StartTime) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "End time must be after start time"})
		return
	}
	now := time.Now()
	event.UpdatedAt = &now

	c.JSON(http.StatusOK, gin.H{"success": true, "data": *event})
}

func (s *Server) handleDeleteEvent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event id"})
		return
	}

	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	if _, ok := s.mem.events[id]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
		return
	}
	delete(s.mem.events, id)
	for aid, a := range s.mem.attendance {
		if a.EventID == id {
			delete(s.mem.attendance, aid)
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Event deleted"})
}

func (s *Server) handleFacultyStudents(c *gin.Context) {
	s.mem.mu.Lock()
	students := make([]models.Student, 0)
	for _, u := range s.mem.usersSorted() {
		if u.Role != models.RoleStudent {
			continue
		}
		acct := s.mem.accounts[u.ID]
		students = append(students, models.Student{
			ID:          u.ID,
			Name:        u.Name,
			Email:       u.Email,
			PhoneNumber: u.PhoneNumber,
			StudentID:   acct.studentID,
			Department:  "Computer Science",
			Course:      "B.Tech",
			IsActive:    u.IsActive,
		})
	}
	s.mem.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "data": students})
}

func (s *Server) handleAttendanceByEvent(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("eventId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event id"})
		return
	}

	s.mem.mu.Lock()
	records := make([]models.Attendance, 0)
	for _, a := range s.mem.attendance {
		if a.EventID == eventID {
			records = append(records, *a)
		}
	}
	s.mem.mu.Unlock()
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	c.JSON(http.StatusOK, gin.H{"success": true, "data": records})
}

// handleMarkAttendance is the batch write. It upserts one record per
// (studentId, eventId) pair and reports any status transition at the
// top level of the response, next to the data array.
func (s *Server) handleMarkAttendance(c *gin.Context) {
	var req models.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	cl := currentClaims(c)
	now := time.Now()

	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	event, ok := s.mem.events[req.EventID]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
		return
	}
	if event.Status == models.EventCompleted || event.Status == models.EventCancelled {
		c.JSON(http.StatusConflict, gin.H{"message": "Attendance cannot be marked for a completed event"})
		return
	}
	if now.Before(event.StartTime) {
		c.JSON(http.StatusConflict, gin.H{"message": "Event has not started yet"})
		return
	}

	saved := make([]models.Attendance, 0, len(req.AttendanceRecords))
	for _, rec := range req.AttendanceRecords {
		rec.EventID = req.EventID
		rec.MarkedByFacultyID = cl.UserID
		markedAt := now
		rec.MarkedAt = &markedAt

		var existing *models.Attendance
		for _, a := range s.mem.attendance {
			if a.EventID == req.EventID && a.StudentID == rec.StudentID {
				existing = a
				break
			}
		}
		if existing != nil {
			rec.ID = existing.ID
			*existing = rec
		} else {
			rec.ID = s.mem.id()
			stored := rec
			s.mem.attendance[rec.ID] = &stored
		}
		saved = append(saved, rec)
	}

	resp := gin.H{
		"success": true,
		"message": fmt.Sprintf("Attendance saved for %d students", len(saved)),
		"data":    saved,
	}
	if req.MarkEventAsCompleted && event.Status != models.EventCompleted {
		from := event.Status
		event.Status = models.EventCompleted
		resp["eventStatus"] = event.Status
		resp["statusTransition"] = fmt.Sprintf("%s -> %s", from, event.Status)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleFacultyStats(c *gin.Context) {
	now := time.Now()

	s.mem.mu.Lock()
	stats := models.FacultyStats{}
	for _, a := range s.mem.accounts {
		if a.user.Role == models.RoleStudent {
			stats.TotalStudents++
		}
	}
	present, total := 0, 0
	for _, a := range s.mem.attendance {
		total++
		if a.Status == models.AttendancePresent || a.Status == models.AttendanceLate {
			present++
		}
	}
	for _, e := range s.mem.events {
		stats.TotalEvents++
		if e.StartTime.After(now) {
			stats.UpcomingEvents++
		}
	}
	s.mem.mu.Unlock()

	if total > 0 {
		stats.AttendanceRate = fmt.Sprintf("%.1f%%", float64(present)/float64(total)*100)
	} else {
		stats.AttendanceRate = "0.0%"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

func (s *Server) handleAnalyticsSummary(c *gin.Context) {
	s.mem.mu.Lock()
	summary := models.AnalyticsSummary{
		AttendanceStatusDistribution: make(map[string]int),
	}
	withAttendance := make(map[int64]bool)
	present, total := 0, 0
	for _, a := range s.mem.accounts {
		if a.user.Role == models.RoleStudent {
			summary.TotalStudents++
		}
	}
	var markSum float64
	var markCount int
	for _, a := range s.mem.attendance {
		withAttendance[a.StudentID] = true
		summary.AttendanceStatusDistribution[string(a.Status)]++
		total++
		if a.Status == models.AttendancePresent || a.Status == models.AttendanceLate {
			present++
		}
		if a.MarksObtained != nil {
			markSum += *a.MarksObtained
			markCount++
		}
	}
	s.mem.mu.Unlock()

	summary.StudentsWithAttendance = len(withAttendance)
	if total > 0 {
		summary.OverallAttendanceRate = fmt.Sprintf("%.1f%%", float64(present)/float64(total)*100)
	} else {
		summary.OverallAttendanceRate = "0.0%"
	}
	if markCount > 0 {
		summary.OverallAverageMarks = fmt.Sprintf("%.1f", markSum/float64(markCount))
	} else {
		summary.OverallAverageMarks = "0.0"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": summary})
}

func (s *Server) studentAnalyticsRows() []models.StudentAnalytics {
	rows := make([]models.StudentAnalytics, 0)
	for _, u := range s.mem.usersSorted() {
		if u.Role != models.RoleStudent {
			continue
		}
		acct := s.mem.accounts[u.ID]
		row := models.StudentAnalytics{
			StudentID:       u.ID,
			StudentName:     u.Name,
			StudentEmail:    u.Email,
			StudentIDNumber: acct.studentID,
			Department:      "Computer Science",
			Course:          "B.Tech",
		}
		var markSum float64
		var markCount int
		for _, a := range s.mem.attendance {
			if a.StudentID != u.ID {
				continue
			}
			row.TotalEvents++
			switch a.Status {
			case models.AttendancePresent:
				row.PresentCount++
			case models.AttendanceAbsent:
				row.AbsentCount++
			case models.AttendanceLate:
				row.LateCount++
			case models.AttendanceExcused:
				row.ExcusedCount++
			}
			if a.MarksObtained != nil {
				markSum += *a.MarksObtained
				markCount++
			}
		}
		if row.TotalEvents > 0 {
			attended := row.PresentCount + row.LateCount
			row.AttendancePercentage = float64(attended) / float64(row.TotalEvents) * 100
		}
		if markCount > 0 {
			row.AverageMarks = markSum / float64(markCount)
		}
		row.PerformanceGrade = grade(row.AttendancePercentage)
		if row.AttendancePercentage >= 75 {
			row.AttendanceStatus = "GOOD"
		} else {
			row.AttendanceStatus = "AT_RISK"
		}
		rows = append(rows, row)
	}
	return rows
}

func grade(pct float64) string {
	switch {
	case pct >= 90:
		return "A"
	case pct >= 75:
		return "B"
	case pct >= 60:
		return "C"
	case pct > 0:
		return "D"
	default:
		return "N/A"
	}
}

func (s *Server) handleStudentAnalytics(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	if size <= 0 {
		size = 10
	}
	sortBy := c.DefaultQuery("sortBy", "attendancePercentage")
	sortDir := c.DefaultQuery("sortDir", "desc")
	search := strings.ToLower(strings.TrimSpace(c.Query("searchTerm")))

	s.mem.mu.Lock()
	rows := s.studentAnalyticsRows()
	s.mem.mu.Unlock()

	if search != "" {
		filtered := rows[:0]
		for _, r := range rows {
			if strings.Contains(strings.ToLower(r.StudentName), search) ||
				strings.Contains(strings.ToLower(r.StudentEmail), search) ||
				strings.Contains(strings.ToLower(r.StudentIDNumber), search) {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	sort.SliceStable(rows, func(i, j int) bool {
		var less bool
		switch sortBy {
		case "studentName":
			less = rows[i].StudentName < rows[j].StudentName
		case "averageMarks":
			less = rows[i].AverageMarks < rows[j].AverageMarks
		default:
			less = rows[i].AttendancePercentage < rows[j].AttendancePercentage
		}
		if sortDir == "desc" {
			return !less
		}
		return less
	})

	start := page * size
	if start > len(rows) {
		start = len(rows)
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"content":       rows[start:end],
			"totalElements": len(rows),
			"totalPages":    (len(rows) + size - 1) / size,
			"number":        page,
			"size":          size,
		},
	})
}

func (s *Server) handleStudentAttendanceDetails(c *gin.Context) {
	studentID, err := strconv.ParseInt(c.Param("studentId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid student id"})
		return
	}
	sortDir := c.DefaultQuery("sortDir", "desc")

	s.mem.mu.Lock()
	details := make([]models.StudentAttendanceDetail, 0)
	for _, a := range s.mem.attendance {
		if a.StudentID != studentID {
			continue
		}
		event := s.mem.events[a.EventID]
		detail := models.StudentAttendanceDetail{
			AttendanceID:     a.ID,
			EventID:          a.EventID,
			AttendanceStatus: string(a.Status),
			MarksObtained:    a.MarksObtained,
			MaxMarks:         a.MaxMarks,
			Remarks:          a.Remarks,
		}
		if event != nil {
			detail.EventTitle = event.Title
			detail.EventType = string(event.EventType)
			detail.EventDate = event.StartTime.Format(time.RFC3339)
			detail.EventLocation = event.Location
		}
		if a.MarkedAt != nil {
			detail.MarkedAt = a.MarkedAt.Format(time.RFC3339)
		}
		if marker, ok := s.mem.accounts[a.MarkedByFacultyID]; ok {
			detail.MarkedByFaculty = marker.user.Name
		}
		if a.MarksObtained != nil && a.MaxMarks != nil && *a.MaxMarks > 0 {
			if *a.MarksObtained / *a.MaxMarks >= 0.5 {
				detail.PerformanceStatus = "PASSING"
			} else {
				detail.PerformanceStatus = "FAILING"
			}
		}
		details = append(details, detail)
	}
	s.mem.mu.Unlock()

	sort.SliceStable(details, func(i, j int) bool {
		less := details[i].MarkedAt < details[j].MarkedAt
		if sortDir == "desc" {
			return !less
		}
		return less
	})
	c.JSON(http.StatusOK, gin.H{"success": true, "data": details})
}
