package stub

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pearldata/pearlctl/internal/app/models"
)

func (s *Server) handleStudentProfile(c *gin.Context) {
	cl := currentClaims(c)

	s.mem.mu.Lock()
	acct, ok := s.mem.accounts[cl.UserID]
	s.mem.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Profile not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": profileOf(acct)})
}

func profileOf(acct *account) models.StudentProfile {
	return models.StudentProfile{
		ID:          acct.user.ID,
		Name:        acct.user.Name,
		Email:       acct.user.Email,
		PhoneNumber: acct.user.PhoneNumber,
		Bio:         acct.user.Bio,
		Role:        acct.user.Role,
		IsActive:    acct.user.IsActive,
		CreatedAt:   acct.user.CreatedAt,
		StudentID:   acct.studentID,
		Department:  "Computer Science",
		Course:      "B.Tech",
	}
}

func (s *Server) handleUpdateStudentProfile(c *gin.Context) {
	cl := currentClaims(c)
	var req models.StudentProfile
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	acct, ok := s.mem.accounts[cl.UserID]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Profile not found"})
		return
	}
	if req.Name != "" {
		acct.user.Name = req.Name
	}
	if req.PhoneNumber != "" {
		acct.user.PhoneNumber = req.PhoneNumber
	}
	if req.Bio != "" {
		acct.user.Bio = req.Bio
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": profileOf(acct)})
}

func (s *Server) handleStudentStats(c *gin.Context) {
	cl := currentClaims(c)
	now := time.Now()

	s.mem.mu.Lock()
	stats := models.StudentDashboardStats{}
	var markSum float64
	var markCount int
	for _, a := range s.mem.attendance {
		if a.StudentID != cl.UserID {
			continue
		}
		stats.TotalEvents++
		switch a.Status {
		case models.AttendancePresent:
			stats.PresentCount++
		case models.AttendanceAbsent:
			stats.AbsentCount++
		case models.AttendanceLate:
			stats.LateCount++
		}
		if a.MarksObtained != nil {
			markSum += *a.MarksObtained
			markCount++
		}
	}
	for _, e := range s.mem.events {
		if e.StartTime.After(now) {
			stats.UpcomingEvents++
		}
	}
	s.mem.mu.Unlock()

	if stats.TotalEvents > 0 {
		attended := stats.PresentCount + stats.LateCount
		stats.AttendancePercentage = float64(attended) / float64(stats.TotalEvents) * 100
	}
	if markCount > 0 {
		stats.AverageMarks = markSum / float64(markCount)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

func (s *Server) handleStudentAttendance(c *gin.Context) {
	cl := currentClaims(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	if size <= 0 {
		size = 10
	}

	s.mem.mu.Lock()
	records := make([]models.AttendanceRecord, 0)
	for _, a := range s.mem.attendance {
		if a.StudentID != cl.UserID {
			continue
		}
		rec := models.AttendanceRecord{
			ID:            a.ID,
			EventID:       a.EventID,
			Status:        string(a.Status),
			MarksObtained: a.MarksObtained,
			MaxMarks:      a.MaxMarks,
			Remarks:       a.Remarks,
		}
		if event, ok := s.mem.events[a.EventID]; ok {
			rec.EventTitle = event.Title
			rec.EventType = string(event.EventType)
			rec.EventDate = event.StartTime.Format(time.RFC3339)
			rec.EventLocation = event.Location
		}
		if a.MarkedAt != nil {
			rec.MarkedAt = a.MarkedAt.Format(time.RFC3339)
		}
		if marker, ok := s.mem.accounts[a.MarkedByFacultyID]; ok {
			rec.MarkedByFaculty = marker.user.Name
		}
		records = append(records, rec)
	}
	s.mem.mu.Unlock()

	sort.Slice(records, func(i, j int) bool { return records[i].MarkedAt > records[j].MarkedAt })
	start := page * size
	if start > len(records) {
		start = len(records)
	}
	end := start + size
	if end > len(records) {
		end = len(records)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"content":       records[start:end],
			"totalElements": len(records),
			"number":        page,
			"size":          size,
		},
	})
}

// handleStudentEvents groups events by lifecycle bucket relative to the
// current time and attaches the counters as a top-level summary field.
func (s *Server) handleStudentEvents(c *gin.Context) {
	now := time.Now()

	s.mem.mu.Lock()
	grouped := models.GroupedEvents{
		Ongoing:   make([]models.Event, 0),
		Scheduled: make([]models.Event, 0),
		Completed: make([]models.Event, 0),
	}
	for _, e := range s.mem.eventsSorted() {
		switch {
		case e.Status == models.EventCompleted || e.Status == models.EventCancelled || e.EndTime.Before(now):
			grouped.Completed = append(grouped.Completed, e)
		case e.StartTime.After(now):
			grouped.Scheduled = append(grouped.Scheduled, e)
		default:
			grouped.Ongoing = append(grouped.Ongoing, e)
		}
	}
	s.mem.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    grouped,
		"summary": models.EventsSummary{
			OngoingCount:   len(grouped.Ongoing),
			ScheduledCount: len(grouped.Scheduled),
			CompletedCount: len(grouped.Completed),
		},
	})
}

func (s *Server) handleStudentProgress(c *gin.Context) {
	cl := currentClaims(c)

	s.mem.mu.Lock()
	report := models.ProgressReport{
		SubjectPerformance: make(map[string]models.SubjectProgress),
	}
	for _, a := range s.mem.attendance {
		if a.StudentID != cl.UserID {
			continue
		}
		report.TotalEvents++
		attended := false
		switch a.Status {
		case models.AttendancePresent:
			report.PresentCount++
			attended = true
		case models.AttendanceLate:
			report.LateCount++
			attended = true
		}
		subject := "General"
		if event, ok := s.mem.events[a.EventID]; ok {
			subject = event.Title
		}
		sp := report.SubjectPerformance[subject]
		sp.TotalEvents++
		if attended {
			sp.Attended++
		}
		if a.MarksObtained != nil {
			sp.AverageMarks = *a.MarksObtained
		}
		sp.AttendanceRate = float64(sp.Attended) / float64(sp.TotalEvents) * 100
		report.SubjectPerformance[subject] = sp
	}
	s.mem.mu.Unlock()

	if report.TotalEvents > 0 {
		attended := report.PresentCount + report.LateCount
		report.OverallAttendance = float64(attended) / float64(report.TotalEvents) * 100
	}
	report.Grade = grade(report.OverallAttendance)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
}

func (s *Server) handleNotifications(c *gin.Context) {
	cl := currentClaims(c)

	s.mem.mu.Lock()
	items := s.mem.notificationsFor(cl.UserID)
	unread := s.mem.unreadCountFor(cl.UserID)
	s.mem.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"success": true, "data": items, "unreadCount": unread})
}

func (s *Server) handleRecentNotifications(c *gin.Context) {
	cl := currentClaims(c)

	s.mem.mu.Lock()
	items := s.mem.notificationsFor(cl.UserID)
	unread := s.mem.unreadCountFor(cl.UserID)
	s.mem.mu.Unlock()

	if len(items) > 5 {
		items = items[:5]
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items, "unreadCount": unread})
}

func (s *Server) handleMarkNotificationRead(c *gin.Context) {
	cl := currentClaims(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid notification id"})
		return
	}

	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	n, ok := s.mem.notifications[id]
	if !ok || n.StudentID != cl.UserID {
		c.JSON(http.StatusNotFound, gin.H{"message": "Notification not found"})
		return
	}
	n.IsRead = true
	c.JSON(http.StatusOK, gin.H{"success": true, "data": *n})
}

func (s *Server) handleDeleteNotification(c *gin.Context) {
	cl := currentClaims(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid notification id"})
		return
	}

	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	n, ok := s.mem.notifications[id]
	if !ok || n.StudentID != cl.UserID {
		c.JSON(http.StatusNotFound, gin.H{"message": "Notification not found"})
		return
	}
	delete(s.mem.notifications, id)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Notification deleted"})
}
