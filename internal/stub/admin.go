package stub

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pearldata/pearlctl/internal/app/models"
)

// handleListUsers returns the paginated user list in the Spring-style
// page shape: the array lives under data.content.
func (s *Server) handleListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	if size <= 0 {
		size = 20
	}

	s.mem.mu.Lock()
	all := s.mem.usersSorted()
	s.mem.mu.Unlock()

	start := page * size
	if start > len(all) {
		start = len(all)
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"content":       all[start:end],
			"totalElements": len(all),
			"totalPages":    (len(all) + size - 1) / size,
			"number":        page,
			"size":          size,
		},
	})
}

func (s *Server) handleGetUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user id"})
		return
	}

	s.mem.mu.Lock()
	acct, ok := s.mem.accounts[id]
	s.mem.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": acct.user})
}

func (s *Server) handleSearchUsers(c *gin.Context) {
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))

	s.mem.mu.Lock()
	all := s.mem.usersSorted()
	s.mem.mu.Unlock()

	matched := make([]models.User, 0)
	for _, u := range all {
		if q == "" ||
			strings.Contains(strings.ToLower(u.Name), q) ||
			strings.Contains(strings.ToLower(u.Email), q) {
			matched = append(matched, u)
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": matched})
}

func (s *Server) handleCreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown role"})
		return
	}
	user, status, msg := s.createAccount(req, req.Role)
	if msg != "" {
		c.JSON(status, gin.H{"message": msg})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": user})
}

// handleCreateUserWithRole serves the role-scoped creation endpoints.
// Its response nests the record under "user" rather than "data", which
// the client normalizes.
func (s *Server) handleCreateUserWithRole(c *gin.Context) {
	role := models.Role(strings.ToUpper(c.Param("role")))
	if !role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown role"})
		return
	}
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	user, status, msg := s.createAccount(req, role)
	if msg != "" {
		c.JSON(status, gin.H{"message": msg})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "user": user})
}

func (s *Server) createAccount(req models.CreateUserRequest, role models.Role) (models.User, int, string) {
	if req.Password == "" {
		return models.User{}, http.StatusBadRequest, "Password is required"
	}

	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	if s.mem.findByEmailOrPhone(req.Email) != nil {
		return models.User{}, http.StatusConflict, "Email already registered"
	}

	now := time.Now()
	user := models.User{
		ID:          s.mem.id(),
		Name:        req.Name,
		Email:       req.Email,
		Role:        role,
		PhoneNumber: req.PhoneNumber,
		Bio:         req.Bio,
		IsActive:    true,
		CreatedAt:   &now,
	}
	s.mem.accounts[user.ID] = &account{
		user:         user,
		passwordHash: hashPassword(req.Password),
		studentID:    req.StudentID,
	}
	return user, http.StatusCreated, ""
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user id"})
		return
	}
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	acct, ok := s.mem.accounts[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if req.Name != "" {
		acct.user.Name = req.Name
	}
	if req.Email != "" {
		acct.user.Email = req.Email
	}
	if req.PhoneNumber != "" {
		acct.user.PhoneNumber = req.PhoneNumber
	}
	if req.Bio != "" {
		acct.user.Bio = req.Bio
	}
	if req.Password != "" {
		acct.passwordHash = hashPassword(req.Password)
	}
	now := time.Now()
	acct.user.UpdatedAt = &now

	c.JSON(http.StatusOK, gin.H{"success": true, "data": acct.user})
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user id"})
		return
	}

	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	if _, ok := s.mem.accounts[id]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	delete(s.mem.accounts, id)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted"})
}

func (s *Server) handleAdminStats(c *gin.Context) {
	s.mem.mu.Lock()
	stats := models.AdminStats{}
	for _, a := range s.mem.accounts {
		stats.TotalUsers++
		switch a.user.Role {
		case models.RoleStudent:
			stats.TotalStudents++
		case models.RoleFaculty:
			stats.TotalFaculty++
		case models.RoleAdmin:
			stats.TotalAdmins++
		}
	}
	s.mem.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}
