package stub

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pearldata/pearlctl/internal/app/models"
	"github.com/pearldata/pearlctl/internal/pkg/validation"
)

var (
	errInvalidToken = errors.New("invalid token")
	errExpiredToken = errors.New("token expired")
)

// claims is the JWT payload the stub issues and validates.
type claims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(user models.User) (string, error) {
	now := time.Now()
	c := &claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "pearld-stub",
			Subject:   fmt.Sprintf("%d", user.ID),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *Server) validateToken(tokenString string) (*claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errExpiredToken
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if c, ok := token.Claims.(*claims); ok && token.Valid {
		return c, nil
	}
	return nil, errInvalidToken
}

// requireAuth validates the bearer token and stores the claims on the
// context under "claims".
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token format"})
			return
		}
		cl, err := s.validateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}
		c.Set("claims", cl)
		c.Next()
	}
}

// requireRole gates a route group to one role. It assumes requireAuth
// ran first.
func (s *Server) requireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, ok := c.MustGet("claims").(*claims)
		if !ok || cl.Role != string(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}

func currentClaims(c *gin.Context) *claims {
	cl, _ := c.MustGet("claims").(*claims)
	return cl
}

// handleLogin authenticates against email or phone. The response body
// is the session object itself, not wrapped in the data envelope.
func (s *Server) handleLogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	s.mem.mu.Lock()
	acct := s.mem.findByEmailOrPhone(req.EmailOrPhone)
	s.mem.mu.Unlock()

	if acct == nil || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	token, err := s.issueToken(acct.user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, models.Session{
		ID:          acct.user.ID,
		Name:        acct.user.Name,
		Email:       acct.user.Email,
		Role:        acct.user.Role,
		PhoneNumber: acct.user.PhoneNumber,
		Token:       token,
	})
}

// handleSignup registers a student account. No token is issued; the
// caller logs in afterwards.
func (s *Server) handleSignup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if !validation.Password(req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Password must be at least 6 characters"})
		return
	}
	if !validation.Phone(req.PhoneNumber) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Phone number must be a valid Indian mobile number"})
		return
	}

	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	if s.mem.findByEmailOrPhone(req.Email) != nil {
		c.JSON(http.StatusConflict, gin.H{"message": "Email already registered"})
		return
	}

	now := time.Now()
	user := models.User{
		ID:          s.mem.id(),
		Name:        req.Name,
		Email:       req.Email,
		Role:        models.RoleStudent,
		PhoneNumber: req.PhoneNumber,
		Bio:         req.Bio,
		IsActive:    true,
		CreatedAt:   &now,
	}
	s.mem.accounts[user.ID] = &account{user: user, passwordHash: hashPassword(req.Password)}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Account created successfully",
		"data":    user,
	})
}
