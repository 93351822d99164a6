package models

import "time"

// Session holds the authenticated identity and bearer token.
// A session is considered authenticated iff its token is non-empty.
type Session struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	PhoneNumber string `json:"phoneNumber"`
	Token       string `json:"token"`
}

// User is the admin-facing view of an account. IDs are always
// server-assigned; the client never invents one.
type User struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        Role       `json:"role"`
	PhoneNumber string     `json:"phoneNumber"`
	Bio         string     `json:"bio,omitempty"`
	IsActive    bool       `json:"isActive,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// LoginRequest is the credential payload for POST /auth/login.
type LoginRequest struct {
	EmailOrPhone string `json:"emailOrPhone"`
	Password     string `json:"password"`
}

// SignupRequest is the registration payload for POST /auth/signup.
// Signup never auto-logs-in.
type SignupRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
	Bio         string `json:"bio,omitempty"`
}

// CreateUserRequest is the payload for admin user creation, including
// the role-scoped POST /admin/users/{student|faculty|admin} variants.
type CreateUserRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password,omitempty"`
	Role        Role   `json:"role,omitempty"`
	PhoneNumber string `json:"phoneNumber"`
	Bio         string `json:"bio,omitempty"`
	StudentID   string `json:"studentId,omitempty"`
}

// StudentProfile is the student's own profile view.
type StudentProfile struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PhoneNumber  string     `json:"phoneNumber"`
	Bio          string     `json:"bio,omitempty"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"isActive,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	StudentID    string     `json:"studentId,omitempty"`
	Department   string     `json:"department,omitempty"`
	Course       string     `json:"course,omitempty"`
	AcademicYear string     `json:"academicYear,omitempty"`
	Semester     string     `json:"semester,omitempty"`
}

// Student is the faculty-facing roster entry.
type Student struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	StudentID    string `json:"studentId"`
	Department   string `json:"department"`
	Course       string `json:"course"`
	AcademicYear string `json:"academicYear"`
	Semester     string `json:"semester"`
	IsActive     bool   `json:"isActive,omitempty"`
}
