package models

import "time"

// Notification is a server-backed message addressed to a student.
// IsRead is its only mutable field; records are deletable.
type Notification struct {
	ID              int64     `json:"id"`
	StudentID       int64     `json:"studentId"`
	FromUserID      int64     `json:"fromUserId"`
	FromUserName    string    `json:"fromUserName"`
	FromUserRole    Role      `json:"fromUserRole"`
	Title           string    `json:"title"`
	Message         string    `json:"message"`
	Type            string    `json:"type"`
	IsRead          bool      `json:"isRead"`
	RelatedEntityID int64     `json:"relatedEntityId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// LibraryBook is a client-only collection in this build; there is no
// backing endpoint yet.
type LibraryBook struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Author  string     `json:"author"`
	ISBN    string     `json:"isbn"`
	DueDate string     `json:"dueDate"`
	Status  BookStatus `json:"status"`
	Fine    float64    `json:"fine,omitempty"`
}
