package group

import "time"

// Group represents a group of users sharing expenses
type Group struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	CreatedBy   int64      `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"-"`
}

// Member represents a user's membership in a group
type Member struct {
	ID       int64     `json:"id"`
	GroupID  int64     `json:"group_id"`
	UserID   int64     `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`

	// Populated via JOIN
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}
