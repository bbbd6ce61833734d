package models

import "time"

// UserStatus controls whether a user receives reminders.
type UserStatus string

const (
	UserStatusActive UserStatus = "active"
	UserStatusPaused UserStatus = "paused"
)

// User is one reminder recipient. Created on first interaction, never
// deleted; opting out only flips the status to paused.
type User struct {
	ID          int64      `json:"id" example:"123456789"`
	ChatID      int64      `json:"chat_id" example:"-1001234567890"`
	Username    string     `json:"username,omitempty" example:"johndoe"`
	FirstName   string     `json:"first_name,omitempty" example:"John"`
	LastName    string     `json:"last_name,omitempty" example:"Doe"`
	Premium     bool       `json:"premium"`
	IntervalMin int        `json:"interval_min" example:"60"`
	Status      UserStatus `json:"status" enums:"active,paused"`

	// Streak bookkeeping, owned by the scoring engine.
	Streak        int       `json:"streak"`
	LastSuccessAt time.Time `json:"last_success_at,omitempty"`

	// Scheduling bookkeeping, owned by the scheduler.
	LastIssuedAt time.Time `json:"last_issued_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Interval returns the user's configured reminder cadence.
func (u *User) Interval() time.Duration {
	return time.Duration(u.IntervalMin) * time.Minute
}

// Active reports whether the user should be scheduled.
func (u *User) Active() bool {
	return u.Status == UserStatusActive
}

// UserResponse is the public projection of a user.
type UserResponse struct {
	ID          int64      `json:"id" example:"123456789"`
	ChatID      int64      `json:"chat_id" example:"-1001234567890"`
	Username    string     `json:"username,omitempty" example:"johndoe"`
	FirstName   string     `json:"first_name,omitempty" example:"John"`
	Premium     bool       `json:"premium"`
	IntervalMin int        `json:"interval_min" example:"60"`
	Status      UserStatus `json:"status" enums:"active,paused"`
	Streak      int        `json:"streak"`
	CreatedAt   time.Time  `json:"created_at"`
}
