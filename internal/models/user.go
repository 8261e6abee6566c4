// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account that can own trade posts and send trade requests.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Bio       string         `json:"bio"`
	Avatar    string         `json:"avatar"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// UserSummary is the public profile attached to posts and requests.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Summary projects the user to its public profile. A zero user yields nil.
func (u *User) Summary() *UserSummary {
	if u == nil || u.ID == 0 {
		return nil
	}
	return &UserSummary{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}
