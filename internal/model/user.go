package model

import "time"

// User represents a vault account.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;size:100;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	FullName  string    `json:"fullName" gorm:"size:255"`
	Password  string    `json:"-" gorm:"size:255;not null"` // bcrypt hash, never exposed in JSON
	IsActive  bool      `json:"isActive" gorm:"not null;index"`
	IsAdmin   bool      `json:"isAdmin" gorm:"not null;default:false;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Documents []Document `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// UserStats aggregates account counters for the admin dashboard.
type UserStats struct {
	TotalUsers    int64 `json:"totalUsers"`
	ActiveUsers   int64 `json:"activeUsers"`
	InactiveUsers int64 `json:"inactiveUsers"`
	AdminUsers    int64 `json:"adminUsers"`
}
