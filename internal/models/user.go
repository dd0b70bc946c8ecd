package models

import "time"

// Role is the privilege level of a band member account.
type Role string

const (
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
)

// UserStatus is the approval state of an account.
type UserStatus string

const (
	UserStatusPending  UserStatus = "PENDING"
	UserStatusApproved UserStatus = "APPROVED"
	UserStatusRejected UserStatus = "REJECTED"
)

// User represents a member account. Email is stored lowercase.
type User struct {
	Base
	Username     string     `gorm:"uniqueIndex;not null" json:"username"`
	Name         string     `gorm:"not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	Phone        *string    `json:"phone,omitempty"`
	Role         Role       `gorm:"not null;default:MEMBER" json:"role"`
	Status       UserStatus `gorm:"not null;default:PENDING;index" json:"status"`
	PasswordHash string     `gorm:"not null" json:"-"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
