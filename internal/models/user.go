package models

import (
	"gorm.io/gorm"
)

// Role distinguishes admins (task authoring, metadata, deployment) from
// country-level stakeholders (step execution, comments, sign-off).
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleStakeholder Role = "stakeholder"
)

// User represents a user in the system
type User struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"unique;not null"`
	Password string `json:"-" gorm:"not null"`
	Role     Role   `json:"role" gorm:"not null;default:'stakeholder'"`
	Country  string `json:"country"`
	gorm.Model
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}
