package domain

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User owns tracking sessions. Password holds the bcrypt hash and is never serialized.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	DisplayName string         `gorm:"column:display_name;not null" json:"display_name"`
	Email       string         `gorm:"column:email;unique;not null" json:"email"`
	Password    string         `gorm:"column:password;not null" json:"-"`
	Role        string         `gorm:"column:role;default:member" json:"role"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
