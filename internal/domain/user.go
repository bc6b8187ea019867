package domain

import "time"

// Account roles
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleParent  = "parent"
)

// User Model
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`                // Primary key
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`   // Unique login email
	FirstName    string    `json:"first_name" gorm:"size:30;not null"`  // First name
	LastName     string    `json:"last_name" gorm:"size:30;not null"`   // Last name
	Role         string    `json:"role" gorm:"size:20;default:student"` // Role: admin, teacher, student or parent
	PasswordHash string    `json:"-" gorm:"not null"`                   // Hashed password, never serialized
	IsActive     bool      `json:"is_active" gorm:"default:true"`       // Active flag
	IsStaff      bool      `json:"is_staff" gorm:"default:false"`       // Staff flag
	DateJoined   time.Time `json:"date_joined" gorm:"autoCreateTime"`   // Registration timestamp
}

// FullName returns the user's display name.
func (u User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// ValidRole reports whether role is one of the four account roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleTeacher, RoleStudent, RoleParent:
		return true
	}
	return false
}
