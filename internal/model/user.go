package model

import "time"

// Role classifies a campus user.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// User represents a registered campus user.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	FirstName    string     `json:"firstName" gorm:"size:50;not null"`
	LastName     string     `json:"lastName" gorm:"size:50;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:100;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Phone        string     `json:"phone,omitempty" gorm:"size:20"`
	StudentID    *string    `json:"studentId,omitempty" gorm:"uniqueIndex;size:20"`
	Role         Role       `json:"role" gorm:"type:varchar(20);not null;default:'student';index"`
	IsActive     bool       `json:"isActive" gorm:"default:true;index"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	ProfileImage string     `json:"profileImage,omitempty" gorm:"size:500"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// OwnerSummary is the public slice of a user embedded in item responses.
// The phone number is included only on single-item detail responses.
type OwnerSummary struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	Phone     string `json:"phone,omitempty"`
}

// Summary builds the owner summary for listings.
func (u *User) Summary() OwnerSummary {
	return OwnerSummary{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
	}
}

// DetailSummary builds the owner summary for item detail, with contact phone.
func (u *User) DetailSummary() OwnerSummary {
	s := u.Summary()
	s.Phone = u.Phone
	return s
}
