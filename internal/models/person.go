package models

import "time"

// Role represents what a person may do in the system
type Role string

const (
	RoleTechnician Role = "technician"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
)

// AdminAccountID is the seed account that can never be deleted
const AdminAccountID = "admin"

// Person is an actor in the system, keyed by a lowercase login handle.
// Passwords arrive in clear from roster imports and are compared as
// stored; they are never serialized to JSON or exports.
type Person struct {
	ID          string    `json:"id" db:"id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Initials    string    `json:"initials" db:"initials"`
	Role        Role      `json:"role" db:"role"`
	Password    string    `json:"-" db:"password"`
	Email       string    `json:"email,omitempty" db:"email"`
	Phone       string    `json:"phone,omitempty" db:"phone"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
