package models

import (
	"time"
)

// Access levels, mirrored by the roles table. Route guards compare
// against these values.
const (
	LevelUser    = 1
	LevelCotista = 2
	LevelManager = 3
	LevelAdmin   = 5
	LevelOwner   = 10
)

// Role represents an access role with a numeric level
type Role struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Level     int       `db:"level"`
	CreatedAt time.Time `db:"created_at"`
}

// User represents an application user with credentials and a role
type User struct {
	ID           int64     `db:"id"`
	CPF          string    `db:"cpf"`
	Name         string    `db:"name"`
	Surname      string    `db:"surname"`
	Email        string    `db:"email"`
	Phone        string    `db:"phone"`
	PasswordHash string    `db:"password_hash"`
	RoleID       int64     `db:"role_id"`
	Active       bool      `db:"active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`

	// Joined fields, populated by queries that include the role and
	// the cotista account when present.
	RoleName  string `db:"-"`
	RoleLevel int    `db:"-"`
	CotistaID *int64 `db:"-"`
}
