package models

import "time"

// User roles
const (
	RoleAdmin     = "admin"
	RoleCliente   = "cliente"
	RoleConductor = "conductor"
)

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
