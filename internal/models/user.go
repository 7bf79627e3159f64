package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Name         string             `bson:"name" json:"name" validate:"required,min=3"`
	Email        string             `bson:"email" json:"email" validate:"required,email"`
	PasswordHash string             `bson:"password" json:"-" validate:"required"`
	Role         Role               `bson:"role" json:"role" validate:"oneof=client seller admin"`
	Phone        string             `bson:"phone" json:"phone" validate:"required,phone"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

type Role string

const (
	RoleClient Role = "client"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// Actor is the identity a request acts as, resolved from a bearer token
// against the live user record.
type Actor struct {
	ID   primitive.ObjectID
	Role Role
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// UserSummary is the expanded form of a user reference.
type UserSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Phone string             `json:"phone"`
	Role  Role               `json:"role"`
	Token string             `json:"token"`
}
