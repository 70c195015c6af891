package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserClaims are the JWT claims issued on signup and login
type UserClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// User is a portal account stored in MongoDB
type User struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password"`
	UserType     string    `json:"userType" bson:"userType"`
	Avatar       string    `json:"avatar,omitempty" bson:"avatar,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// SignupRequest is the request body for account creation
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
	Avatar   string `json:"avatar"`
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

// AuthResponse is returned after a successful signup or login
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
