package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account document in MongoDB. The password hash never leaves
// the process in any serialized form.
type User struct {
	ID           primitive.ObjectID `json:"userId"         bson:"_id,omitempty"`
	Username     string             `json:"username"       bson:"username"`
	Email        string             `json:"email"          bson:"email"`
	Phone        int64              `json:"phone"          bson:"phone"`
	PasswordHash string             `json:"-"              bson:"password"`
	Image        *string            `json:"image"          bson:"image"`
	Role         string             `json:"role,omitempty" bson:"role,omitempty"`
	CreatedOn    time.Time          `json:"createdOn"      bson:"createdOn"`
}

// Summary is the externally-safe representation of a User.
type Summary struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     int64     `json:"phone"`
	Image     *string   `json:"image"`
	Role      string    `json:"role,omitempty"`
	CreatedOn time.Time `json:"createdOn"`
}

func (u *User) Summary() Summary {
	return Summary{
		UserID:    u.ID.Hex(),
		Username:  u.Username,
		Email:     u.Email,
		Phone:     u.Phone,
		Image:     u.Image,
		Role:      u.Role,
		CreatedOn: u.CreatedOn,
	}
}

// RegisterRequest is the JSON body for POST /api/users/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    int64  `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest is the JSON body for POST /api/users/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
