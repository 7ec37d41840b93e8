package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthType records how a user signs in.
type AuthType string

const (
	AuthTypeLocal  AuthType = "local"
	AuthTypeGoogle AuthType = "google"
)

// GooglePasswordPrefix marks the placeholder password stored for Google
// accounts. Such passwords are never checked.
const GooglePasswordPrefix = "google-auth-"

// User represents an account. Password holds a bcrypt hash and is never
// serialized to clients.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Bio       string             `bson:"bio" json:"bio"`
	AuthType  AuthType           `bson:"auth_type" json:"authType"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// UsesGoogle reports whether the account can only sign in through Google.
func (u *User) UsesGoogle() bool {
	return u.AuthType == AuthTypeGoogle && strings.HasPrefix(u.Password, GooglePasswordPrefix)
}

// Public returns the profile fields other users may see.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Bio:   u.Bio,
	}
}

// PublicUser is the non-sensitive view of a User.
type PublicUser struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
	Bio   string             `bson:"bio" json:"bio"`
}

// UserSummary is the shape returned by register and login.
type UserSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// NormalizeEmail trims and lower-cases an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
