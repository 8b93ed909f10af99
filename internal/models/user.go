package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// Address is an entry of a user's address book.
type Address struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Label       string             `bson:"label" json:"label"`
	AddressLine string             `bson:"addressLine" json:"addressLine"`
	IsDefault   bool               `bson:"isDefault" json:"isDefault"`
}

type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Email            string             `bson:"email" json:"email"`
	Phone            string             `bson:"phone" json:"phone"`
	Password         string             `bson:"password" json:"-"` // bcrypt hash, never serialized
	Role             Role               `bson:"role" json:"role"`
	Addresses        []Address          `bson:"addresses" json:"addresses"`
	AddressesVersion int64              `bson:"addressesVersion" json:"-"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PublicUser is the subset of fields returned next to a freshly issued token.
type PublicUser struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Phone string             `json:"phone"`
	Role  Role               `json:"role"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Role: u.Role}
}

// Sanitized returns a copy of u without the password hash.
func (u User) Sanitized() User {
	u.Password = ""
	if u.Addresses == nil {
		u.Addresses = []Address{}
	}
	return u
}
