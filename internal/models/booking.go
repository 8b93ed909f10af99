package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Booking struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID        *primitive.ObjectID `bson:"user,omitempty" json:"user"`
	CustomerName  string              `bson:"customerName" json:"customerName"`
	CustomerEmail string              `bson:"customerEmail" json:"customerEmail"`
	CustomerPhone string              `bson:"customerPhone" json:"customerPhone"`
	ServiceType   ServiceType         `bson:"serviceType" json:"serviceType"`
	ServiceOption string              `bson:"serviceOption" json:"serviceOption"`
	Date          time.Time           `bson:"date" json:"date"`
	Time          string              `bson:"time" json:"time"`
	Address       string              `bson:"address" json:"address"`
	Notes         string              `bson:"notes" json:"notes"`
	TotalPrice    float64             `bson:"totalPrice" json:"totalPrice"`
	Status        BookingStatus       `bson:"status" json:"status"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// OwnedBy reports whether the booking belongs to the given user. Guest
// bookings belong to nobody.
func (b *Booking) OwnedBy(userID primitive.ObjectID) bool {
	return b.UserID != nil && *b.UserID == userID
}

// OwnerSummary is the owner's name and email joined into booking reads.
type OwnerSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// BookingView is a booking with its owner joined in, if it has one.
type BookingView struct {
	Booking
	Owner *OwnerSummary `json:"owner,omitempty"`
}

// BookingPatch holds the fields a PATCH may touch. Nil means untouched.
type BookingPatch struct {
	ServiceOption *string
	Date          *time.Time
	Time          *string
	Address       *string
	Notes         *string
	CustomerName  *string
	CustomerEmail *string
	CustomerPhone *string
	TotalPrice    *float64
	Status        *BookingStatus
}

// Empty reports whether the patch changes nothing.
func (p BookingPatch) Empty() bool {
	return p.ServiceOption == nil && p.Date == nil && p.Time == nil && p.Address == nil &&
		p.Notes == nil && p.CustomerName == nil && p.CustomerEmail == nil &&
		p.CustomerPhone == nil && p.TotalPrice == nil && p.Status == nil
}

// TouchesAdminFields reports whether the patch edits fields only an admin may change.
func (p BookingPatch) TouchesAdminFields() bool {
	return p.CustomerName != nil || p.CustomerEmail != nil || p.CustomerPhone != nil || p.TotalPrice != nil
}

// Apply writes the patch onto b.
func (p BookingPatch) Apply(b *Booking) {
	if p.ServiceOption != nil {
		b.ServiceOption = *p.ServiceOption
	}
	if p.Date != nil {
		b.Date = *p.Date
	}
	if p.Time != nil {
		b.Time = *p.Time
	}
	if p.Address != nil {
		b.Address = *p.Address
	}
	if p.Notes != nil {
		b.Notes = *p.Notes
	}
	if p.CustomerName != nil {
		b.CustomerName = *p.CustomerName
	}
	if p.CustomerEmail != nil {
		b.CustomerEmail = *p.CustomerEmail
	}
	if p.CustomerPhone != nil {
		b.CustomerPhone = *p.CustomerPhone
	}
	if p.TotalPrice != nil {
		b.TotalPrice = *p.TotalPrice
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
}
