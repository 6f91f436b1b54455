package models

import (
	"time"
)

// ContactType classifies a contact.
type ContactType string

const (
	ContactTypeWork     ContactType = "work"
	ContactTypeHome     ContactType = "home"
	ContactTypePersonal ContactType = "personal"
)

// Valid reports whether t is one of the known contact types.
func (t ContactType) Valid() bool {
	switch t {
	case ContactTypeWork, ContactTypeHome, ContactTypePersonal:
		return true
	}
	return false
}

// Contact is an address-book entry owned by exactly one user.
type Contact struct {
	ID          string      `json:"_id" bson:"_id"`
	UserID      string      `json:"userId" bson:"userId"`
	Name        string      `json:"name" bson:"name"`
	PhoneNumber string      `json:"phoneNumber" bson:"phoneNumber"`
	Email       string      `json:"email,omitempty" bson:"email,omitempty"`
	IsFavourite bool        `json:"isFavourite" bson:"isFavourite"`
	ContactType ContactType `json:"contactType" bson:"contactType"`
	Photo       string      `json:"photo,omitempty" bson:"photo,omitempty"`
	CreatedAt   time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// ContactPatch carries the fields of a partial update. Nil means unchanged.
type ContactPatch struct {
	Name        *string
	PhoneNumber *string
	Email       *string
	IsFavourite *bool
	ContactType *ContactType
	Photo       *string
}

// Apply copies the non-nil fields of p onto c.
func (p ContactPatch) Apply(c *Contact) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.PhoneNumber != nil {
		c.PhoneNumber = *p.PhoneNumber
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.IsFavourite != nil {
		c.IsFavourite = *p.IsFavourite
	}
	if p.ContactType != nil {
		c.ContactType = *p.ContactType
	}
	if p.Photo != nil {
		c.Photo = *p.Photo
	}
}
