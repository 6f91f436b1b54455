package models

import (
	"time"
)

// User represents a registered account.
type User struct {
	ID        string    `json:"_id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Password  string    `json:"-" bson:"password"` // Password hash is never sent to client
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Session is the single live access/refresh token pair of a user.
type Session struct {
	ID                     string    `json:"_id"`
	UserID                 string    `json:"userId"`
	AccessToken            string    `json:"accessToken"`
	RefreshToken           string    `json:"-"`
	AccessTokenValidUntil  time.Time `json:"accessTokenValidUntil"`
	RefreshTokenValidUntil time.Time `json:"refreshTokenValidUntil"`
	CreatedAt              time.Time `json:"createdAt"`
}

// AccessExpired reports whether the access token is no longer usable at now.
func (s *Session) AccessExpired(now time.Time) bool {
	return now.After(s.AccessTokenValidUntil)
}

// RefreshExpired reports whether the refresh token is no longer usable at now.
func (s *Session) RefreshExpired(now time.Time) bool {
	return now.After(s.RefreshTokenValidUntil)
}
