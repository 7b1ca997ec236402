package model

import "time"

// User represents an application user document in the `users` collection.
// PasswordHash is never serialized into API responses; handlers build a
// sanitized view from the other fields.
//
// Fields:
//  ID           – hex ObjectID of the document.
//  Name         – display name chosen at registration.
//  Email        – unique, stored lowercased.
//  PasswordHash – bcrypt hash of the password.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is the sanitized projection of a User returned by the API.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Public returns the API-safe projection of the user.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Name: u.Name}
}
