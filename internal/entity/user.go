package entity

import "database/sql"

// User is a local account bound to one GitHub identity. ServiceUserID
// may be absent for records created before the provider id was stored.
type User struct {
	Base
	ServiceUserID  sql.NullString `gorm:"uniqueIndex"`
	Name           string         `gorm:"unique"`
	Email          string         `gorm:"unique"`
	ProfilePicture string

	// ServiceToken holds the provider access token, always ciphertext.
	// The repository encrypts on write and decrypts on explicit read.
	ServiceToken string

	// RefreshToken mirrors the hash of the most recently issued refresh
	// token. Cleared on logout. No rotation endpoint consumes it yet.
	RefreshToken sql.NullString
}
