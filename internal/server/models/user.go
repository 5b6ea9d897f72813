// Package models contains the persistence-level entities of the blog server.
package models

import "time"

// User is a registered account. The Login field is the caller-chosen
// identifier used for authentication; UserName is the display name copied
// onto posts and comments at write time.
type User struct {
	ID           string
	Login        string
	PasswordHash string
	UserName     string
	CreatedAt    time.Time
}
