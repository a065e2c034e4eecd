package models

import (
	"strings"
	"time"
)

// User is a registered account as persisted by the store.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never serialize
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	CreatedAt    time.Time `json:"created_at"`
}

// FullName is the display name derived from the stored first and last names.
func (u User) FullName() string {
	return ComposeFullName(u.FirstName, u.LastName)
}

// UserResponse is the public representation of a User.
type UserResponse struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// Response shapes u for the API.
func (u User) Response() UserResponse {
	return UserResponse{Username: u.Username, FullName: u.FullName()}
}

// ComposeFullName joins first and last with a single space and trims the result.
func ComposeFullName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// DecomposeFullName splits a display name at the first run of whitespace.
// Everything after it is the last name.
func DecomposeFullName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	idx := strings.IndexFunc(full, isSpace)
	if idx < 0 {
		return full, ""
	}
	return full[:idx], strings.TrimSpace(full[idx:])
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
