package model

import "time"

type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	OAuthSubject string    `json:"-"`
	Created      time.Time `json:"created_at"`
}

// UserSearchResult is the public view of a user returned by searches.
type UserSearchResult struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

func (u *User) SearchResult() UserSearchResult {
	return UserSearchResult{ID: u.ID, FullName: u.FullName}
}
