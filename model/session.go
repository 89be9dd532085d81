package model

import "time"

type Session struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires_at"`
	User    *User     `json:"user"`
}
