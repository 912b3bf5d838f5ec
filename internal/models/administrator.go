package models

import "time"

// Administrator is the single account allowed to author projects
type Administrator struct {
	ID           int64     `json:"id"`
	Username     string    `json:"usuario"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	CreatedAt    time.Time `json:"criadoEm"`
}

// LoginRequest represents the login form or JSON body
type LoginRequest struct {
	Username string `json:"usuario" form:"usuario"`
	Password string `json:"senha" form:"senha"`
}
