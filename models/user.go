package models

import "time"

type User struct {
	ID        int64     `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Document  string    `json:"document" db:"document"` // CPF, digits only
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name"`
	Document string `json:"document"`
}
