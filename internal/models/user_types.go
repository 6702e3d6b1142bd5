package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is the model for the 'users' table.
type User struct {
	ID           string `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	IsAdmin      bool   `json:"isAdmin" db:"is_admin"`

	// --- Profile Fields (Pointers = Clean JSON) ---
	FirstName *string `json:"firstName,omitempty" db:"first_name"`
	LastName  *string `json:"lastName,omitempty" db:"last_name"`
	Avatar    *string `json:"avatar,omitempty" db:"avatar"`

	// --- Billing provider references ---
	PaddleCustomerID     *string `json:"paddleCustomerId,omitempty" db:"paddle_customer_id"`
	PaddleSubscriptionID *string `json:"paddleSubscriptionId,omitempty" db:"paddle_subscription_id"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Password Helper (Standard)
type Password struct {
	Plaintext *string
	Hash      string
}

func (p *Password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Hash = string(hash)
	p.Plaintext = &plaintextPassword
	return nil
}

func (p *Password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(p.Hash), []byte(plaintextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
