// Package model defines data structure.
package model

import (
	"time"

	"github.com/google/uuid"
)

// User is the full user record, including credentials. The hashed
// password never leaves the process; the json tag strips it from
// every response.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// Public returns the credential-free projection of a user.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}

// PublicUser is the profile shape safe to hand to other users.
type PublicUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Chat binds an unordered pair of two distinct users. At most one
// chat exists per pair, in either order.
type Chat struct {
	ID        uuid.UUID  `json:"id"`
	User1     PublicUser `json:"user1"`
	User2     PublicUser `json:"user2"`
	CreatedAt time.Time  `json:"created_at"`
}

// Counterpart returns the participant that is not userID.
func (c Chat) Counterpart(userID uuid.UUID) PublicUser {
	if c.User1.ID == userID {
		return c.User2
	}
	return c.User1
}

// Message belongs to exactly one chat and is immutable once created.
type Message struct {
	ID        uuid.UUID  `json:"id"`
	ChatID    uuid.UUID  `json:"chat_id"`
	Sender    PublicUser `json:"sender"`
	Type      string     `json:"type"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
}

// Product is a seller-owned catalog entry. The external asset id is
// bookkeeping for the image store and is never serialized.
type Product struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Price           float64    `json:"price"`
	ImageURL        string     `json:"imageUrl"`
	ExternalImageID string     `json:"-"`
	Seller          PublicUser `json:"seller"`
	CreatedAt       time.Time  `json:"created_at"`
}

type Grocery struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	ImageURL    string          `json:"imageUrl"`
	Rating      float64         `json:"rating"`
	Price       float64         `json:"price"`
	Discount    float64         `json:"discount"`
	Description string          `json:"description"`
	Options     []GroceryOption `json:"options"`
}

type GroceryOption struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Price float64   `json:"price"`
}
