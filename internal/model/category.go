package model

import "time"

// Category labels transactions. Names are unique per (user, type): a user may
// have both an income and an expense category called "Other".
type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}
