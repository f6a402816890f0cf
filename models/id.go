package models

import "github.com/google/uuid"

// NewID returns a random identifier for rows without admin-assigned ids.
func NewID() string {
	return uuid.Must(uuid.NewRandom()).String()
}
