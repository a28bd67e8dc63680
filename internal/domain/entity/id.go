package entity

import "github.com/google/uuid"

// NewID returns a time-ordered UUIDv7 so primary keys insert in index order.
func NewID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}

	return id
}
