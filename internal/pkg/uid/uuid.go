package uid

import "github.com/google/uuid"

// UUID hands out correlation ids and challenge ids. Version 7 keeps them
// roughly time ordered in logs and indexes.
type UUID struct {
	newV7 func() (uuid.UUID, error)
}

func NewUUID() *UUID {
	return &UUID{newV7: uuid.NewV7}
}

// Generate falls back to a random v4 id when the v7 source fails, which only
// happens when the system entropy pool does.
func (u *UUID) Generate() string {
	if id, err := u.newV7(); err == nil {
		return id.String()
	}
	return uuid.New().String()
}
