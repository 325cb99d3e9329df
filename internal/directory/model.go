package directory

import (
	"time"

	"github.com/google/uuid"
)

// Practitioner is stored in Postgres and cached as its JSON form.
type Practitioner struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
	License   string    `json:"license"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Input struct {
	Name      string
	Specialty string
	License   string
}
