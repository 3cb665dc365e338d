package model

import (
	"github.com/google/uuid"
)

// newID fills id when the caller did not choose one. IDs are generated in Go so the
// same models migrate on postgres and on the sqlite test database.
func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
