package models

import "github.com/google/uuid"

// assignID fills a primary key client-side so inserts behave the same on
// postgres and on the sqlite databases used in tests.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
