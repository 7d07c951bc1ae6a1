package models

import (
	"time"
)

// StoredPosting is a JobRecord as persisted by the record store.
type StoredPosting struct {
	ID        string    `json:"id"`
	Record    JobRecord `json:"record"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
