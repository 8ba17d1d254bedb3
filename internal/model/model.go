package model

import (
	"time"

	"github.com/google/uuid"
)

// Household is the aggregate root of the registry. Members belong to
// exactly one household and have no identity outside of it.
type Household struct {
	ID               uuid.UUID
	HeadName         string
	IDNumber         string
	Address          string
	Phone            string
	Type             HouseholdType
	RegistrationDate time.Time
	Members          []Member
}

// Member is one person on a household's register.
type Member struct {
	Name         string
	IDNumber     string
	Relationship Relationship
	BirthDate    time.Time
	Gender       Gender
	Education    Education
	Occupation   string
}
