package model

import (
	"time"

	"github.com/google/uuid"
)

// HouseholdForm is the editable shape of a household before it is
// persisted. Forms carry raw user input; Validate gates it before a
// Household is built from it.
type HouseholdForm struct {
	HeadName string        `yaml:"head_name"`
	IDNumber string        `yaml:"id_number"`
	Address  string        `yaml:"address"`
	Phone    string        `yaml:"phone"`
	Type     HouseholdType `yaml:"household_type"`
	Members  []MemberForm  `yaml:"members"`

	// registered carries the original registration timestamp through an
	// edit; it stays zero for a new record.
	registered time.Time
}

// MemberForm is the editable shape of a member. The birth date is kept as
// separate year/month/day fields so invalid combinations can be reported
// before a date is constructed.
type MemberForm struct {
	Name         string       `yaml:"name"`
	IDNumber     string       `yaml:"id_number"`
	Relationship Relationship `yaml:"relationship"`
	BirthYear    int          `yaml:"birth_year"`
	BirthMonth   int          `yaml:"birth_month"`
	BirthDay     int          `yaml:"birth_day"`
	Gender       Gender       `yaml:"gender"`
	Education    Education    `yaml:"education"`
	Occupation   string       `yaml:"occupation"`
}

// FormFromHousehold builds an editable form from an existing household.
func FormFromHousehold(h *Household) HouseholdForm {
	members := make([]MemberForm, len(h.Members))
	for i, m := range h.Members {
		members[i] = MemberForm{
			Name:         m.Name,
			IDNumber:     m.IDNumber,
			Relationship: m.Relationship,
			BirthYear:    m.BirthDate.Year(),
			BirthMonth:   int(m.BirthDate.Month()),
			BirthDay:     m.BirthDate.Day(),
			Gender:       m.Gender,
			Education:    m.Education,
			Occupation:   m.Occupation,
		}
	}
	return HouseholdForm{
		HeadName:   h.HeadName,
		IDNumber:   h.IDNumber,
		Address:    h.Address,
		Phone:      h.Phone,
		Type:       h.Type,
		Members:    members,
		registered: h.RegistrationDate,
	}
}

// Normalize canonicalizes the enum fields through their decode
// fallbacks. Forms built from user-authored files may carry arbitrary
// strings in enum positions; normalizing keeps the persisted values on
// the canonical literals.
func (f *HouseholdForm) Normalize() {
	f.Type = ParseHouseholdType(string(f.Type))
	for i := range f.Members {
		m := &f.Members[i]
		m.Relationship = ParseRelationship(string(m.Relationship))
		m.Gender = ParseGender(string(m.Gender))
		m.Education = ParseEducation(string(m.Education))
	}
}

// ToHousehold converts a validated form into a household. A zero id
// assigns a fresh identity for a new record; a non-zero id preserves the
// existing identity for an update. The registration timestamp is assigned
// once at creation and carried unchanged through edits of a form built
// with FormFromHousehold. The caller is expected to have run Validate
// first; an invalid member birth date still returns an error rather than
// a corrupt date.
func (f *HouseholdForm) ToHousehold(id uuid.UUID) (*Household, error) {
	members := make([]Member, 0, len(f.Members))
	for i := range f.Members {
		m, err := f.Members[i].toMember()
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	if id == uuid.Nil {
		id = uuid.New()
	}
	registered := f.registered
	if registered.IsZero() {
		registered = time.Now().Truncate(time.Second)
	}

	return &Household{
		ID:               id,
		HeadName:         f.HeadName,
		IDNumber:         f.IDNumber,
		Address:          f.Address,
		Phone:            f.Phone,
		Type:             f.Type,
		RegistrationDate: registered,
		Members:          members,
	}, nil
}

func (f *MemberForm) toMember() (Member, error) {
	birth, err := birthDate(f.BirthYear, f.BirthMonth, f.BirthDay)
	if err != nil {
		return Member{}, err
	}
	return Member{
		Name:         f.Name,
		IDNumber:     f.IDNumber,
		Relationship: f.Relationship,
		BirthDate:    birth,
		Gender:       f.Gender,
		Education:    f.Education,
		Occupation:   f.Occupation,
	}, nil
}
