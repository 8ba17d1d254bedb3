package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/qixiang/hukou/internal/model"
)

const (
	dateTimeLayout = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
)

// Statistics holds the aggregate counts over the whole store.
type Statistics struct {
	TotalHouseholds int
	UrbanHouseholds int
	RuralHouseholds int
	TotalMembers    int
}

// IsEmpty reports whether the store holds no households.
func (s *Store) IsEmpty() (bool, error) {
	var count int
	if err := s.conn.QueryRow("SELECT COUNT(*) FROM households").Scan(&count); err != nil {
		return false, storageErr("count households", err)
	}
	return count == 0, nil
}

// InsertHousehold persists the household row followed by its member rows
// in list order. The statements are not wrapped in a transaction; a
// member insert failing mid-way leaves the rows written so far.
func (s *Store) InsertHousehold(h *model.Household) error {
	_, err := s.conn.Exec(`
		INSERT INTO households (id, head_name, id_number, address, phone, household_type, registration_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, h.ID.String(), h.HeadName, h.IDNumber, h.Address, h.Phone,
		string(h.Type), h.RegistrationDate.Format(dateTimeLayout))
	if err != nil {
		return storageErr("insert household", err)
	}

	for i := range h.Members {
		if err := s.insertMember(h.ID, &h.Members[i]); err != nil {
			return err
		}
	}
	return nil
}

// UpdateHousehold overwrites the household row matched by identity,
// deletes all of its member rows and reinserts the new member list. A
// missing identity is a silent no-op; callers must not rely on not-found
// being signaled here.
func (s *Store) UpdateHousehold(h *model.Household) error {
	_, err := s.conn.Exec(`
		UPDATE households SET head_name = ?, id_number = ?, address = ?, phone = ?,
			household_type = ?, registration_date = ? WHERE id = ?
	`, h.HeadName, h.IDNumber, h.Address, h.Phone,
		string(h.Type), h.RegistrationDate.Format(dateTimeLayout), h.ID.String())
	if err != nil {
		return storageErr("update household", err)
	}

	if _, err := s.conn.Exec("DELETE FROM members WHERE household_id = ?", h.ID.String()); err != nil {
		return storageErr("delete members", err)
	}

	for i := range h.Members {
		if err := s.insertMember(h.ID, &h.Members[i]); err != nil {
			return err
		}
	}
	return nil
}

// DeleteHousehold removes the member rows for id and then the household
// row. Deleting a non-existent id is a no-op.
func (s *Store) DeleteHousehold(id uuid.UUID) error {
	if _, err := s.conn.Exec("DELETE FROM members WHERE household_id = ?", id.String()); err != nil {
		return storageErr("delete members", err)
	}
	if _, err := s.conn.Exec("DELETE FROM households WHERE id = ?", id.String()); err != nil {
		return storageErr("delete household", err)
	}
	return nil
}

// GetAllHouseholds returns every household ordered by registration date
// descending, members populated. One query fetches the households, one
// more per household fetches its members; fine at the volumes this
// system holds.
func (s *Store) GetAllHouseholds() ([]model.Household, error) {
	return s.queryHouseholds(`
		SELECT id, head_name, id_number, address, phone, household_type, registration_date
		FROM households ORDER BY registration_date DESC
	`)
}

// SearchHouseholds returns the households whose head name, ID number,
// address or phone contains query as a substring, same order as
// GetAllHouseholds. The empty query is the manager's business, not
// handled here.
func (s *Store) SearchHouseholds(query string) ([]model.Household, error) {
	pattern := "%" + query + "%"
	return s.queryHouseholds(`
		SELECT id, head_name, id_number, address, phone, household_type, registration_date
		FROM households
		WHERE head_name LIKE ?1 OR id_number LIKE ?1 OR address LIKE ?1 OR phone LIKE ?1
		ORDER BY registration_date DESC
	`, pattern)
}

// GetStatistics computes the aggregate counts. Rural is derived from
// total minus urban rather than counted separately.
func (s *Store) GetStatistics() (Statistics, error) {
	var stats Statistics

	err := s.conn.QueryRow("SELECT COUNT(*) FROM households").Scan(&stats.TotalHouseholds)
	if err != nil {
		return Statistics{}, storageErr("count households", err)
	}

	err = s.conn.QueryRow(
		"SELECT COUNT(*) FROM households WHERE household_type = ?",
		string(model.HouseholdUrban),
	).Scan(&stats.UrbanHouseholds)
	if err != nil {
		return Statistics{}, storageErr("count urban households", err)
	}

	err = s.conn.QueryRow("SELECT COUNT(*) FROM members").Scan(&stats.TotalMembers)
	if err != nil {
		return Statistics{}, storageErr("count members", err)
	}

	stats.RuralHouseholds = stats.TotalHouseholds - stats.UrbanHouseholds
	return stats, nil
}

func (s *Store) insertMember(householdID uuid.UUID, m *model.Member) error {
	_, err := s.conn.Exec(`
		INSERT INTO members (household_id, name, id_number, relationship, birth_date, gender, education, occupation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, householdID.String(), m.Name, m.IDNumber, string(m.Relationship),
		m.BirthDate.Format(dateLayout), string(m.Gender), string(m.Education), m.Occupation)
	if err != nil {
		return storageErr("insert member", err)
	}
	return nil
}

func (s *Store) queryHouseholds(query string, args ...any) ([]model.Household, error) {
	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, storageErr("query households", err)
	}
	defer rows.Close()

	var households []model.Household
	for rows.Next() {
		var (
			h                       model.Household
			idStr, typeStr, dateStr string
		)
		if err := rows.Scan(&idStr, &h.HeadName, &h.IDNumber, &h.Address, &h.Phone, &typeStr, &dateStr); err != nil {
			return nil, storageErr("scan household", err)
		}

		h.ID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, storageErr("decode household id", err)
		}
		h.Type = model.ParseHouseholdType(typeStr)
		h.RegistrationDate, err = parseStoredDateTime(dateStr)
		if err != nil {
			return nil, storageErr("decode registration date", err)
		}

		households = append(households, h)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate households", err)
	}

	for i := range households {
		members, err := s.membersByHousehold(households[i].ID)
		if err != nil {
			return nil, err
		}
		households[i].Members = members
	}

	return households, nil
}

func (s *Store) membersByHousehold(householdID uuid.UUID) ([]model.Member, error) {
	rows, err := s.conn.Query(`
		SELECT name, id_number, relationship, birth_date, gender, education, occupation
		FROM members WHERE household_id = ? ORDER BY id
	`, householdID.String())
	if err != nil {
		return nil, storageErr("query members", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		var (
			m                                   model.Member
			relStr, birthStr, genderStr, eduStr string
		)
		if err := rows.Scan(&m.Name, &m.IDNumber, &relStr, &birthStr, &genderStr, &eduStr, &m.Occupation); err != nil {
			return nil, storageErr("scan member", err)
		}

		m.Relationship = model.ParseRelationship(relStr)
		m.BirthDate, err = time.Parse(dateLayout, birthStr)
		if err != nil {
			return nil, storageErr("decode birth date", err)
		}
		m.Gender = model.ParseGender(genderStr)
		m.Education = model.ParseEducation(eduStr)

		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate members", err)
	}

	return members, nil
}

// parseStoredDateTime reads a stored timestamp. Legacy rows carry a bare
// date; those decode to midnight. Writes always use the full layout.
func parseStoredDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(dateTimeLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q: %w", s, err)
	}
	return t, nil
}
