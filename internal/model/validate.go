package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Form validation gates user input before it reaches the manager. Checks
// run in a fixed order and stop at the first failure; the returned error
// is the human-readable reason.

// Validate checks the household form. Member failures are prefixed with
// the member's 1-based position.
func (f *HouseholdForm) Validate() error {
	if strings.TrimSpace(f.HeadName) == "" {
		return errors.New("head name is required")
	}
	if err := validateIDNumber(f.IDNumber); err != nil {
		return err
	}
	if strings.TrimSpace(f.Address) == "" {
		return errors.New("address is required")
	}
	if strings.TrimSpace(f.Phone) != "" && !ValidPhone(f.Phone) {
		return errors.New("phone number is invalid")
	}
	if len(f.Members) == 0 {
		return errors.New("at least one member is required")
	}
	for i := range f.Members {
		if err := f.Members[i].Validate(); err != nil {
			return fmt.Errorf("member %d: %w", i+1, err)
		}
	}
	return nil
}

// Validate checks a single member form.
func (f *MemberForm) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.New("name is required")
	}
	if err := validateIDNumber(f.IDNumber); err != nil {
		return err
	}
	if f.BirthYear < 1900 || f.BirthYear > 2024 {
		return errors.New("birth year is out of range")
	}
	if f.BirthMonth < 1 || f.BirthMonth > 12 {
		return errors.New("birth month must be between 1 and 12")
	}
	if f.BirthDay < 1 || f.BirthDay > 31 {
		return errors.New("birth day must be between 1 and 31")
	}
	if _, err := birthDate(f.BirthYear, f.BirthMonth, f.BirthDay); err != nil {
		return err
	}
	return nil
}

func validateIDNumber(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("ID number is required")
	}
	if len(id) != 18 {
		return errors.New("ID number must be 18 characters")
	}
	if !ValidIDNumber(id) {
		return errors.New("ID number format is invalid")
	}
	return nil
}

// ValidIDNumber reports whether id is a well-formed 18-character national
// ID: 17 ASCII digits followed by a digit or X/x.
func ValidIDNumber(id string) bool {
	if len(id) != 18 {
		return false
	}
	for i := 0; i < 17; i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	last := id[17]
	return (last >= '0' && last <= '9') || last == 'X' || last == 'x'
}

// ValidPhone reports whether phone is 11 ASCII digits starting with 1.
func ValidPhone(phone string) bool {
	if len(phone) != 11 || phone[0] != '1' {
		return false
	}
	for i := 0; i < len(phone); i++ {
		if phone[i] < '0' || phone[i] > '9' {
			return false
		}
	}
	return true
}

// birthDate builds a date from a year/month/day triple, rejecting
// combinations that only exist through normalization (Feb 30 and the
// like).
func birthDate(year, month, day int) (time.Time, error) {
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, errors.New("birth date is not a valid calendar date")
	}
	return d, nil
}
