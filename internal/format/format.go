// Package format renders record fields for display and export.
package format

import "time"

// MaskIDNumber hides the middle of an 18-character ID number, keeping
// the region prefix and the last four characters. Anything that is not
// 18 characters is returned untouched.
func MaskIDNumber(id string) string {
	if len(id) != 18 {
		return id
	}
	return id[0:6] + "****" + id[14:18]
}

// MaskPhone hides the middle of an 11-digit phone number. Anything that
// is not 11 characters is returned untouched.
func MaskPhone(phone string) string {
	if len(phone) != 11 {
		return phone
	}
	return phone[0:3] + "****" + phone[7:11]
}

// TruncateAddress shortens an address to max runes with an ellipsis.
func TruncateAddress(address string, max int) string {
	runes := []rune(address)
	if len(runes) <= max {
		return address
	}
	return string(runes[:max]) + "..."
}

// Age returns the whole years between birth and now, counting a year
// only once its birthday has passed.
func Age(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}
