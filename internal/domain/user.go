package domain

import (
	"strings"
	"time"
)

// Identifying field names, shared by criteria parsing, validation messages and SQL.
const (
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldEmail       = "email"
	FieldGovIDNumber = "gov_id_number"
	FieldGovIDType   = "gov_id_type"
)

// IdentityFields lists the five fields that together identify a user record.
var IdentityFields = []string{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldGovIDNumber,
	FieldGovIDType,
}

// User is a stored person record.
type User struct {
	ID          string
	FirstName   string
	LastName    string
	Email       string
	GovIDNumber string
	GovIDType   GovIDType
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SameIdentity reports whether both users share all five identifying fields,
// ignoring case.
func (u User) SameIdentity(other User) bool {
	return strings.EqualFold(u.FirstName, other.FirstName) &&
		strings.EqualFold(u.LastName, other.LastName) &&
		strings.EqualFold(u.Email, other.Email) &&
		strings.EqualFold(u.GovIDNumber, other.GovIDNumber) &&
		u.GovIDType == other.GovIDType
}
