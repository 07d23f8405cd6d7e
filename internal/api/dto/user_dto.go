package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spec-kit/user-records/internal/domain"
)

// UserRequest is the envelope shared by the /users endpoints. User is nil when
// the key is absent.
type UserRequest struct {
	User   Fields `json:"user"`
	Unique Flag   `json:"unique"`
}

// Fields holds the submitted user attributes as text. JSON numbers and
// booleans keep their literal text, null becomes blank and nested objects or
// arrays are dropped.
type Fields map[string]string

// UnmarshalJSON implements json.Unmarshaler.
func (f *Fields) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = nil
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.New("user must be an object")
	}

	fields := make(Fields, len(raw))
	for key, value := range raw {
		value = bytes.TrimSpace(value)
		switch {
		case len(value) == 0 || bytes.Equal(value, []byte("null")):
			fields[key] = ""
		case value[0] == '"':
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return fmt.Errorf("user[%s]: %w", key, err)
			}
			fields[key] = s
		case value[0] == '{' || value[0] == '[':
			continue
		default:
			fields[key] = string(value)
		}
	}
	*f = fields
	return nil
}

// Flag accepts a JSON boolean or a boolean-like string.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = false
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = Flag(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("unique must be a boolean")
	}
	return f.Set(s)
}

// Set parses a boolean-like string; blank means false.
func (f *Flag) Set(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*f = false
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("unique must be a boolean, got %q", raw)
	}
	*f = Flag(b)
	return nil
}

// Criteria builds search criteria from the permitted identifying fields.
// Unknown keys are ignored; an unknown gov_id_type is a hard error.
func (r UserRequest) Criteria() (domain.UserCriteria, error) {
	var criteria domain.UserCriteria
	for key, value := range r.User {
		v := value
		switch key {
		case domain.FieldFirstName:
			criteria.FirstName = &v
		case domain.FieldLastName:
			criteria.LastName = &v
		case domain.FieldEmail:
			criteria.Email = &v
		case domain.FieldGovIDNumber:
			criteria.GovIDNumber = &v
		case domain.FieldGovIDType:
			t, err := domain.ParseGovIDType(v)
			if err != nil {
				return domain.UserCriteria{}, err
			}
			criteria.GovIDType = &t
		}
	}
	return criteria, nil
}

// UserAttributes is a creation payload with gov_id_type already parsed.
type UserAttributes struct {
	FirstName   string
	LastName    string
	Email       string
	GovIDNumber string
	GovIDType   domain.GovIDType
}

// Attributes extracts the creation payload; missing fields stay blank so
// validation can report them.
func (r UserRequest) Attributes() (UserAttributes, error) {
	govIDType, err := domain.ParseGovIDType(r.User[domain.FieldGovIDType])
	if err != nil {
		return UserAttributes{}, err
	}
	return UserAttributes{
		FirstName:   r.User[domain.FieldFirstName],
		LastName:    r.User[domain.FieldLastName],
		Email:       r.User[domain.FieldEmail],
		GovIDNumber: r.User[domain.FieldGovIDNumber],
		GovIDType:   govIDType,
	}, nil
}

// UserResponse renders the identifying fields of a user.
type UserResponse struct {
	FirstName   string           `json:"first_name"`
	LastName    string           `json:"last_name"`
	Email       string           `json:"email"`
	GovIDNumber string           `json:"gov_id_number"`
	GovIDType   domain.GovIDType `json:"gov_id_type"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u domain.User) UserResponse {
	return UserResponse{
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		GovIDNumber: u.GovIDNumber,
		GovIDType:   u.GovIDType,
	}
}

// NewUserResponses maps a slice of domain users, never returning nil.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}
