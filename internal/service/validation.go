package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/spec-kit/user-records/internal/domain"
)

// Validation messages reported per field.
const (
	MsgBlank       = "can't be blank"
	MsgInvalid     = "is invalid"
	MsgTaken       = "has already been taken"
	MsgNotIncluded = "is not included in the list"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// FieldErrors maps a field name to its failure messages.
type FieldErrors map[string][]string

// Add appends a message for field.
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Details converts the errors into the shape carried by DomainError.
func (f FieldErrors) Details() map[string]any {
	details := make(map[string]any, len(f))
	for field, messages := range f {
		details[field] = messages
	}
	return details
}

// IdentityLookup answers whether a record with the same identity is stored.
type IdentityLookup interface {
	ExistsIdentity(ctx context.Context, user domain.User) (bool, error)
}

// UserValidator checks a candidate user before it is persisted.
type UserValidator struct {
	lookup IdentityLookup
}

// NewUserValidator builds a validator backed by the given lookup.
func NewUserValidator(lookup IdentityLookup) *UserValidator {
	return &UserValidator{lookup: lookup}
}

// Validate collects every failing rule. The error is non-nil only when the
// uniqueness lookup itself fails.
func (v *UserValidator) Validate(ctx context.Context, user domain.User) (FieldErrors, error) {
	errs := FieldErrors{}

	if isBlank(user.FirstName) {
		errs.Add(domain.FieldFirstName, MsgBlank)
	}
	if isBlank(user.LastName) {
		errs.Add(domain.FieldLastName, MsgBlank)
	}
	if !emailPattern.MatchString(user.Email) {
		errs.Add(domain.FieldEmail, MsgInvalid)
	}
	if isBlank(user.GovIDNumber) {
		errs.Add(domain.FieldGovIDNumber, MsgBlank)
	}
	if !user.GovIDType.Valid() {
		errs.Add(domain.FieldGovIDType, MsgNotIncluded)
	}

	// uniqueness is only checked for an otherwise valid identity
	if len(errs) > 0 || v.lookup == nil {
		return errs, nil
	}

	exists, err := v.lookup.ExistsIdentity(ctx, user)
	if err != nil {
		return nil, err
	}
	if exists {
		errs.Add(domain.FieldGovIDNumber, MsgTaken)
	}
	return errs, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
