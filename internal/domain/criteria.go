package domain

// UserCriteria filters users by any subset of the identifying fields.
// A nil field is unconstrained.
type UserCriteria struct {
	FirstName   *string
	LastName    *string
	Email       *string
	GovIDNumber *string
	GovIDType   *GovIDType
}

// IsEmpty reports whether no field is constrained.
func (c UserCriteria) IsEmpty() bool {
	return c.FirstName == nil &&
		c.LastName == nil &&
		c.Email == nil &&
		c.GovIDNumber == nil &&
		c.GovIDType == nil
}

// Matches reports whether u satisfies every constrained field exactly.
func (c UserCriteria) Matches(u User) bool {
	if c.FirstName != nil && *c.FirstName != u.FirstName {
		return false
	}
	if c.LastName != nil && *c.LastName != u.LastName {
		return false
	}
	if c.Email != nil && *c.Email != u.Email {
		return false
	}
	if c.GovIDNumber != nil && *c.GovIDNumber != u.GovIDNumber {
		return false
	}
	if c.GovIDType != nil && *c.GovIDType != u.GovIDType {
		return false
	}
	return true
}
