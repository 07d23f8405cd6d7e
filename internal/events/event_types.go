package events

import (
	"time"

	"github.com/spec-kit/user-records/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserCreated EventType = "user_created"
	EventUserDeleted EventType = "user_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// UserPayload carries the identifying fields of the affected user.
type UserPayload struct {
	FirstName   string           `json:"first_name"`
	LastName    string           `json:"last_name"`
	Email       string           `json:"email"`
	GovIDNumber string           `json:"gov_id_number"`
	GovIDType   domain.GovIDType `json:"gov_id_type"`
}

// NewUserPayload copies the identity of u.
func NewUserPayload(u domain.User) UserPayload {
	return UserPayload{
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		GovIDNumber: u.GovIDNumber,
		GovIDType:   u.GovIDType,
	}
}
