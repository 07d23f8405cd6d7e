package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/user-records/internal/domain"
)

// InMemoryUserRepository keeps users in process memory. It is selected when no
// Postgres DSN is configured and backs the service and handler tests.
type InMemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
	now   func() time.Time
}

// NewInMemoryUserRepository returns an empty store.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users: make(map[string]domain.User),
		now:   time.Now,
	}
}

// Create inserts the user unless another record shares its identity.
func (r *InMemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.SameIdentity(*user) {
			return ErrDuplicateUser
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := r.now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

// FindBy returns matches ordered by creation time.
func (r *InMemoryUserRepository) FindBy(_ context.Context, criteria domain.UserCriteria) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.matching(criteria), nil
}

// DeleteAll removes every match and returns how many were removed.
func (r *InMemoryUserRepository) DeleteAll(_ context.Context, criteria domain.UserCriteria) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matches := r.matching(criteria)
	for _, u := range matches {
		delete(r.users, u.ID)
	}
	return int64(len(matches)), nil
}

// Delete removes a single user by id.
func (r *InMemoryUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

// ExistsIdentity reports a case-insensitive match on all identifying fields.
func (r *InMemoryUserRepository) ExistsIdentity(_ context.Context, user domain.User) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, existing := range r.users {
		if existing.SameIdentity(user) {
			return true, nil
		}
	}
	return false, nil
}

// Count returns the number of stored users.
func (r *InMemoryUserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// matching must be called with the lock held.
func (r *InMemoryUserRepository) matching(criteria domain.UserCriteria) []domain.User {
	result := []domain.User{}
	for _, u := range r.users {
		if criteria.Matches(u) {
			result = append(result, u)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}
