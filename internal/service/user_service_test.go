package service

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/spec-kit/user-records/internal/domain"
	"github.com/spec-kit/user-records/internal/events"
	"github.com/spec-kit/user-records/internal/repository"
	apperrors "github.com/spec-kit/user-records/pkg/util"
)

type recordingDispatcher struct {
	mu        sync.Mutex
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.published))
	for _, e := range d.published {
		out = append(out, e.Type)
	}
	return out
}

type UserServiceSuite struct {
	suite.Suite
	repo       *repository.InMemoryUserRepository
	dispatcher *recordingDispatcher
	service    *UserService
	ctx        context.Context
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) SetupTest() {
	s.repo = repository.NewInMemoryUserRepository()
	s.dispatcher = &recordingDispatcher{}
	s.service = NewUserService(UserDependencies{UserRepo: s.repo, Dispatcher: s.dispatcher})
	s.ctx = context.Background()
}

func ptr[T any](v T) *T { return &v }

func input(first, last, email, number string, typ domain.GovIDType) UserCreateInput {
	return UserCreateInput{FirstName: first, LastName: last, Email: email, GovIDNumber: number, GovIDType: typ}
}

func (s *UserServiceSuite) mustCreate(in UserCreateInput) *domain.User {
	u, err := s.service.Create(s.ctx, in)
	s.Require().NoError(err)
	return u
}

// seed mirrors the fixture used by the request tests: a base user, a second
// user sharing its names, a third sharing its email and document, and an
// unrelated user.
func (s *UserServiceSuite) seed() (base, other *domain.User) {
	base = s.mustCreate(input("Ada", "Lovelace", "ada@example.com", "111", domain.GovIDTypeDriversLicense))
	s.mustCreate(input("Ada", "Lovelace", "ada.second@example.com", "222", domain.GovIDTypePassport))
	s.mustCreate(input("Augusta", "King", "ada@example.com", "111", domain.GovIDTypeDriversLicense))
	other = s.mustCreate(input("Grace", "Hopper", "grace@example.com", "333", domain.GovIDTypeSocialInsuranceNumber))
	return base, other
}

func (s *UserServiceSuite) assertDomainError(err error, status int, code string) *apperrors.DomainError {
	s.Require().Error(err)
	de := apperrors.ToDomainError(err)
	s.Equal(status, de.HTTPStatus)
	s.Equal(code, de.Code)
	return de
}

func (s *UserServiceSuite) TestCreate() {
	s.Run("valid user is stored and retrievable by all fields", func() {
		u := s.mustCreate(input("A", "B", "a@b.com", "123", domain.GovIDTypePassport))
		s.NotEmpty(u.ID)

		result, err := s.service.Search(s.ctx, domain.UserCriteria{
			FirstName: ptr("A"), LastName: ptr("B"), Email: ptr("a@b.com"),
			GovIDNumber: ptr("123"), GovIDType: ptr(domain.GovIDTypePassport),
		}, true)
		s.Require().NoError(err)
		s.Require().Len(result.Users, 1)
		s.Equal(u.ID, result.Users[0].ID)
	})

	s.Run("identical second insert fails uniqueness", func() {
		_, err := s.service.Create(s.ctx, input("A", "B", "a@b.com", "123", domain.GovIDTypePassport))
		de := s.assertDomainError(err, http.StatusUnprocessableEntity, apperrors.CodeValidationFailed)
		s.Equal([]string{MsgTaken}, de.Details[domain.FieldGovIDNumber])
	})

	s.Run("case-insensitive duplicate fails uniqueness", func() {
		_, err := s.service.Create(s.ctx, input("a", "b", "A@B.COM", "123", domain.GovIDTypePassport))
		s.assertDomainError(err, http.StatusUnprocessableEntity, apperrors.CodeValidationFailed)
		s.Equal(1, s.repo.Count())
	})

	s.Run("invalid fields are reported together without a write", func() {
		_, err := s.service.Create(s.ctx, input(" ", "", "nope", "", domain.GovIDTypeUnset))
		de := s.assertDomainError(err, http.StatusUnprocessableEntity, apperrors.CodeValidationFailed)
		s.Len(de.Details, 5)
		s.Equal(1, s.repo.Count())
	})

	s.Equal([]events.EventType{events.EventUserCreated}, s.dispatcher.types())
}

func (s *UserServiceSuite) TestSearchRejectsEmptyCriteria() {
	s.seed()
	for _, unique := range []bool{false, true} {
		_, err := s.service.Search(s.ctx, domain.UserCriteria{}, unique)
		de := s.assertDomainError(err, http.StatusBadRequest, apperrors.CodeMalformedRequest)
		s.Contains(de.Message, "user")
	}
}

func (s *UserServiceSuite) TestSearch() {
	base, other := s.seed()

	cases := []struct {
		name     string
		criteria domain.UserCriteria
		many     bool
	}{
		{"first name, many", domain.UserCriteria{FirstName: ptr(base.FirstName)}, true},
		{"first name, one", domain.UserCriteria{FirstName: ptr(other.FirstName)}, false},
		{"last name, many", domain.UserCriteria{LastName: ptr(base.LastName)}, true},
		{"last name, one", domain.UserCriteria{LastName: ptr(other.LastName)}, false},
		{"email, many", domain.UserCriteria{Email: ptr(base.Email)}, true},
		{"email, one", domain.UserCriteria{Email: ptr(other.Email)}, false},
		{"gov id number, many", domain.UserCriteria{GovIDNumber: ptr(base.GovIDNumber)}, true},
		{"gov id number, one", domain.UserCriteria{GovIDNumber: ptr(other.GovIDNumber)}, false},
		{"gov id type, many", domain.UserCriteria{GovIDType: ptr(base.GovIDType)}, true},
		{"gov id type, one", domain.UserCriteria{GovIDType: ptr(other.GovIDType)}, false},
		{"email and number, many", domain.UserCriteria{Email: ptr(base.Email), GovIDNumber: ptr(base.GovIDNumber)}, true},
		{"email and number, one", domain.UserCriteria{Email: ptr(other.Email), GovIDNumber: ptr(other.GovIDNumber)}, false},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			result, err := s.service.Search(s.ctx, tc.criteria, false)
			s.Require().NoError(err)
			s.False(result.NotUnique)
			for _, u := range result.Users {
				s.True(tc.criteria.Matches(u))
			}
			if tc.many {
				s.Greater(len(result.Users), 1)
				s.Less(len(result.Users), s.repo.Count())
			} else {
				s.Len(result.Users, 1)
			}

			unique, err := s.service.Search(s.ctx, tc.criteria, true)
			s.Require().NoError(err)
			if tc.many {
				s.True(unique.NotUnique)
				s.Empty(unique.Users)
			} else {
				s.False(unique.NotUnique)
				s.Equal(result.Users, unique.Users)
			}
		})
	}
}

func (s *UserServiceSuite) TestSearchCountsEveryMatch() {
	for i, number := range []string{"1", "2", "3", "4", "5"} {
		typ := domain.GovIDTypes()[i%3]
		s.mustCreate(input("Shared", "Name", "shared@example.com", number, typ))
	}
	s.mustCreate(input("Other", "Name", "other@example.com", "9", domain.GovIDTypePassport))

	result, err := s.service.Search(s.ctx, domain.UserCriteria{FirstName: ptr("Shared")}, false)
	s.Require().NoError(err)
	s.Len(result.Users, 5)
}

func (s *UserServiceSuite) TestSearchWithoutMatches() {
	s.seed()
	result, err := s.service.Search(s.ctx, domain.UserCriteria{Email: ptr("nobody@example.com")}, true)
	s.Require().NoError(err)
	s.False(result.NotUnique)
	s.Empty(result.Users)
}

func (s *UserServiceSuite) TestDelete() {
	base, other := s.seed()

	s.Run("empty criteria is malformed", func() {
		err := s.service.Delete(s.ctx, domain.UserCriteria{})
		s.assertDomainError(err, http.StatusBadRequest, apperrors.CodeMalformedRequest)
		s.Equal(4, s.repo.Count())
	})

	s.Run("several matches leave the store unchanged", func() {
		err := s.service.Delete(s.ctx, domain.UserCriteria{FirstName: ptr(base.FirstName)})
		de := s.assertDomainError(err, http.StatusUnprocessableEntity, apperrors.CodeAmbiguousMatch)
		s.Equal(MsgUnableToDelete, de.Message)
		s.Equal(4, s.repo.Count())
	})

	s.Run("no match leaves the store unchanged", func() {
		err := s.service.Delete(s.ctx, domain.UserCriteria{Email: ptr("nobody@example.com")})
		s.assertDomainError(err, http.StatusUnprocessableEntity, apperrors.CodeAmbiguousMatch)
		s.Equal(4, s.repo.Count())
	})

	s.Run("exactly one match is removed", func() {
		err := s.service.Delete(s.ctx, domain.UserCriteria{Email: ptr(other.Email), GovIDNumber: ptr(other.GovIDNumber)})
		s.Require().NoError(err)
		s.Equal(3, s.repo.Count())

		remaining, err := s.repo.FindBy(s.ctx, domain.UserCriteria{FirstName: ptr(other.FirstName)})
		s.Require().NoError(err)
		s.Empty(remaining)
	})

	types := s.dispatcher.types()
	s.Equal(events.EventUserDeleted, types[len(types)-1])
	s.Len(types, 5)
}
