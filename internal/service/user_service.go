package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/user-records/internal/domain"
	"github.com/spec-kit/user-records/internal/events"
	"github.com/spec-kit/user-records/internal/repository"
	apperrors "github.com/spec-kit/user-records/pkg/util"
)

// Outcome messages returned to callers.
const (
	MsgNotUnique      = "More than one record found for the given criteria"
	MsgUnableToDelete = "Unable to delete, more than one record found for the given criteria"
	MsgValidation     = "validation failed"
	criteriaParamName = "user"
)

// UserService coordinates user creation, search and deletion.
type UserService struct {
	users      repository.UserRepository
	validator  *UserValidator
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// UserCreateInput describes a user creation payload.
type UserCreateInput struct {
	FirstName   string
	LastName    string
	Email       string
	GovIDNumber string
	GovIDType   domain.GovIDType
}

// SearchResult is the outcome of a criteria search. NotUnique is set when a
// unique search matched more than one record; Users is then empty.
type SearchResult struct {
	Users     []domain.User
	NotUnique bool
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      deps.UserRepo,
		validator:  NewUserValidator(deps.UserRepo),
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Create validates and persists a new user.
func (s *UserService) Create(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	user := &domain.User{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		GovIDNumber: input.GovIDNumber,
		GovIDType:   input.GovIDType,
	}

	fieldErrs, err := s.validator.Validate(ctx, *user)
	if err != nil {
		return nil, err
	}
	if len(fieldErrs) > 0 {
		return nil, apperrors.NewValidationError(MsgValidation, fieldErrs.Details())
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			taken := FieldErrors{}
			taken.Add(domain.FieldGovIDNumber, MsgTaken)
			return nil, apperrors.NewValidationError(MsgValidation, taken.Details())
		}
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventUserCreated,
		UserID:  user.ID,
		Payload: events.NewUserPayload(*user),
	})
	return user, nil
}

// Search returns every user matching criteria. With unique set, more than one
// match yields a NotUnique result instead of the records.
func (s *UserService) Search(ctx context.Context, criteria domain.UserCriteria, unique bool) (*SearchResult, error) {
	if criteria.IsEmpty() {
		return nil, apperrors.NewParameterMissing(criteriaParamName)
	}

	users, err := s.users.FindBy(ctx, criteria)
	if err != nil {
		return nil, err
	}
	if unique && len(users) > 1 {
		return &SearchResult{Users: []domain.User{}, NotUnique: true}, nil
	}
	return &SearchResult{Users: users}, nil
}

// Delete removes the single user matching criteria. Zero or several matches
// leave the store untouched.
func (s *UserService) Delete(ctx context.Context, criteria domain.UserCriteria) error {
	if criteria.IsEmpty() {
		return apperrors.NewParameterMissing(criteriaParamName)
	}

	users, err := s.users.FindBy(ctx, criteria)
	if err != nil {
		return err
	}
	if len(users) != 1 {
		return apperrors.NewAmbiguousMatch(MsgUnableToDelete)
	}

	target := users[0]
	if err := s.users.Delete(ctx, target.ID); err != nil {
		// removed by a concurrent caller: nothing matches anymore
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewAmbiguousMatch(MsgUnableToDelete)
		}
		return err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventUserDeleted,
		UserID:  target.ID,
		Payload: events.NewUserPayload(target),
	})
	return nil
}

func (s *UserService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.String("user_id", event.UserID),
			zap.Error(err))
	}
}
