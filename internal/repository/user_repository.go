package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/user-records/internal/domain"
)

//go:generate mockgen -source=user_repository.go -destination=mocks/user_repository_mock.go -package=mocks UserRepository

// ErrDuplicateUser is returned when an insert collides with the identity index.
var ErrDuplicateUser = errors.New("user with the same identity already exists")

const uniqueViolation = "23505"

// UserRepository defines persistence access for user records.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindBy(ctx context.Context, criteria domain.UserCriteria) ([]domain.User, error)
	DeleteAll(ctx context.Context, criteria domain.UserCriteria) (int64, error)
	Delete(ctx context.Context, id string) error
	ExistsIdentity(ctx context.Context, user domain.User) (bool, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (id, first_name, last_name, email, gov_id_number, gov_id_type)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at, updated_at`

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.GovIDNumber,
		user.GovIDType.Ordinal(),
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateUser
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *userRepository) FindBy(ctx context.Context, criteria domain.UserCriteria) ([]domain.User, error) {
	where, args := criteriaClause(criteria)
	query := fmt.Sprintf(`SELECT id, first_name, last_name, email, gov_id_number, gov_id_type, created_at, updated_at
             FROM users WHERE %s ORDER BY created_at, id`, where)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *userRepository) DeleteAll(ctx context.Context, criteria domain.UserCriteria) (int64, error) {
	where, args := criteriaClause(criteria)
	cmd, err := r.pool.Exec(ctx, "DELETE FROM users WHERE "+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete users: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) ExistsIdentity(ctx context.Context, user domain.User) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM users
            WHERE LOWER(first_name)=LOWER($1) AND LOWER(last_name)=LOWER($2)
              AND LOWER(email)=LOWER($3) AND LOWER(gov_id_number)=LOWER($4)
              AND gov_id_type=$5)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.GovIDNumber,
		user.GovIDType.Ordinal(),
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user identity: %w", err)
	}
	return exists, nil
}

func criteriaClause(criteria domain.UserCriteria) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	add := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	if criteria.FirstName != nil {
		add(domain.FieldFirstName, *criteria.FirstName)
	}
	if criteria.LastName != nil {
		add(domain.FieldLastName, *criteria.LastName)
	}
	if criteria.Email != nil {
		add(domain.FieldEmail, *criteria.Email)
	}
	if criteria.GovIDNumber != nil {
		add(domain.FieldGovIDNumber, *criteria.GovIDNumber)
	}
	if criteria.GovIDType != nil {
		add(domain.FieldGovIDType, criteria.GovIDType.Ordinal())
	}
	return strings.Join(clauses, " AND "), args
}

func scanUsers(rows pgx.Rows) ([]domain.User, error) {
	result := []domain.User{}
	for rows.Next() {
		var (
			user    domain.User
			ordinal int16
		)
		if err := rows.Scan(
			&user.ID,
			&user.FirstName,
			&user.LastName,
			&user.Email,
			&user.GovIDNumber,
			&ordinal,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		govIDType, err := domain.GovIDTypeFromOrdinal(ordinal)
		if err != nil {
			return nil, err
		}
		user.GovIDType = govIDType
		result = append(result, user)
	}
	return result, rows.Err()
}
