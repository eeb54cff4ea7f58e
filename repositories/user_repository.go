package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/senshuken/championship-system/models"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserUIDConflict = errors.New("external uid is already registered")
)

// UserProfileUpdate — частичное обновление профиля. DisplayName и Bio
// нельзя обнулить, AvatarURL и TwitterURL — можно.
type UserProfileUpdate struct {
	DisplayName models.Patch[string]
	Bio         models.Patch[string]
	AvatarURL   models.Patch[string]
	TwitterURL  models.Patch[string]
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByExternalUID(ctx context.Context, uid string) (*models.User, error)
	UpdateProfile(ctx context.Context, id int, update UserProfileUpdate) (*models.User, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, external_uid, display_name, avatar_url, bio, twitter_url, created_at, updated_at`

func scanUser(rowScanner interface {
	Scan(dest ...interface{}) error
}, u *models.User) error {
	return rowScanner.Scan(
		&u.ID, &u.ExternalUID, &u.DisplayName, &u.AvatarURL,
		&u.Bio, &u.TwitterURL, &u.CreatedAt, &u.UpdatedAt,
	)
}

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (external_uid, display_name)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, user.ExternalUID, user.DisplayName).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrUserUIDConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u := &models.User{}
	err := scanUser(r.db.QueryRowContext(ctx, query, id), u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return u, nil
}

func (r *postgresUserRepository) GetByExternalUID(ctx context.Context, uid string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE external_uid = $1`

	u := &models.User{}
	err := scanUser(r.db.QueryRowContext(ctx, query, uid), u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by external uid: %w", err)
	}
	return u, nil
}

func (r *postgresUserRepository) UpdateProfile(ctx context.Context, id int, update UserProfileUpdate) (*models.User, error) {
	setClauses := "updated_at = NOW()"
	args := []interface{}{}
	argID := 1

	appendField := func(column string, p models.Patch[string], nullable bool) {
		if !p.Set {
			return
		}
		if p.Valid {
			setClauses += fmt.Sprintf(", %s = $%d", column, argID)
			args = append(args, p.Value)
			argID++
		} else if nullable {
			setClauses += fmt.Sprintf(", %s = NULL", column)
		}
	}

	appendField("display_name", update.DisplayName, false)
	appendField("bio", update.Bio, false)
	appendField("avatar_url", update.AvatarURL, true)
	appendField("twitter_url", update.TwitterURL, true)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, setClauses, argID)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}
	if err := checkAffectedRows(result, ErrUserNotFound); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}
