package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/senshuken/championship-system/models"
)

// ErrAlreadyLiked — повторный лайк той же пары (user, answer).
var ErrAlreadyLiked = errors.New("answer is already liked by this user")

type LikeRepository interface {
	Add(ctx context.Context, like *models.Like) error
}

type postgresLikeRepository struct {
	db *sql.DB
}

func NewPostgresLikeRepository(db *sql.DB) LikeRepository {
	return &postgresLikeRepository{db: db}
}

// Add вставляет лайк и инкрементирует like_count в одной транзакции.
// Дубликат определяется исходом try-insert (ON CONFLICT DO NOTHING),
// а не разбором кода ошибки уникальности; инкремент выполняется одним
// UPDATE на стороне БД, конкурирующие лайки разных пользователей не
// теряют счётчик.
func (r *postgresLikeRepository) Add(ctx context.Context, like *models.Like) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin like transaction: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO likes (answer_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (answer_id, user_id) DO NOTHING
		RETURNING id, created_at`

	err = tx.QueryRowContext(ctx, insert, like.AnswerID, like.UserID).Scan(&like.ID, &like.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAlreadyLiked
		}
		return fmt.Errorf("failed to insert like: %w", err)
	}

	if err := bumpAnswerCounter(ctx, tx, "like_count", like.AnswerID); err != nil {
		return err
	}

	return tx.Commit()
}
