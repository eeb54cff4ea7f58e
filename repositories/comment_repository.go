package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/senshuken/championship-system/models"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByAnswer(ctx context.Context, answerID, limit, offset int) ([]models.Comment, error)
	CountByAnswer(ctx context.Context, answerID int) (int, error)
}

type postgresCommentRepository struct {
	db *sql.DB
}

func NewPostgresCommentRepository(db *sql.DB) CommentRepository {
	return &postgresCommentRepository{db: db}
}

// Create вставляет комментарий и инкрементирует comment_count
// в одной транзакции.
func (r *postgresCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin comment transaction: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO comments (answer_id, user_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err = tx.QueryRowContext(ctx, insert, comment.AnswerID, comment.UserID, comment.Text).
		Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}

	if err := bumpAnswerCounter(ctx, tx, "comment_count", comment.AnswerID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *postgresCommentRepository) ListByAnswer(ctx context.Context, answerID, limit, offset int) ([]models.Comment, error) {
	query := `
		SELECT c.id, c.answer_id, c.user_id, c.text, c.created_at,
			u.id, u.display_name, u.avatar_url
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.answer_id = $1
		ORDER BY c.created_at ASC, c.id ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, answerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for answer %d: %w", answerID, err)
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		c.User = &models.User{}
		if scanErr := rows.Scan(
			&c.ID, &c.AnswerID, &c.UserID, &c.Text, &c.CreatedAt,
			&c.User.ID, &c.User.DisplayName, &c.User.AvatarURL,
		); scanErr != nil {
			return nil, scanErr
		}
		comments = append(comments, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *postgresCommentRepository) CountByAnswer(ctx context.Context, answerID int) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE answer_id = $1`, answerID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count comments for answer %d: %w", answerID, err)
	}
	return total, nil
}
