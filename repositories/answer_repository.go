package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/senshuken/championship-system/models"
)

var ErrAnswerNotFound = errors.New("answer not found")

// AnswerContentUpdate — частичное обновление содержимого ответа.
// Text нельзя обнулить, ImageURL можно (tri-state).
type AnswerContentUpdate struct {
	Text     models.Patch[string]
	ImageURL models.Patch[string]
}

type ListAnswersFilter struct {
	// Newest сортирует по created_at убыв.; иначе — по счётчикам
	// (like_count, comment_count убыв.) как приближение score.
	Newest bool
	// Limit <= 0 означает "без ограничения": нужен сервису, чтобы
	// отсортировать весь набор по точному score до нарезки страницы.
	Limit  int
	Offset int
}

type AnswerRepository interface {
	Create(ctx context.Context, a *models.Answer) error
	GetByID(ctx context.Context, id int) (*models.Answer, error)
	GetWithChampionship(ctx context.Context, id int) (*models.Answer, error)
	ListByChampionship(ctx context.Context, championshipID int, filter ListAnswersFilter) ([]models.Answer, error)
	CountByChampionship(ctx context.Context, championshipID int) (int, error)
	UpdateContent(ctx context.Context, id int, update AnswerContentUpdate) (*models.Answer, error)
	SetAward(ctx context.Context, id int, awardType *models.AwardType, awardComment *string) (*models.Answer, error)
	ListByUser(ctx context.Context, userID, limit, offset int) ([]models.Answer, error)
	CountByUser(ctx context.Context, userID int) (int, error)
}

type postgresAnswerRepository struct {
	db *sql.DB
}

func NewPostgresAnswerRepository(db *sql.DB) AnswerRepository {
	return &postgresAnswerRepository{db: db}
}

const answerColumns = `
	a.id, a.championship_id, a.user_id, a.text, a.image_url,
	a.award_type, a.award_comment, a.like_count, a.comment_count,
	a.created_at, a.updated_at`

func scanAnswer(rowScanner interface {
	Scan(dest ...interface{}) error
}, a *models.Answer, withUser bool) error {
	dest := []interface{}{
		&a.ID, &a.ChampionshipID, &a.UserID, &a.Text, &a.ImageURL,
		&a.AwardType, &a.AwardComment, &a.LikeCount, &a.CommentCount,
		&a.CreatedAt, &a.UpdatedAt,
	}
	if withUser {
		a.User = &models.User{}
		dest = append(dest, &a.User.ID, &a.User.DisplayName, &a.User.AvatarURL)
	}
	return rowScanner.Scan(dest...)
}

func (r *postgresAnswerRepository) Create(ctx context.Context, a *models.Answer) error {
	query := `
		INSERT INTO answers (championship_id, user_id, text, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, like_count, comment_count, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		a.ChampionshipID, a.UserID, a.Text, a.ImageURL,
	).Scan(&a.ID, &a.LikeCount, &a.CommentCount, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create answer: %w", err)
	}
	return nil
}

func (r *postgresAnswerRepository) GetByID(ctx context.Context, id int) (*models.Answer, error) {
	query := `
		SELECT` + answerColumns + `, u.id, u.display_name, u.avatar_url
		FROM answers a
		JOIN users u ON u.id = a.user_id
		WHERE a.id = $1`

	a := &models.Answer{}
	err := scanAnswer(r.db.QueryRowContext(ctx, query, id), a, true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAnswerNotFound
		}
		return nil, fmt.Errorf("failed to get answer %d: %w", id, err)
	}
	return a, nil
}

// GetWithChampionship подгружает родительский чемпионат для проверок
// владельца и эффективного статуса.
func (r *postgresAnswerRepository) GetWithChampionship(ctx context.Context, id int) (*models.Answer, error) {
	query := `
		SELECT` + answerColumns + `,
			c.id, c.owner_id, c.title, c.description, c.status,
			c.start_at, c.end_at, c.summary_comment, c.created_at, c.updated_at
		FROM answers a
		JOIN championships c ON c.id = a.championship_id
		WHERE a.id = $1`

	a := &models.Answer{Championship: &models.Championship{}}
	c := a.Championship
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.ChampionshipID, &a.UserID, &a.Text, &a.ImageURL,
		&a.AwardType, &a.AwardComment, &a.LikeCount, &a.CommentCount,
		&a.CreatedAt, &a.UpdatedAt,
		&c.ID, &c.OwnerID, &c.Title, &c.Description, &c.Status,
		&c.StartAt, &c.EndAt, &c.SummaryComment, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAnswerNotFound
		}
		return nil, fmt.Errorf("failed to get answer %d with championship: %w", id, err)
	}
	return a, nil
}

func (r *postgresAnswerRepository) ListByChampionship(ctx context.Context, championshipID int, filter ListAnswersFilter) ([]models.Answer, error) {
	query := `
		SELECT` + answerColumns + `, u.id, u.display_name, u.avatar_url
		FROM answers a
		JOIN users u ON u.id = a.user_id
		WHERE a.championship_id = $1`

	if filter.Newest {
		query += " ORDER BY a.created_at DESC, a.id DESC"
	} else {
		query += " ORDER BY a.like_count DESC, a.comment_count DESC, a.id ASC"
	}

	args := []interface{}{championshipID}
	if filter.Limit > 0 {
		query += " LIMIT $2 OFFSET $3"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers for championship %d: %w", championshipID, err)
	}
	defer rows.Close()

	answers := make([]models.Answer, 0)
	for rows.Next() {
		var a models.Answer
		if scanErr := scanAnswer(rows, &a, true); scanErr != nil {
			return nil, scanErr
		}
		answers = append(answers, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *postgresAnswerRepository) CountByChampionship(ctx context.Context, championshipID int) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM answers WHERE championship_id = $1`, championshipID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count answers for championship %d: %w", championshipID, err)
	}
	return total, nil
}

func (r *postgresAnswerRepository) UpdateContent(ctx context.Context, id int, update AnswerContentUpdate) (*models.Answer, error) {
	setClauses := "updated_at = NOW()"
	args := []interface{}{}
	argID := 1

	if update.Text.Set {
		setClauses += fmt.Sprintf(", text = $%d", argID)
		args = append(args, update.Text.Value)
		argID++
	}
	if update.ImageURL.Set {
		if update.ImageURL.Valid {
			setClauses += fmt.Sprintf(", image_url = $%d", argID)
			args = append(args, update.ImageURL.Value)
			argID++
		} else {
			setClauses += ", image_url = NULL"
		}
	}

	query := fmt.Sprintf(`UPDATE answers SET %s WHERE id = $%d`, setClauses, argID)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update answer %d: %w", id, err)
	}
	if err := checkAffectedRows(result, ErrAnswerNotFound); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// SetAward обновляет оба поля награды вместе: сброс типа сбрасывает
// и комментарий.
func (r *postgresAnswerRepository) SetAward(ctx context.Context, id int, awardType *models.AwardType, awardComment *string) (*models.Answer, error) {
	query := `
		UPDATE answers
		SET award_type = $1, award_comment = $2, updated_at = NOW()
		WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, awardType, awardComment, id)
	if err != nil {
		return nil, fmt.Errorf("failed to set award on answer %d: %w", id, err)
	}
	if err := checkAffectedRows(result, ErrAnswerNotFound); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postgresAnswerRepository) ListByUser(ctx context.Context, userID, limit, offset int) ([]models.Answer, error) {
	query := `
		SELECT` + answerColumns + `, c.id, c.title
		FROM answers a
		JOIN championships c ON c.id = a.championship_id
		WHERE a.user_id = $1
		ORDER BY a.created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers for user %d: %w", userID, err)
	}
	defer rows.Close()

	answers := make([]models.Answer, 0)
	for rows.Next() {
		var a models.Answer
		a.Championship = &models.Championship{}
		if scanErr := rows.Scan(
			&a.ID, &a.ChampionshipID, &a.UserID, &a.Text, &a.ImageURL,
			&a.AwardType, &a.AwardComment, &a.LikeCount, &a.CommentCount,
			&a.CreatedAt, &a.UpdatedAt,
			&a.Championship.ID, &a.Championship.Title,
		); scanErr != nil {
			return nil, scanErr
		}
		answers = append(answers, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *postgresAnswerRepository) CountByUser(ctx context.Context, userID int) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM answers WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count answers for user %d: %w", userID, err)
	}
	return total, nil
}
