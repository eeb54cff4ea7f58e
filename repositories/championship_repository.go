package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/senshuken/championship-system/models"
)

var ErrChampionshipNotFound = errors.New("championship not found")

type ChampionshipSort string

const (
	ChampionshipSortNewest  ChampionshipSort = "newest"
	ChampionshipSortPopular ChampionshipSort = "popular"
)

// ListChampionshipsFilter фильтрует по эффективному статусу: условие
// переводится в SQL над сохранённым статусом и end_at относительно Now,
// чтобы выдача совпадала со статусом, который видят клиенты.
type ListChampionshipsFilter struct {
	Status *models.ComputedStatus
	Now    time.Time
	Sort   ChampionshipSort
	Limit  int
	Offset int
}

type ChampionshipRepository interface {
	Create(ctx context.Context, c *models.Championship) error
	GetByID(ctx context.Context, id int) (*models.Championship, error)
	List(ctx context.Context, filter ListChampionshipsFilter) ([]models.Championship, error)
	Count(ctx context.Context, filter ListChampionshipsFilter) (int, error)
	ForceEnd(ctx context.Context, id int, endAt time.Time) error
	PublishResult(ctx context.Context, id int, summaryComment *string) error
	ListByOwner(ctx context.Context, ownerID, limit, offset int) ([]models.Championship, error)
	CountByOwner(ctx context.Context, ownerID int) (int, error)
}

type postgresChampionshipRepository struct {
	db *sql.DB
}

func NewPostgresChampionshipRepository(db *sql.DB) ChampionshipRepository {
	return &postgresChampionshipRepository{db: db}
}

func (r *postgresChampionshipRepository) Create(ctx context.Context, c *models.Championship) error {
	query := `
		INSERT INTO championships (owner_id, title, description, status, start_at, end_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		c.OwnerID, c.Title, c.Description, c.Status, c.StartAt, c.EndAt,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create championship: %w", err)
	}
	return nil
}

func (r *postgresChampionshipRepository) GetByID(ctx context.Context, id int) (*models.Championship, error) {
	query := `
		SELECT
			c.id, c.owner_id, c.title, c.description, c.status,
			c.start_at, c.end_at, c.summary_comment, c.created_at, c.updated_at,
			u.id, u.display_name, u.avatar_url,
			(SELECT COUNT(*) FROM answers a WHERE a.championship_id = c.id),
			(SELECT COALESCE(SUM(a.like_count), 0) FROM answers a WHERE a.championship_id = c.id)
		FROM championships c
		JOIN users u ON u.id = c.owner_id
		WHERE c.id = $1`

	c := &models.Championship{Owner: &models.User{}}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.OwnerID, &c.Title, &c.Description, &c.Status,
		&c.StartAt, &c.EndAt, &c.SummaryComment, &c.CreatedAt, &c.UpdatedAt,
		&c.Owner.ID, &c.Owner.DisplayName, &c.Owner.AvatarURL,
		&c.AnswerCount, &c.TotalLikes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChampionshipNotFound
		}
		return nil, fmt.Errorf("failed to get championship %d: %w", id, err)
	}
	return c, nil
}

// statusCondition переводит эффективный статус в условие над
// сохранённым статусом и end_at (см. models.ComputeStatus).
func statusCondition(status models.ComputedStatus, nowArg int) string {
	switch status {
	case models.StatusRecruiting:
		return fmt.Sprintf("(c.status = 'RECRUITING' AND c.end_at > $%d)", nowArg)
	case models.StatusSelecting:
		return fmt.Sprintf("(c.status = 'SELECTING' OR (c.status = 'RECRUITING' AND c.end_at <= $%d))", nowArg)
	default:
		return "(c.status = 'ANNOUNCED')"
	}
}

func (r *postgresChampionshipRepository) List(ctx context.Context, filter ListChampionshipsFilter) ([]models.Championship, error) {
	query := `
		SELECT
			c.id, c.owner_id, c.title, c.description, c.status,
			c.start_at, c.end_at, c.summary_comment, c.created_at, c.updated_at,
			u.id, u.display_name, u.avatar_url,
			(SELECT COUNT(*) FROM answers a WHERE a.championship_id = c.id) AS answer_count
		FROM championships c
		JOIN users u ON u.id = c.owner_id
		WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		args = append(args, filter.Now)
		query += " AND " + statusCondition(*filter.Status, argID)
		argID++
	}

	if filter.Sort == ChampionshipSortPopular {
		query += " ORDER BY answer_count DESC, c.created_at DESC"
	} else {
		query += " ORDER BY c.created_at DESC"
	}

	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list championships: %w", err)
	}
	defer rows.Close()

	championships := make([]models.Championship, 0)
	for rows.Next() {
		var c models.Championship
		c.Owner = &models.User{}
		if scanErr := rows.Scan(
			&c.ID, &c.OwnerID, &c.Title, &c.Description, &c.Status,
			&c.StartAt, &c.EndAt, &c.SummaryComment, &c.CreatedAt, &c.UpdatedAt,
			&c.Owner.ID, &c.Owner.DisplayName, &c.Owner.AvatarURL,
			&c.AnswerCount,
		); scanErr != nil {
			return nil, scanErr
		}
		championships = append(championships, c)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return championships, nil
}

func (r *postgresChampionshipRepository) Count(ctx context.Context, filter ListChampionshipsFilter) (int, error) {
	query := `SELECT COUNT(*) FROM championships c WHERE 1=1`
	args := []interface{}{}

	if filter.Status != nil {
		args = append(args, filter.Now)
		query += " AND " + statusCondition(*filter.Status, 1)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count championships: %w", err)
	}
	return total, nil
}

// ForceEnd переводит чемпионат в SELECTING и обрезает end_at.
func (r *postgresChampionshipRepository) ForceEnd(ctx context.Context, id int, endAt time.Time) error {
	query := `
		UPDATE championships
		SET status = $1, end_at = $2, updated_at = NOW()
		WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, models.StatusSelectingStored, endAt, id)
	if err != nil {
		return fmt.Errorf("failed to force-end championship %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrChampionshipNotFound)
}

func (r *postgresChampionshipRepository) PublishResult(ctx context.Context, id int, summaryComment *string) error {
	query := `
		UPDATE championships
		SET status = $1, summary_comment = $2, updated_at = NOW()
		WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, models.StatusAnnouncedStored, summaryComment, id)
	if err != nil {
		return fmt.Errorf("failed to publish result for championship %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrChampionshipNotFound)
}

func (r *postgresChampionshipRepository) ListByOwner(ctx context.Context, ownerID, limit, offset int) ([]models.Championship, error) {
	query := `
		SELECT
			c.id, c.owner_id, c.title, c.description, c.status,
			c.start_at, c.end_at, c.summary_comment, c.created_at, c.updated_at,
			(SELECT COUNT(*) FROM answers a WHERE a.championship_id = c.id)
		FROM championships c
		WHERE c.owner_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list championships for owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	championships := make([]models.Championship, 0)
	for rows.Next() {
		var c models.Championship
		if scanErr := rows.Scan(
			&c.ID, &c.OwnerID, &c.Title, &c.Description, &c.Status,
			&c.StartAt, &c.EndAt, &c.SummaryComment, &c.CreatedAt, &c.UpdatedAt,
			&c.AnswerCount,
		); scanErr != nil {
			return nil, scanErr
		}
		championships = append(championships, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return championships, nil
}

func (r *postgresChampionshipRepository) CountByOwner(ctx context.Context, ownerID int) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM championships WHERE owner_id = $1`, ownerID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count championships for owner %d: %w", ownerID, err)
	}
	return total, nil
}
