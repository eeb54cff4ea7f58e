package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/senshuken/championship-system/models"
	"github.com/senshuken/championship-system/pagination"
	"github.com/senshuken/championship-system/repositories"
)

const (
	maxTitleLength          = 50
	maxDescriptionLength    = 500
	minDurationDays         = 1
	maxDurationDays         = 14
	maxSummaryCommentLength = 1000
)

type CreateChampionshipInput struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	DurationDays int    `json:"durationDays"`
}

type PublishResultInput struct {
	SummaryComment *string `json:"summaryComment"`
}

type ListChampionshipsInput struct {
	Params pagination.Params
	Status *models.ComputedStatus
	Sort   repositories.ChampionshipSort
}

type ChampionshipService interface {
	Create(ctx context.Context, ownerID int, input CreateChampionshipInput) (*models.Championship, error)
	GetByID(ctx context.Context, id int) (*models.Championship, error)
	List(ctx context.Context, input ListChampionshipsInput) (pagination.Result[models.Championship], error)
	ForceEnd(ctx context.Context, callerID, id int) (*models.Championship, error)
	PublishResult(ctx context.Context, callerID, id int, input PublishResultInput) (*models.Championship, error)
	ListByUser(ctx context.Context, userID int, params pagination.Params) (pagination.Result[models.Championship], error)
}

type championshipService struct {
	championshipRepo repositories.ChampionshipRepository
	userRepo         repositories.UserRepository
	now              func() time.Time
}

func NewChampionshipService(
	championshipRepo repositories.ChampionshipRepository,
	userRepo repositories.UserRepository,
) ChampionshipService {
	return &championshipService{
		championshipRepo: championshipRepo,
		userRepo:         userRepo,
		now:              time.Now,
	}
}

func validateCreateChampionshipInput(input CreateChampionshipInput) error {
	verr := newValidationError()
	if input.Title == "" {
		verr.add("title", "must not be empty")
	} else if len([]rune(input.Title)) > maxTitleLength {
		verr.add("title", fmt.Sprintf("must be at most %d characters", maxTitleLength))
	}
	if input.Description == "" {
		verr.add("description", "must not be empty")
	} else if len([]rune(input.Description)) > maxDescriptionLength {
		verr.add("description", fmt.Sprintf("must be at most %d characters", maxDescriptionLength))
	}
	if input.DurationDays < minDurationDays || input.DurationDays > maxDurationDays {
		verr.add("durationDays", fmt.Sprintf("must be between %d and %d", minDurationDays, maxDurationDays))
	}
	return verr.orNil()
}

func (s *championshipService) Create(ctx context.Context, ownerID int, input CreateChampionshipInput) (*models.Championship, error) {
	if err := validateCreateChampionshipInput(input); err != nil {
		return nil, err
	}

	now := s.now()
	championship := &models.Championship{
		OwnerID:     ownerID,
		Title:       input.Title,
		Description: input.Description,
		Status:      models.StatusRecruitingStored,
		StartAt:     now,
		EndAt:       now.Add(time.Duration(input.DurationDays) * 24 * time.Hour),
	}

	if err := s.championshipRepo.Create(ctx, championship); err != nil {
		return nil, err
	}

	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err == nil {
		championship.Owner = owner
	}
	championship.Refresh(now)
	return championship, nil
}

func (s *championshipService) GetByID(ctx context.Context, id int) (*models.Championship, error) {
	championship, err := s.championshipRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrChampionshipNotFound) {
			return nil, ErrChampionshipNotFound
		}
		return nil, err
	}
	championship.Refresh(s.now())
	return championship, nil
}

func (s *championshipService) List(ctx context.Context, input ListChampionshipsInput) (pagination.Result[models.Championship], error) {
	now := s.now()
	filter := repositories.ListChampionshipsFilter{
		Status: input.Status,
		Now:    now,
		Sort:   input.Sort,
		Limit:  input.Params.Limit,
		Offset: input.Params.Skip(),
	}

	var (
		championships []models.Championship
		total         int
	)
	// Список и счётчик читаются параллельно.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		championships, err = s.championshipRepo.List(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.championshipRepo.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return pagination.Result[models.Championship]{}, err
	}

	for i := range championships {
		championships[i].Refresh(now)
	}
	return pagination.NewResult(championships, total, input.Params), nil
}

// ForceEnd — контролируемый переход RECRUITING -> SELECTING: статус
// фиксируется, end_at переписывается на текущий момент.
func (s *championshipService) ForceEnd(ctx context.Context, callerID, id int) (*models.Championship, error) {
	championship, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if championship.OwnerID != callerID {
		return nil, ErrNotOwner
	}

	if err := s.championshipRepo.ForceEnd(ctx, id, s.now()); err != nil {
		if errors.Is(err, repositories.ErrChampionshipNotFound) {
			return nil, ErrChampionshipNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *championshipService) PublishResult(ctx context.Context, callerID, id int, input PublishResultInput) (*models.Championship, error) {
	if input.SummaryComment != nil && len([]rune(*input.SummaryComment)) > maxSummaryCommentLength {
		verr := newValidationError()
		verr.add("summaryComment", fmt.Sprintf("must be at most %d characters", maxSummaryCommentLength))
		return nil, verr
	}

	championship, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if championship.OwnerID != callerID {
		return nil, ErrNotOwner
	}
	if !models.IsSelecting(championship.Status, championship.EndAt, s.now()) {
		return nil, fmt.Errorf("%w: result can only be published while selecting", ErrInvalidStatus)
	}

	if err := s.championshipRepo.PublishResult(ctx, id, input.SummaryComment); err != nil {
		if errors.Is(err, repositories.ErrChampionshipNotFound) {
			return nil, ErrChampionshipNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *championshipService) ListByUser(ctx context.Context, userID int, params pagination.Params) (pagination.Result[models.Championship], error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return pagination.Result[models.Championship]{}, ErrUserNotFound
		}
		return pagination.Result[models.Championship]{}, err
	}

	var (
		championships []models.Championship
		total         int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		championships, err = s.championshipRepo.ListByOwner(gctx, userID, params.Limit, params.Skip())
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.championshipRepo.CountByOwner(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return pagination.Result[models.Championship]{}, err
	}

	now := s.now()
	for i := range championships {
		championships[i].Refresh(now)
	}
	return pagination.NewResult(championships, total, params), nil
}
