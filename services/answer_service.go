package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/senshuken/championship-system/models"
	"github.com/senshuken/championship-system/pagination"
	"github.com/senshuken/championship-system/repositories"
	"github.com/senshuken/championship-system/storage"
)

const (
	maxAnswerTextLength   = 300
	maxAwardCommentLength = 300

	uploadURLTTL = 15 * time.Minute
)

type AnswerSort string

const (
	AnswerSortScore  AnswerSort = "score"
	AnswerSortNewest AnswerSort = "newest"
)

type CreateAnswerInput struct {
	Text     string  `json:"text"`
	ImageURL *string `json:"imageUrl"`
}

type UpdateAnswerInput struct {
	Text     models.Patch[string] `json:"text"`
	ImageURL models.Patch[string] `json:"imageUrl"`
}

type SetAwardInput struct {
	AwardType    *models.AwardType `json:"awardType"`
	AwardComment *string           `json:"awardComment"`
}

type UploadURLInput struct {
	ContentType string `json:"contentType"`
	FileName    string `json:"fileName"`
}

type AnswerService interface {
	Create(ctx context.Context, caller *models.User, championshipID int, input CreateAnswerInput) (*models.Answer, error)
	List(ctx context.Context, championshipID int, params pagination.Params, sortBy AnswerSort) (pagination.Result[models.Answer], error)
	Update(ctx context.Context, callerID, answerID int, input UpdateAnswerInput) (*models.Answer, error)
	SetAward(ctx context.Context, callerID, answerID int, input SetAwardInput) (*models.Answer, error)
	GenerateUploadURL(ctx context.Context, callerID int, input UploadURLInput) (*storage.UploadURLResult, error)
	ListByUser(ctx context.Context, userID int, params pagination.Params) (pagination.Result[models.Answer], error)
}

type answerService struct {
	answerRepo       repositories.AnswerRepository
	championshipRepo repositories.ChampionshipRepository
	userRepo         repositories.UserRepository
	signer           storage.UploadSigner
	now              func() time.Time
}

func NewAnswerService(
	answerRepo repositories.AnswerRepository,
	championshipRepo repositories.ChampionshipRepository,
	userRepo repositories.UserRepository,
	signer storage.UploadSigner,
) AnswerService {
	return &answerService{
		answerRepo:       answerRepo,
		championshipRepo: championshipRepo,
		userRepo:         userRepo,
		signer:           signer,
		now:              time.Now,
	}
}

func (s *answerService) Create(ctx context.Context, caller *models.User, championshipID int, input CreateAnswerInput) (*models.Answer, error) {
	verr := newValidationError()
	if input.Text == "" {
		verr.add("text", "must not be empty")
	} else if len([]rune(input.Text)) > maxAnswerTextLength {
		verr.add("text", fmt.Sprintf("must be at most %d characters", maxAnswerTextLength))
	}
	if input.ImageURL != nil {
		validateURLField(verr, "imageUrl", *input.ImageURL)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	championship, err := s.championshipRepo.GetByID(ctx, championshipID)
	if err != nil {
		if errors.Is(err, repositories.ErrChampionshipNotFound) {
			return nil, ErrChampionshipNotFound
		}
		return nil, err
	}
	if !models.IsRecruiting(championship.Status, championship.EndAt, s.now()) {
		return nil, fmt.Errorf("%w: answers can only be posted while recruiting", ErrInvalidStatus)
	}

	answer := &models.Answer{
		ChampionshipID: championshipID,
		UserID:         caller.ID,
		Text:           input.Text,
		ImageURL:       input.ImageURL,
	}
	if err := s.answerRepo.Create(ctx, answer); err != nil {
		return nil, err
	}
	answer.User = caller
	answer.RefreshScore()
	return answer, nil
}

// List сортирует по score во всём наборе ответов чемпионата до нарезки
// страницы: score не хранится в БД, а сортировка только внутри уже
// вырезанной страницы ломала бы глобальный порядок на её границах.
func (s *answerService) List(ctx context.Context, championshipID int, params pagination.Params, sortBy AnswerSort) (pagination.Result[models.Answer], error) {
	if _, err := s.championshipRepo.GetByID(ctx, championshipID); err != nil {
		if errors.Is(err, repositories.ErrChampionshipNotFound) {
			return pagination.Result[models.Answer]{}, ErrChampionshipNotFound
		}
		return pagination.Result[models.Answer]{}, err
	}

	if sortBy == AnswerSortNewest {
		var (
			answers []models.Answer
			total   int
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			answers, err = s.answerRepo.ListByChampionship(gctx, championshipID, repositories.ListAnswersFilter{
				Newest: true,
				Limit:  params.Limit,
				Offset: params.Skip(),
			})
			return err
		})
		g.Go(func() error {
			var err error
			total, err = s.answerRepo.CountByChampionship(gctx, championshipID)
			return err
		})
		if err := g.Wait(); err != nil {
			return pagination.Result[models.Answer]{}, err
		}
		for i := range answers {
			answers[i].RefreshScore()
		}
		return pagination.NewResult(answers, total, params), nil
	}

	answers, err := s.answerRepo.ListByChampionship(ctx, championshipID, repositories.ListAnswersFilter{})
	if err != nil {
		return pagination.Result[models.Answer]{}, err
	}
	for i := range answers {
		answers[i].RefreshScore()
	}
	sort.SliceStable(answers, func(i, j int) bool {
		if answers[i].ScoreValue != answers[j].ScoreValue {
			return answers[i].ScoreValue > answers[j].ScoreValue
		}
		if answers[i].LikeCount != answers[j].LikeCount {
			return answers[i].LikeCount > answers[j].LikeCount
		}
		return answers[i].CommentCount > answers[j].CommentCount
	})

	total := len(answers)
	start := params.Skip()
	if start > total {
		start = total
	}
	end := start + params.Limit
	if end > total {
		end = total
	}
	return pagination.NewResult(answers[start:end], total, params), nil
}

func (s *answerService) Update(ctx context.Context, callerID, answerID int, input UpdateAnswerInput) (*models.Answer, error) {
	verr := newValidationError()
	if input.Text.Set {
		if !input.Text.Valid || input.Text.Value == "" {
			verr.add("text", "must not be empty")
		} else if len([]rune(input.Text.Value)) > maxAnswerTextLength {
			verr.add("text", fmt.Sprintf("must be at most %d characters", maxAnswerTextLength))
		}
	}
	if input.ImageURL.Set && input.ImageURL.Valid {
		validateURLField(verr, "imageUrl", input.ImageURL.Value)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	answer, err := s.answerRepo.GetWithChampionship(ctx, answerID)
	if err != nil {
		if errors.Is(err, repositories.ErrAnswerNotFound) {
			return nil, ErrAnswerNotFound
		}
		return nil, err
	}
	if answer.UserID != callerID {
		return nil, ErrNotAuthor
	}
	if !models.IsRecruiting(answer.Championship.Status, answer.Championship.EndAt, s.now()) {
		return nil, fmt.Errorf("%w: answers can only be edited while recruiting", ErrInvalidStatus)
	}

	updated, err := s.answerRepo.UpdateContent(ctx, answerID, repositories.AnswerContentUpdate{
		Text:     input.Text,
		ImageURL: input.ImageURL,
	})
	if err != nil {
		return nil, err
	}
	updated.RefreshScore()
	return updated, nil
}

// SetAward выставляет или снимает награду; снятие награды очищает
// и комментарий к ней.
func (s *answerService) SetAward(ctx context.Context, callerID, answerID int, input SetAwardInput) (*models.Answer, error) {
	verr := newValidationError()
	if input.AwardType != nil && !input.AwardType.Valid() {
		verr.add("awardType", "must be one of grand_prize, prize, special_prize")
	}
	if input.AwardComment != nil && len([]rune(*input.AwardComment)) > maxAwardCommentLength {
		verr.add("awardComment", fmt.Sprintf("must be at most %d characters", maxAwardCommentLength))
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	answer, err := s.answerRepo.GetWithChampionship(ctx, answerID)
	if err != nil {
		if errors.Is(err, repositories.ErrAnswerNotFound) {
			return nil, ErrAnswerNotFound
		}
		return nil, err
	}
	if answer.Championship.OwnerID != callerID {
		return nil, ErrNotOwner
	}
	if !models.IsSelecting(answer.Championship.Status, answer.Championship.EndAt, s.now()) {
		return nil, fmt.Errorf("%w: awards can only be set while selecting", ErrInvalidStatus)
	}

	awardComment := input.AwardComment
	if input.AwardType == nil {
		awardComment = nil
	}
	updated, err := s.answerRepo.SetAward(ctx, answerID, input.AwardType, awardComment)
	if err != nil {
		return nil, err
	}
	updated.RefreshScore()
	return updated, nil
}

func (s *answerService) GenerateUploadURL(ctx context.Context, callerID int, input UploadURLInput) (*storage.UploadURLResult, error) {
	verr := newValidationError()
	if !strings.HasPrefix(input.ContentType, "image/") {
		verr.add("contentType", "must be an image type (image/*)")
	}
	if input.FileName == "" {
		verr.add("fileName", "must not be empty")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("uploads/%d/%s_%s", callerID, uuid.New().String(), input.FileName)
	return s.signer.PresignUpload(ctx, key, input.ContentType, uploadURLTTL)
}

func (s *answerService) ListByUser(ctx context.Context, userID int, params pagination.Params) (pagination.Result[models.Answer], error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return pagination.Result[models.Answer]{}, ErrUserNotFound
		}
		return pagination.Result[models.Answer]{}, err
	}

	var (
		answers []models.Answer
		total   int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		answers, err = s.answerRepo.ListByUser(gctx, userID, params.Limit, params.Skip())
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.answerRepo.CountByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return pagination.Result[models.Answer]{}, err
	}

	for i := range answers {
		answers[i].RefreshScore()
	}
	return pagination.NewResult(answers, total, params), nil
}
