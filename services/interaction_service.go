package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/senshuken/championship-system/models"
	"github.com/senshuken/championship-system/pagination"
	"github.com/senshuken/championship-system/repositories"
)

const maxCommentTextLength = 200

type CreateCommentInput struct {
	Text string `json:"text"`
}

type InteractionService interface {
	LikeAnswer(ctx context.Context, callerID, answerID int) (*models.Like, error)
	ListComments(ctx context.Context, answerID int, params pagination.Params) (pagination.Result[models.Comment], error)
	CreateComment(ctx context.Context, caller *models.User, answerID int, input CreateCommentInput) (*models.Comment, error)
}

type interactionService struct {
	answerRepo  repositories.AnswerRepository
	likeRepo    repositories.LikeRepository
	commentRepo repositories.CommentRepository
}

func NewInteractionService(
	answerRepo repositories.AnswerRepository,
	likeRepo repositories.LikeRepository,
	commentRepo repositories.CommentRepository,
) InteractionService {
	return &interactionService{
		answerRepo:  answerRepo,
		likeRepo:    likeRepo,
		commentRepo: commentRepo,
	}
}

func (s *interactionService) checkAnswerExists(ctx context.Context, answerID int) error {
	if _, err := s.answerRepo.GetByID(ctx, answerID); err != nil {
		if errors.Is(err, repositories.ErrAnswerNotFound) {
			return ErrAnswerNotFound
		}
		return err
	}
	return nil
}

func (s *interactionService) LikeAnswer(ctx context.Context, callerID, answerID int) (*models.Like, error) {
	if err := s.checkAnswerExists(ctx, answerID); err != nil {
		return nil, err
	}

	like := &models.Like{AnswerID: answerID, UserID: callerID}
	if err := s.likeRepo.Add(ctx, like); err != nil {
		switch {
		case errors.Is(err, repositories.ErrAlreadyLiked):
			return nil, ErrAlreadyLiked
		case errors.Is(err, repositories.ErrAnswerNotFound):
			return nil, ErrAnswerNotFound
		}
		return nil, err
	}
	return like, nil
}

func (s *interactionService) ListComments(ctx context.Context, answerID int, params pagination.Params) (pagination.Result[models.Comment], error) {
	if err := s.checkAnswerExists(ctx, answerID); err != nil {
		return pagination.Result[models.Comment]{}, err
	}

	var (
		comments []models.Comment
		total    int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		comments, err = s.commentRepo.ListByAnswer(gctx, answerID, params.Limit, params.Skip())
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.commentRepo.CountByAnswer(gctx, answerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return pagination.Result[models.Comment]{}, err
	}
	return pagination.NewResult(comments, total, params), nil
}

func (s *interactionService) CreateComment(ctx context.Context, caller *models.User, answerID int, input CreateCommentInput) (*models.Comment, error) {
	verr := newValidationError()
	if input.Text == "" {
		verr.add("text", "must not be empty")
	} else if len([]rune(input.Text)) > maxCommentTextLength {
		verr.add("text", fmt.Sprintf("must be at most %d characters", maxCommentTextLength))
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	if err := s.checkAnswerExists(ctx, answerID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		AnswerID: answerID,
		UserID:   caller.ID,
		Text:     input.Text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		if errors.Is(err, repositories.ErrAnswerNotFound) {
			return nil, ErrAnswerNotFound
		}
		return nil, err
	}
	comment.User = caller
	return comment, nil
}
