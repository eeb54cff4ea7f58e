package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/senshuken/championship-system/models"
	"github.com/senshuken/championship-system/pagination"
)

func newInteractionFixture(t *testing.T) (*interactionService, *fakeAnswerRepo, *fakeUserRepo, *models.Answer) {
	t.Helper()
	championshipRepo := newFakeChampionshipRepo()
	answerRepo := newFakeAnswerRepo(championshipRepo)
	userRepo := newFakeUserRepo()
	svc := &interactionService{
		answerRepo:  answerRepo,
		likeRepo:    newFakeLikeRepo(answerRepo),
		commentRepo: newFakeCommentRepo(answerRepo),
	}

	owner := userRepo.addUser("alice")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := &models.Championship{
		OwnerID: owner.ID,
		Status:  models.StatusRecruitingStored,
		StartAt: now,
		EndAt:   now.Add(24 * time.Hour),
	}
	if err := championshipRepo.Create(context.Background(), c); err != nil {
		t.Fatalf("create championship: %v", err)
	}
	answer := &models.Answer{ChampionshipID: c.ID, UserID: owner.ID, Text: "entry"}
	if err := answerRepo.Create(context.Background(), answer); err != nil {
		t.Fatalf("create answer: %v", err)
	}
	return svc, answerRepo, userRepo, answer
}

func TestLikeAnswer(t *testing.T) {
	svc, answerRepo, userRepo, answer := newInteractionFixture(t)
	liker := userRepo.addUser("bob")

	like, err := svc.LikeAnswer(context.Background(), liker.ID, answer.ID)
	if err != nil {
		t.Fatalf("LikeAnswer: %v", err)
	}
	if like.AnswerID != answer.ID || like.UserID != liker.ID {
		t.Errorf("like = %+v", like)
	}

	stored, err := answerRepo.GetByID(context.Background(), answer.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.LikeCount != 1 {
		t.Errorf("likeCount = %d, want 1", stored.LikeCount)
	}

	// Повторный лайк того же пользователя — конфликт.
	if _, err := svc.LikeAnswer(context.Background(), liker.ID, answer.ID); !errors.Is(err, ErrAlreadyLiked) {
		t.Errorf("second like: got %v, want ErrAlreadyLiked", err)
	}
	stored, _ = answerRepo.GetByID(context.Background(), answer.ID)
	if stored.LikeCount != 1 {
		t.Errorf("likeCount after duplicate = %d, want 1", stored.LikeCount)
	}

	// Другой пользователь лайкает независимо.
	other := userRepo.addUser("carol")
	if _, err := svc.LikeAnswer(context.Background(), other.ID, answer.ID); err != nil {
		t.Fatalf("like by another user: %v", err)
	}
	stored, _ = answerRepo.GetByID(context.Background(), answer.ID)
	if stored.LikeCount != 2 {
		t.Errorf("likeCount = %d, want 2", stored.LikeCount)
	}

	if _, err := svc.LikeAnswer(context.Background(), liker.ID, 999); !errors.Is(err, ErrAnswerNotFound) {
		t.Errorf("like of missing answer: got %v, want ErrAnswerNotFound", err)
	}
}

func TestCreateComment(t *testing.T) {
	svc, answerRepo, userRepo, answer := newInteractionFixture(t)
	commenter := userRepo.addUser("bob")

	comment, err := svc.CreateComment(context.Background(), commenter, answer.ID, CreateCommentInput{Text: "nice one"})
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	if comment.User == nil || comment.User.ID != commenter.ID {
		t.Error("commenter should be attached")
	}

	stored, _ := answerRepo.GetByID(context.Background(), answer.ID)
	if stored.CommentCount != 1 {
		t.Errorf("commentCount = %d, want 1", stored.CommentCount)
	}

	var verr *ValidationError
	if _, err := svc.CreateComment(context.Background(), commenter, answer.ID, CreateCommentInput{}); !errors.As(err, &verr) {
		t.Errorf("empty comment: got %v, want ValidationError", err)
	}
	if _, err := svc.CreateComment(context.Background(), commenter, answer.ID, CreateCommentInput{
		Text: strings.Repeat("x", 201),
	}); !errors.As(err, &verr) {
		t.Errorf("long comment: got %v, want ValidationError", err)
	}
}

func TestListComments(t *testing.T) {
	svc, _, userRepo, answer := newInteractionFixture(t)
	commenter := userRepo.addUser("bob")

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateComment(context.Background(), commenter, answer.ID, CreateCommentInput{Text: "c"}); err != nil {
			t.Fatalf("CreateComment: %v", err)
		}
	}

	result, err := svc.ListComments(context.Background(), answer.ID, pagination.Params{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(result.Items) != 2 {
		t.Errorf("page has %d items, want 2", len(result.Items))
	}
	if result.Pagination.Total != 3 || result.Pagination.TotalPages != 2 {
		t.Errorf("pagination = %+v, want total=3 totalPages=2", result.Pagination)
	}

	if _, err := svc.ListComments(context.Background(), 999, pagination.Params{Page: 1, Limit: 20}); !errors.Is(err, ErrAnswerNotFound) {
		t.Errorf("comments of missing answer: got %v, want ErrAnswerNotFound", err)
	}
}
