package services

import (
	"context"
	"sort"
	"time"

	"github.com/senshuken/championship-system/models"
	"github.com/senshuken/championship-system/repositories"
	"github.com/senshuken/championship-system/storage"
)

// Фейковые репозитории в памяти для юнит-тестов сервисов.

type fakeUserRepo struct {
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User), nextID: 1}
}

func (r *fakeUserRepo) addUser(displayName string) *models.User {
	u := &models.User{ID: r.nextID, ExternalUID: displayName + "-uid", DisplayName: displayName}
	r.users[u.ID] = u
	r.nextID++
	return u
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.ExternalUID == user.ExternalUID {
			return repositories.ErrUserUIDConflict
		}
	}
	user.ID = r.nextID
	r.users[user.ID] = user
	r.nextID++
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByExternalUID(_ context.Context, uid string) (*models.User, error) {
	for _, u := range r.users {
		if u.ExternalUID == uid {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id int, update repositories.UserProfileUpdate) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	if update.DisplayName.Set && update.DisplayName.Valid {
		u.DisplayName = update.DisplayName.Value
	}
	if update.Bio.Set && update.Bio.Valid {
		v := update.Bio.Value
		u.Bio = &v
	}
	if update.AvatarURL.Set {
		if update.AvatarURL.Valid {
			v := update.AvatarURL.Value
			u.AvatarURL = &v
		} else {
			u.AvatarURL = nil
		}
	}
	if update.TwitterURL.Set {
		if update.TwitterURL.Valid {
			v := update.TwitterURL.Value
			u.TwitterURL = &v
		} else {
			u.TwitterURL = nil
		}
	}
	return u, nil
}

type fakeChampionshipRepo struct {
	championships map[int]*models.Championship
	nextID        int
}

func newFakeChampionshipRepo() *fakeChampionshipRepo {
	return &fakeChampionshipRepo{championships: make(map[int]*models.Championship), nextID: 1}
}

func (r *fakeChampionshipRepo) Create(_ context.Context, c *models.Championship) error {
	c.ID = r.nextID
	c.CreatedAt = c.StartAt
	c.UpdatedAt = c.StartAt
	stored := *c
	r.championships[c.ID] = &stored
	r.nextID++
	return nil
}

func (r *fakeChampionshipRepo) GetByID(_ context.Context, id int) (*models.Championship, error) {
	c, ok := r.championships[id]
	if !ok {
		return nil, repositories.ErrChampionshipNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeChampionshipRepo) matches(c *models.Championship, filter repositories.ListChampionshipsFilter) bool {
	if filter.Status == nil {
		return true
	}
	return models.ComputeStatus(c.Status, c.EndAt, filter.Now) == *filter.Status
}

func (r *fakeChampionshipRepo) List(_ context.Context, filter repositories.ListChampionshipsFilter) ([]models.Championship, error) {
	var out []models.Championship
	for _, c := range r.championships {
		if r.matches(c, filter) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	start := filter.Offset
	if start > len(out) {
		start = len(out)
	}
	end := start + filter.Limit
	if filter.Limit <= 0 || end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (r *fakeChampionshipRepo) Count(_ context.Context, filter repositories.ListChampionshipsFilter) (int, error) {
	total := 0
	for _, c := range r.championships {
		if r.matches(c, filter) {
			total++
		}
	}
	return total, nil
}

func (r *fakeChampionshipRepo) ForceEnd(_ context.Context, id int, endAt time.Time) error {
	c, ok := r.championships[id]
	if !ok {
		return repositories.ErrChampionshipNotFound
	}
	c.Status = models.StatusSelectingStored
	c.EndAt = endAt
	return nil
}

func (r *fakeChampionshipRepo) PublishResult(_ context.Context, id int, summaryComment *string) error {
	c, ok := r.championships[id]
	if !ok {
		return repositories.ErrChampionshipNotFound
	}
	c.Status = models.StatusAnnouncedStored
	c.SummaryComment = summaryComment
	return nil
}

func (r *fakeChampionshipRepo) ListByOwner(_ context.Context, ownerID, limit, offset int) ([]models.Championship, error) {
	var out []models.Championship
	for _, c := range r.championships {
		if c.OwnerID == ownerID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset > len(out) {
		offset = len(out)
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (r *fakeChampionshipRepo) CountByOwner(_ context.Context, ownerID int) (int, error) {
	total := 0
	for _, c := range r.championships {
		if c.OwnerID == ownerID {
			total++
		}
	}
	return total, nil
}

type fakeAnswerRepo struct {
	answers       map[int]*models.Answer
	nextID        int
	championships *fakeChampionshipRepo
}

func newFakeAnswerRepo(championships *fakeChampionshipRepo) *fakeAnswerRepo {
	return &fakeAnswerRepo{
		answers:       make(map[int]*models.Answer),
		nextID:        1,
		championships: championships,
	}
}

func (r *fakeAnswerRepo) Create(_ context.Context, a *models.Answer) error {
	a.ID = r.nextID
	stored := *a
	r.answers[a.ID] = &stored
	r.nextID++
	return nil
}

func (r *fakeAnswerRepo) GetByID(_ context.Context, id int) (*models.Answer, error) {
	a, ok := r.answers[id]
	if !ok {
		return nil, repositories.ErrAnswerNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAnswerRepo) GetWithChampionship(ctx context.Context, id int) (*models.Answer, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := r.championships.GetByID(ctx, a.ChampionshipID)
	if err != nil {
		return nil, err
	}
	a.Championship = c
	return a, nil
}

func (r *fakeAnswerRepo) ListByChampionship(_ context.Context, championshipID int, filter repositories.ListAnswersFilter) ([]models.Answer, error) {
	var out []models.Answer
	for _, a := range r.answers {
		if a.ChampionshipID == championshipID {
			out = append(out, *a)
		}
	}
	if filter.Newest {
		sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	} else {
		sort.Slice(out, func(i, j int) bool {
			if out[i].LikeCount != out[j].LikeCount {
				return out[i].LikeCount > out[j].LikeCount
			}
			return out[i].CommentCount > out[j].CommentCount
		})
	}
	start := filter.Offset
	if start > len(out) {
		start = len(out)
	}
	end := len(out)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	return out[start:end], nil
}

func (r *fakeAnswerRepo) CountByChampionship(_ context.Context, championshipID int) (int, error) {
	total := 0
	for _, a := range r.answers {
		if a.ChampionshipID == championshipID {
			total++
		}
	}
	return total, nil
}

func (r *fakeAnswerRepo) UpdateContent(_ context.Context, id int, update repositories.AnswerContentUpdate) (*models.Answer, error) {
	a, ok := r.answers[id]
	if !ok {
		return nil, repositories.ErrAnswerNotFound
	}
	if update.Text.Set && update.Text.Valid {
		a.Text = update.Text.Value
	}
	if update.ImageURL.Set {
		if update.ImageURL.Valid {
			v := update.ImageURL.Value
			a.ImageURL = &v
		} else {
			a.ImageURL = nil
		}
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAnswerRepo) SetAward(_ context.Context, id int, awardType *models.AwardType, awardComment *string) (*models.Answer, error) {
	a, ok := r.answers[id]
	if !ok {
		return nil, repositories.ErrAnswerNotFound
	}
	a.AwardType = awardType
	a.AwardComment = awardComment
	copied := *a
	return &copied, nil
}

func (r *fakeAnswerRepo) ListByUser(_ context.Context, userID, limit, offset int) ([]models.Answer, error) {
	var out []models.Answer
	for _, a := range r.answers {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset > len(out) {
		offset = len(out)
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (r *fakeAnswerRepo) CountByUser(_ context.Context, userID int) (int, error) {
	total := 0
	for _, a := range r.answers {
		if a.UserID == userID {
			total++
		}
	}
	return total, nil
}

type fakeLikeRepo struct {
	answers *fakeAnswerRepo
	liked   map[[2]int]bool // (answerID, userID)
	nextID  int
}

func newFakeLikeRepo(answers *fakeAnswerRepo) *fakeLikeRepo {
	return &fakeLikeRepo{answers: answers, liked: make(map[[2]int]bool), nextID: 1}
}

func (r *fakeLikeRepo) Add(_ context.Context, like *models.Like) error {
	key := [2]int{like.AnswerID, like.UserID}
	if r.liked[key] {
		return repositories.ErrAlreadyLiked
	}
	a, ok := r.answers.answers[like.AnswerID]
	if !ok {
		return repositories.ErrAnswerNotFound
	}
	r.liked[key] = true
	a.LikeCount++
	like.ID = r.nextID
	r.nextID++
	return nil
}

type fakeCommentRepo struct {
	answers  *fakeAnswerRepo
	comments []models.Comment
	nextID   int
}

func newFakeCommentRepo(answers *fakeAnswerRepo) *fakeCommentRepo {
	return &fakeCommentRepo{answers: answers, nextID: 1}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *models.Comment) error {
	a, ok := r.answers.answers[comment.AnswerID]
	if !ok {
		return repositories.ErrAnswerNotFound
	}
	comment.ID = r.nextID
	r.nextID++
	r.comments = append(r.comments, *comment)
	a.CommentCount++
	return nil
}

func (r *fakeCommentRepo) ListByAnswer(_ context.Context, answerID, limit, offset int) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range r.comments {
		if c.AnswerID == answerID {
			out = append(out, c)
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (r *fakeCommentRepo) CountByAnswer(_ context.Context, answerID int) (int, error) {
	total := 0
	for _, c := range r.comments {
		if c.AnswerID == answerID {
			total++
		}
	}
	return total, nil
}

type fakeSigner struct {
	lastKey         string
	lastContentType string
	lastTTL         time.Duration
}

func (s *fakeSigner) PresignUpload(_ context.Context, key, contentType string, ttl time.Duration) (*storage.UploadURLResult, error) {
	s.lastKey = key
	s.lastContentType = contentType
	s.lastTTL = ttl
	return &storage.UploadURLResult{
		UploadURL: "https://r2.example.com/upload/" + key,
		PublicURL: "https://cdn.example.com/" + key,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

func (s *fakeSigner) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}
