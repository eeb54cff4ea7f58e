package models

import "time"

// AwardType — награда, назначаемая владельцем чемпионата.
type AwardType string

const (
	AwardGrandPrize   AwardType = "grand_prize"
	AwardPrize        AwardType = "prize"
	AwardSpecialPrize AwardType = "special_prize"
)

func (a AwardType) Valid() bool {
	switch a {
	case AwardGrandPrize, AwardPrize, AwardSpecialPrize:
		return true
	}
	return false
}

// Score вычисляет популярность ответа. Никогда не сохраняется в БД.
func Score(likeCount, commentCount int) float64 {
	return float64(likeCount) + float64(commentCount)*0.5
}

// Answer — ответ пользователя на чемпионат.
type Answer struct {
	ID             int        `json:"id"`
	ChampionshipID int        `json:"championshipId"`
	UserID         int        `json:"userId"`
	Text           string     `json:"text"`
	ImageURL       *string    `json:"imageUrl,omitempty"`
	AwardType      *AwardType `json:"awardType"`
	AwardComment   *string    `json:"awardComment,omitempty"`
	LikeCount      int        `json:"likeCount"`
	CommentCount   int        `json:"commentCount"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	ScoreValue float64 `json:"score"`
	User       *User   `json:"user,omitempty"`

	// Родительский чемпионат, подгружается для проверок статуса.
	Championship *Championship `json:"championship,omitempty"`
}

// RefreshScore пересчитывает ScoreValue из текущих счётчиков.
func (a *Answer) RefreshScore() {
	a.ScoreValue = Score(a.LikeCount, a.CommentCount)
}
