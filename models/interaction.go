package models

import "time"

// Like — не более одного лайка на пару (user, answer), уникальность
// обеспечивается constraint'ом в БД.
type Like struct {
	ID        int       `json:"id"`
	AnswerID  int       `json:"answerId"`
	UserID    int       `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Comment struct {
	ID        int       `json:"id"`
	AnswerID  int       `json:"answerId"`
	UserID    int       `json:"userId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`

	User *User `json:"user,omitempty"`
}
