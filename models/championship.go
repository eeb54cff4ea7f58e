package models

import "time"

// ChampionshipStatus представляет сохранённый статус в БД (ENUM).
// Он двигается только вперёд: RECRUITING -> SELECTING -> ANNOUNCED.
type ChampionshipStatus string

const (
	StatusRecruitingStored ChampionshipStatus = "RECRUITING"
	StatusSelectingStored  ChampionshipStatus = "SELECTING"
	StatusAnnouncedStored  ChampionshipStatus = "ANNOUNCED"
)

// ComputedStatus — статус, который видят клиенты. Вычисляется на каждом
// чтении из сохранённого статуса и end_at, без фоновых задач.
type ComputedStatus string

const (
	StatusRecruiting ComputedStatus = "recruiting"
	StatusSelecting  ComputedStatus = "selecting"
	StatusAnnounced  ComputedStatus = "announced"
)

// ComputeStatus вычисляет эффективный статус чемпионата на момент now.
// RECRUITING с истёкшим end_at (включительно) автоматически считается
// selecting — сохранённое значение при этом не меняется.
func ComputeStatus(stored ChampionshipStatus, endAt, now time.Time) ComputedStatus {
	if stored == StatusAnnouncedStored {
		return StatusAnnounced
	}
	if stored == StatusSelectingStored {
		return StatusSelecting
	}
	if !endAt.After(now) {
		return StatusSelecting
	}
	return StatusRecruiting
}

func IsRecruiting(stored ChampionshipStatus, endAt, now time.Time) bool {
	return ComputeStatus(stored, endAt, now) == StatusRecruiting
}

func IsSelecting(stored ChampionshipStatus, endAt, now time.Time) bool {
	return ComputeStatus(stored, endAt, now) == StatusSelecting
}

// Championship представляет чемпионат (пользовательский конкурс).
type Championship struct {
	ID             int                `json:"id"`
	OwnerID        int                `json:"ownerId"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Status         ChampionshipStatus `json:"-"`
	StartAt        time.Time          `json:"startAt"`
	EndAt          time.Time          `json:"endAt"`
	SummaryComment *string            `json:"summaryComment,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`

	// Вычисляемые и связанные поля (не мапятся напрямую).
	EffectiveStatus ComputedStatus `json:"status"`
	Owner           *User          `json:"user,omitempty"`
	AnswerCount     int            `json:"answerCount"`
	TotalLikes      int            `json:"totalLikes"`
}

// Refresh заполняет EffectiveStatus по состоянию на now.
func (c *Championship) Refresh(now time.Time) {
	c.EffectiveStatus = ComputeStatus(c.Status, c.EndAt, now)
}
