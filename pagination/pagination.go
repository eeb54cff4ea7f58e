// Package pagination задаёт общий контракт постраничной выдачи
// для всех списочных эндпоинтов.
package pagination

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// ErrInvalidParams возвращается при нарушении границ page/limit.
type ErrInvalidParams struct {
	Field   string
	Message string
}

func (e *ErrInvalidParams) Error() string {
	return fmt.Sprintf("invalid pagination parameter %s: %s", e.Field, e.Message)
}

type Params struct {
	Page  int
	Limit int
}

// Parse читает page и limit из query-параметров, подставляет значения
// по умолчанию и проверяет границы: page >= 1, limit в [1, 100].
func Parse(query url.Values) (Params, error) {
	params := Params{Page: DefaultPage, Limit: DefaultLimit}

	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, &ErrInvalidParams{Field: "page", Message: "must be an integer"}
		}
		if page < 1 {
			return Params{}, &ErrInvalidParams{Field: "page", Message: "must be at least 1"}
		}
		params.Page = page
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, &ErrInvalidParams{Field: "limit", Message: "must be an integer"}
		}
		if limit < 1 {
			return Params{}, &ErrInvalidParams{Field: "limit", Message: "must be at least 1"}
		}
		if limit > MaxLimit {
			return Params{}, &ErrInvalidParams{Field: "limit", Message: fmt.Sprintf("must be at most %d", MaxLimit)}
		}
		params.Limit = limit
	}

	return params, nil
}

// Skip возвращает смещение для SQL OFFSET.
func (p Params) Skip() int {
	return (p.Page - 1) * p.Limit
}

type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type Result[T any] struct {
	Items      []T  `json:"items"`
	Pagination Meta `json:"pagination"`
}

// NewResult формирует конверт выдачи. totalPages = ceil(total/limit),
// 0 при пустой коллекции.
func NewResult[T any](items []T, total int, p Params) Result[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if total > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return Result[T]{
		Items: items,
		Pagination: Meta{
			Page:       p.Page,
			Limit:      p.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}
