package handlers

import (
	"errors"
	"net/http"

	"github.com/senshuken/championship-system/middleware"
	"github.com/senshuken/championship-system/pagination"
	"github.com/senshuken/championship-system/services"
)

type AnswerHandler struct {
	answerService services.AnswerService
}

func NewAnswerHandler(answerService services.AnswerService) *AnswerHandler {
	return &AnswerHandler{answerService: answerService}
}

// ListByChampionship — GET /championships/{championshipID}/answers?sort=&page=&limit=
func (h *AnswerHandler) ListByChampionship(w http.ResponseWriter, r *http.Request) {
	championshipID, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	query := r.URL.Query()
	params, err := pagination.Parse(query)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// Сортировка по очкам — умолчание.
	sortBy := services.AnswerSortScore
	if raw := query.Get("sort"); raw != "" {
		switch services.AnswerSort(raw) {
		case services.AnswerSortScore, services.AnswerSortNewest:
			sortBy = services.AnswerSort(raw)
		default:
			badRequestResponse(w, r, errors.New("sort must be one of: score, newest"))
			return
		}
	}

	result, err := h.answerService.List(r.Context(), championshipID, params, sortBy)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Create — POST /championships/{championshipID}/answers
func (h *AnswerHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r)
		return
	}

	championshipID, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateAnswerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	answer, err := h.answerService.Create(r.Context(), caller, championshipID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, answer); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Update — PUT /answers/{answerID}
func (h *AnswerHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r)
		return
	}

	answerID, err := getIDFromURL(r, "answerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateAnswerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	answer, err := h.answerService.Update(r.Context(), caller.ID, answerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, answer); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetAward — PUT /answers/{answerID}/award
func (h *AnswerHandler) SetAward(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r)
		return
	}

	answerID, err := getIDFromURL(r, "answerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.SetAwardInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	answer, err := h.answerService.SetAward(r.Context(), caller.ID, answerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, answer); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateUploadURL — POST /answers/upload-url
func (h *AnswerHandler) GenerateUploadURL(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r)
		return
	}

	var input services.UploadURLInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.answerService.GenerateUploadURL(r.Context(), caller.ID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result); err != nil {
		serverErrorResponse(w, r, err)
	}
}
